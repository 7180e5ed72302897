package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

const (
	textDelimiter = ';'

	// timestampLayout is day/month/2-digit-year hour:minute:second.
	timestampLayout = "2/1/06 15:4:5"

	// missingText is how a missing value reads once coerced to text.
	missingText = "nan"
)

var errNoColumns = errors.New("no columns to parse from file")

//nolint:gochecknoglobals // read-only lookup
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// decodeUTF8 strips a leading byte order mark and drops bytes that are not
// valid UTF-8 instead of failing.
func decodeUTF8(data []byte) ([]byte, error) {
	dropInvalid := runes.Remove(runes.Predicate(func(r rune) bool {
		return r == utf8.RuneError
	}))

	out, _, err := transform.Bytes(transform.Chain(unicode.UTF8BOM.NewDecoder(), dropInvalid), data)
	return out, err
}

func decodeText(data []byte) (entity.Table, error) {
	text, err := decodeUTF8(data)
	if err != nil {
		return entity.Table{}, fmt.Errorf("decode utf-8: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = textDelimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return entity.Table{}, errNoColumns
	}
	if err != nil {
		return entity.Table{}, err
	}

	names := headerNames(header)
	raw := make([][]*string, len(names))

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entity.Table{}, err
		}

		if len(record) > len(names) {
			line, _ := reader.FieldPos(0)
			return entity.Table{}, fmt.Errorf("expected %d fields in line %d, saw %d", len(names), line, len(record))
		}

		for i := range names {
			if i >= len(record) {
				raw[i] = append(raw[i], nil)
				continue
			}
			if _, missing := missingTokens[record[i]]; missing {
				raw[i] = append(raw[i], nil)
				continue
			}
			value := record[i]
			raw[i] = append(raw[i], &value)
		}
	}

	columns := make([]entity.Column, len(names))
	for i, name := range names {
		columns[i] = inferColumn(name, raw[i])
	}

	return entity.Table{Columns: columns}, nil
}

// headerNames names empty headers "Unnamed: i" and suffixes repeated ones
// with ".1", ".2", ... so every column can be addressed by name.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for {
			if _, dup := seen[name]; !dup {
				break
			}
			seen[base]++
			name = fmt.Sprintf("%s.%d", base, seen[base])
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

// inferColumn picks the narrowest kind that fits every present value.
// Missing values force integers to floats; a column with no values is float.
func inferColumn(name string, raw []*string) entity.Column {
	present, missing := 0, 0
	allInt, allFloat, allBool := true, true, true
	for _, v := range raw {
		if v == nil {
			missing++
			continue
		}
		present++
		if allInt {
			if _, err := strconv.ParseInt(*v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(*v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(*v); !ok {
				allBool = false
			}
		}
	}

	kind := entity.KindString
	switch {
	case present == 0:
		kind = entity.KindFloat
	case allInt && missing == 0:
		kind = entity.KindInt
	case allFloat:
		kind = entity.KindFloat
	case allBool:
		kind = entity.KindBool
	}

	values := make([]any, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		switch kind {
		case entity.KindInt:
			n, _ := strconv.ParseInt(*v, 10, 64)
			values[i] = n
		case entity.KindFloat:
			f, _ := strconv.ParseFloat(*v, 64)
			values[i] = f
		case entity.KindBool:
			b, _ := parseBool(*v)
			values[i] = b
		default:
			values[i] = *v
		}
	}

	return entity.Column{Name: name, Kind: kind, Values: values}
}

func parseBool(v string) (bool, bool) {
	switch v {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	default:
		return false, false
	}
}

// parseTimestampColumn reads every value as text and parses it with
// timestampLayout. Values that do not match become missing.
func parseTimestampColumn(ctx context.Context, col entity.Column) entity.Column {
	values := make([]any, len(col.Values))
	invalid := 0
	for i, v := range col.Values {
		ts, err := time.Parse(timestampLayout, textOf(v))
		if err != nil {
			invalid++
			continue
		}
		values[i] = ts
	}

	if invalid > 0 {
		slog.WarnContext(ctx, "timestamps not matching layout set to missing", "column", col.Name, "count", invalid)
	}

	return entity.Column{Name: col.Name, Kind: entity.KindTime, Values: values}
}

func textOf(v any) string {
	switch val := v.(type) {
	case nil:
		return missingText
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case time.Time:
		return val.Format(time.DateTime)
	default:
		return fmt.Sprint(val)
	}
}
