package usecase

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

func normalize(t *testing.T, data, fileName string) entity.Table {
	t.Helper()
	table, err := NewNormalizer().Normalize(context.Background(), []byte(data), fileName)
	if err != nil {
		t.Fatalf("normalize %s: %v", fileName, err)
	}
	return table
}

func TestNormalizeText(t *testing.T) {
	table := normalize(t, "Fecha/hora;A;B\n01/02/23 10:00:00;1.5;2.5\n", "medidas.txt")

	if got := table.ColumnNames(); !reflect.DeepEqual(got, []string{"Fecha/hora", "A", "B"}) {
		t.Fatalf("unexpected columns: %v", got)
	}
	if table.Columns[0].Kind != entity.KindTime {
		t.Fatalf("timestamp column kind = %s", table.Columns[0].Kind)
	}

	want := time.Date(2023, 2, 1, 10, 0, 0, 0, time.UTC)
	if ts, ok := entity.Time(table.Columns[0].Values[0]); !ok || !ts.Equal(want) {
		t.Fatalf("unexpected timestamp: %v", table.Columns[0].Values[0])
	}
	if table.Columns[1].Values[0] != 1.5 || table.Columns[2].Values[0] != 2.5 {
		t.Fatalf("unexpected row: %v", table.Row(0))
	}
}

func TestNormalizeTextMalformedTimestamp(t *testing.T) {
	table := normalize(t, "Fecha/hora;A;B\n01/02/23 10:00:00;1;2\nnot-a-date;3;4\n;5;6\n", "medidas.txt")

	if table.Len() != 3 {
		t.Fatalf("unexpected rows: %d", table.Len())
	}
	if table.Columns[0].Values[1] != nil || table.Columns[0].Values[2] != nil {
		t.Fatalf("unparseable timestamps should be missing: %v", table.Columns[0].Values)
	}
	if !reflect.DeepEqual(table.Row(1)[1:], []any{int64(3), int64(4)}) {
		t.Fatalf("other values changed: %v", table.Row(1))
	}
}

func TestNormalizeTextMovesTimestampFirst(t *testing.T) {
	table := normalize(t, "A;Fecha/hora;B\n1;1/2/23 8:5:3;x\n", "medidas.txt")

	if got := table.ColumnNames(); !reflect.DeepEqual(got, []string{"Fecha/hora", "A", "B"}) {
		t.Fatalf("unexpected columns: %v", got)
	}
	want := time.Date(2023, 2, 1, 8, 5, 3, 0, time.UTC)
	if ts, _ := entity.Time(table.Columns[0].Values[0]); !ts.Equal(want) {
		t.Fatalf("unexpected timestamp: %v", ts)
	}
}

func TestNormalizeTextEncoding(t *testing.T) {
	table := normalize(t, "\xef\xbb\xbfFecha/hora;A\n01/02/23 10:00:00;\xff5\n", "medidas.txt")

	if table.Columns[0].Name != "Fecha/hora" {
		t.Fatalf("byte order mark kept in header: %q", table.Columns[0].Name)
	}
	if table.Columns[1].Values[0] != int64(5) {
		t.Fatalf("invalid byte not dropped: %#v", table.Columns[1].Values[0])
	}
}

func TestNormalizeTextHeaders(t *testing.T) {
	table := normalize(t, "Fecha/hora;A;A;;A\n01/02/23 10:00:00;1;2;3;4\n", "medidas.txt")

	want := []string{"Fecha/hora", "A", "A.1", "Unnamed: 3", "A.2"}
	if got := table.ColumnNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected columns: %v", got)
	}
}

func TestNormalizeTextShortRow(t *testing.T) {
	table := normalize(t, "Fecha/hora;A;B\n01/02/23 10:00:00;1\n", "medidas.txt")

	if table.Columns[2].Values[0] != nil {
		t.Fatalf("short row should be padded with missing values: %v", table.Row(0))
	}
}

func TestNormalizeTextKinds(t *testing.T) {
	data := "Fecha/hora;I;F;N;Bo;S;E\n" +
		"01/02/23 10:00:00;1;1.5;1;True;x;\n" +
		"01/02/23 10:00:01;2;NaN;NA;false;2;NULL\n"
	table := normalize(t, data, "medidas.txt")

	want := map[string]entity.ColumnKind{
		"I":  entity.KindInt,
		"F":  entity.KindFloat,
		"N":  entity.KindFloat,
		"Bo": entity.KindBool,
		"S":  entity.KindString,
		"E":  entity.KindFloat,
	}
	for name, kind := range want {
		col, ok := table.Column(name)
		if !ok {
			t.Fatalf("column %s missing", name)
		}
		if col.Kind != kind {
			t.Fatalf("column %s kind = %s, want %s", name, col.Kind, kind)
		}
	}

	n, _ := table.Column("N")
	if n.Values[0] != 1.0 || n.Values[1] != nil {
		t.Fatalf("unexpected values: %v", n.Values)
	}
	s, _ := table.Column("S")
	if s.Values[1] != "2" {
		t.Fatalf("string column should keep text: %#v", s.Values[1])
	}
}

func TestNormalizeErrors(t *testing.T) {
	n := NewNormalizer()
	ctx := context.Background()

	_, err := n.Normalize(ctx, []byte("A;B\n1;2\n"), "medidas.txt")
	var missing *MissingColumnError
	if !errors.As(err, &missing) || missing.Column != TextTimestampColumn || missing.Format != "TXT" {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}

	_, err = n.Normalize(ctx, []byte("a,b"), "medidas.csv")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}

	_, err = n.Normalize(ctx, []byte("Fecha/hora;A\n01/02/23 10:00:00;1;2\n"), "medidas.txt")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Err.Error() != "expected 2 fields in line 2, saw 3" {
		t.Fatalf("unexpected parse error: %v", parseErr.Err)
	}

	_, err = n.Normalize(ctx, nil, "medidas.txt")
	if !errors.As(err, &parseErr) || !errors.Is(err, errNoColumns) {
		t.Fatalf("expected empty file ParseError, got %v", err)
	}

	_, err = n.Normalize(ctx, []byte("not parquet"), "medidas.parquet")
	if !errors.As(err, &parseErr) || parseErr.Format != "Parquet" {
		t.Fatalf("expected parquet ParseError, got %v", err)
	}
}

func TestNormalizeExtensionIgnoresCase(t *testing.T) {
	table := normalize(t, "Fecha/hora;A\n01/02/23 10:00:00;1\n", "MEDIDAS.TXT")
	if table.Columns[0].Kind != entity.KindTime {
		t.Fatalf("upper case extension not read as text")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	data := "Fecha/hora;A;B\n01/02/23 10:00:00;1.5;x\nbad;NA;y\n"

	first := normalize(t, data, "medidas.txt")
	second := normalize(t, data, "medidas.txt")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize is not deterministic:\n%v\n%v", first, second)
	}
}

type parquetRecord struct {
	Temp  float64   `parquet:"Temp"`
	Hora  time.Time `parquet:"Hora [UTC]"`
	Hum   *float64  `parquet:"Hum,optional"`
	Site  string    `parquet:"Site"`
	Index int64     `parquet:"__index_level_0__"`
}

func writeParquet(t *testing.T, rows []parquetRecord) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeParquet(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	hum := 40.5
	data := writeParquet(t, []parquetRecord{
		{Temp: 20.5, Hora: base, Hum: &hum, Site: "norte", Index: 0},
		{Temp: 21.0, Hora: base.Add(time.Minute), Hum: nil, Site: "sur", Index: 1},
	})

	table, err := NewNormalizer().Normalize(context.Background(), data, "medidas.parquet")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if got := table.ColumnNames(); !reflect.DeepEqual(got, []string{"Hora [UTC]", "Temp", "Hum", "Site"}) {
		t.Fatalf("unexpected columns: %v", got)
	}

	kinds := []entity.ColumnKind{entity.KindTime, entity.KindFloat, entity.KindFloat, entity.KindString}
	for i, want := range kinds {
		if table.Columns[i].Kind != want {
			t.Fatalf("column %s kind = %s, want %s", table.Columns[i].Name, table.Columns[i].Kind, want)
		}
	}

	if ts, _ := entity.Time(table.Columns[0].Values[1]); !ts.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamp: %v", table.Columns[0].Values[1])
	}
	if table.Columns[2].Values[0] != 40.5 || table.Columns[2].Values[1] != nil {
		t.Fatalf("unexpected optional values: %v", table.Columns[2].Values)
	}
	if table.Columns[3].Values[1] != "sur" {
		t.Fatalf("unexpected string value: %#v", table.Columns[3].Values[1])
	}
}

func TestNormalizeParquetMissingColumn(t *testing.T) {
	type record struct {
		Temp float64 `parquet:"Temp"`
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, []record{{Temp: 1}}); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	_, err := NewNormalizer().Normalize(context.Background(), buf.Bytes(), "medidas.parquet")
	var missing *MissingColumnError
	if !errors.As(err, &missing) || missing.Column != ParquetTimestampColumn {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
}
