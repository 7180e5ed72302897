package usecase

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

const (
	// TextTimestampColumn is the timestamp column of ';'-delimited text exports.
	TextTimestampColumn = "Fecha/hora"
	// ParquetTimestampColumn is the timestamp column of Parquet exports.
	ParquetTimestampColumn = "Hora [UTC]"
)

// Format describes how one kind of upload is read and which column carries time.
type Format struct {
	Name            string
	Extension       string
	TimestampColumn string
	Decode          func(data []byte) (entity.Table, error)
	// Convert rewrites the timestamp column after decoding; nil keeps it as read.
	Convert func(ctx context.Context, col entity.Column) entity.Column
}

// TextFormat reads ';'-delimited UTF-8 text and parses "Fecha/hora" as datetimes.
func TextFormat() Format {
	return Format{
		Name:            "TXT",
		Extension:       ".txt",
		TimestampColumn: TextTimestampColumn,
		Decode:          decodeText,
		Convert:         parseTimestampColumn,
	}
}

// ParquetFormat reads Parquet files keeping their native column types.
func ParquetFormat() Format {
	return Format{
		Name:            "Parquet",
		Extension:       ".parquet",
		TimestampColumn: ParquetTimestampColumn,
		Decode:          decodeParquet,
	}
}

// DefaultFormats returns the formats accepted by the upload form.
func DefaultFormats() []Format {
	return []Format{TextFormat(), ParquetFormat()}
}

// Normalizer turns uploaded bytes into a Table whose first column is the
// timestamp column of the detected format.
type Normalizer struct {
	formats []Format
}

// NewNormalizer builds a Normalizer over formats, or DefaultFormats when none are given.
func NewNormalizer(formats ...Format) *Normalizer {
	if len(formats) == 0 {
		formats = DefaultFormats()
	}
	return &Normalizer{formats: formats}
}

// Extensions lists the accepted file extensions in registry order.
func (n *Normalizer) Extensions() []string {
	exts := make([]string, len(n.formats))
	for i, f := range n.formats {
		exts[i] = f.Extension
	}
	return exts
}

// Lookup returns the format registered for the extension of fileName.
func (n *Normalizer) Lookup(fileName string) (Format, error) {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	for _, f := range n.formats {
		if ext != "" && ext == f.Extension {
			return f, nil
		}
	}
	return Format{}, &UnsupportedFormatError{FileName: fileName}
}

// Normalize detects the format of fileName, decodes data and moves the
// timestamp column to position 0. It fails with *UnsupportedFormatError,
// *ParseError or *MissingColumnError.
func (n *Normalizer) Normalize(ctx context.Context, data []byte, fileName string) (entity.Table, error) {
	f, err := n.Lookup(fileName)
	if err != nil {
		return entity.Table{}, err
	}
	return f.Normalize(ctx, data)
}

// Normalize decodes data with f and moves its timestamp column first.
func (f Format) Normalize(ctx context.Context, data []byte) (entity.Table, error) {
	table, err := f.Decode(data)
	if err != nil {
		return entity.Table{}, &ParseError{Format: f.Name, Err: err}
	}

	idx := table.Index(f.TimestampColumn)
	if idx < 0 {
		return entity.Table{}, &MissingColumnError{Format: f.Name, Column: f.TimestampColumn}
	}

	if f.Convert != nil {
		table.Columns[idx] = f.Convert(ctx, table.Columns[idx])
	}

	slog.DebugContext(ctx, "table normalized", "format", f.Name, "columns", len(table.Columns), "rows", table.Len())

	return table.MoveToFront(idx), nil
}
