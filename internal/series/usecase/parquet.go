package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

const (
	parquetReadBatch = 256

	// pandasIndexPrefix marks columns pandas writes for a non-default index.
	pandasIndexPrefix = "__index_level_"

	julianUnixEpoch = 2440588
)

type parquetColumn struct {
	name   string
	kind   entity.ColumnKind
	read   func(v parquet.Value) any
	values []any
	keep   bool
}

func decodeParquet(data []byte) (entity.Table, error) {
	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return entity.Table{}, fmt.Errorf("open parquet: %w", err)
	}

	fields := pf.Schema().Fields()
	cols := make([]*parquetColumn, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return entity.Table{}, fmt.Errorf("nested column %q is not supported", field.Name())
		}
		if field.Repeated() {
			return entity.Table{}, fmt.Errorf("repeated column %q is not supported", field.Name())
		}
		cols[i] = newParquetColumn(field)
	}

	reader := parquet.NewReader(pf)
	defer reader.Close()

	rows := make([]parquet.Row, parquetReadBatch)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			appendParquetRow(cols, row)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entity.Table{}, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}

	table := entity.Table{Columns: make([]entity.Column, 0, len(cols))}
	for _, c := range cols {
		if !c.keep {
			continue
		}
		table.Columns = append(table.Columns, entity.Column{Name: c.name, Kind: c.kind, Values: c.values})
	}

	return table, nil
}

func appendParquetRow(cols []*parquetColumn, row parquet.Row) {
	values := make([]any, len(cols))
	for _, v := range row {
		idx := v.Column()
		if idx < 0 || idx >= len(cols) || v.IsNull() {
			continue
		}
		values[idx] = cols[idx].read(v)
	}
	for i, c := range cols {
		c.values = append(c.values, values[i])
	}
}

func newParquetColumn(field parquet.Field) *parquetColumn {
	col := &parquetColumn{
		name: field.Name(),
		keep: !strings.HasPrefix(field.Name(), pandasIndexPrefix),
	}

	typ := field.Type()
	logical := typ.LogicalType()

	switch {
	case logical != nil && logical.Timestamp != nil:
		col.kind = entity.KindTime
		col.read = timestampReader(logical.Timestamp.Unit)
	case logical != nil && logical.Date != nil:
		col.kind = entity.KindTime
		col.read = func(v parquet.Value) any {
			return time.Unix(int64(v.Int32())*86400, 0).UTC()
		}
	default:
		col.kind, col.read = physicalReader(typ.Kind())
	}

	return col
}

func physicalReader(kind parquet.Kind) (entity.ColumnKind, func(v parquet.Value) any) {
	switch kind {
	case parquet.Boolean:
		return entity.KindBool, func(v parquet.Value) any { return v.Boolean() }
	case parquet.Int32:
		return entity.KindInt, func(v parquet.Value) any { return int64(v.Int32()) }
	case parquet.Int64:
		return entity.KindInt, func(v parquet.Value) any { return v.Int64() }
	case parquet.Int96:
		return entity.KindTime, func(v parquet.Value) any {
			i96 := v.Int96()
			nanos := int64(uint64(i96[1])<<32 | uint64(i96[0]))
			days := int64(i96[2]) - julianUnixEpoch
			return time.Unix(days*86400, nanos).UTC()
		}
	case parquet.Float:
		return entity.KindFloat, func(v parquet.Value) any { return float64(v.Float()) }
	case parquet.Double:
		return entity.KindFloat, func(v parquet.Value) any { return v.Double() }
	default:
		return entity.KindString, func(v parquet.Value) any { return string(v.ByteArray()) }
	}
}

func timestampReader(unit format.TimeUnit) func(v parquet.Value) any {
	switch {
	case unit.Millis != nil:
		return func(v parquet.Value) any { return time.UnixMilli(v.Int64()).UTC() }
	case unit.Micros != nil:
		return func(v parquet.Value) any { return time.UnixMicro(v.Int64()).UTC() }
	default:
		return func(v parquet.Value) any { return time.Unix(0, v.Int64()).UTC() }
	}
}
