package gridspec

import (
	"time"

	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/source"
)

// inferSample bounds how many rows are inspected per field.
const inferSample = 200

// Infer declares one column per field of t, typing each column's filter
// from the first non-null values found.
func Infer(id string, t *source.Table) *Spec {
	s := &Spec{ID: id, Columns: make([]ColumnSpec, 0, len(t.Fields))}
	for _, f := range t.Fields {
		s.Columns = append(s.Columns, ColumnSpec{
			Key:        f,
			FilterType: string(inferFilterType(f, t.Records)),
		})
	}
	return s
}

func inferFilterType(field string, recs []source.Record) column.FilterType {
	var kind column.FilterType
	seen := 0
	for _, rec := range recs {
		if seen == inferSample {
			break
		}
		v, ok := rec[field]
		if !ok || v == nil {
			continue
		}
		seen++
		k := kindOf(v)
		if kind == "" {
			kind = k
		} else if kind != k {
			return column.FilterText
		}
	}
	if kind == "" {
		return column.FilterText
	}
	return kind
}

func kindOf(v any) column.FilterType {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return column.FilterNumber
	case bool:
		return column.FilterBoolean
	case time.Time:
		return column.FilterDate
	}
	return column.FilterText
}
