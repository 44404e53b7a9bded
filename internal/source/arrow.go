package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// decodeArrow reads an Arrow IPC file.
func decodeArrow(ctx context.Context, r readAtSeeker) (*Table, error) {
	rdr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open arrow file: %w", err)
	}
	defer rdr.Close()

	t := &Table{Fields: schemaFields(rdr.Schema())}
	for i := 0; i < rdr.NumRecords(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := rdr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read arrow batch %d: %w", i, err)
		}
		t.Records = appendBatch(t.Records, rec)
	}
	return t, nil
}

// decodeParquet reads a Parquet file through the Arrow adapter.
func decodeParquet(ctx context.Context, r readAtSeeker) (*Table, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(parquet.NewReaderProperties(memory.DefaultAllocator)))
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: 4096}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("create arrow reader: %w", err)
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read parquet data: %w", err)
	}
	defer tbl.Release()

	t := &Table{Fields: schemaFields(tbl.Schema())}
	tr := array.NewTableReader(tbl, 4096)
	defer tr.Release()
	for tr.Next() {
		t.Records = appendBatch(t.Records, tr.Record())
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("read parquet data: %w", err)
	}
	return t, nil
}

func schemaFields(schema *arrow.Schema) []string {
	fields := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		fields[i] = f.Name
	}
	return fields
}

func appendBatch(recs []Record, batch arrow.Record) []Record {
	schema := batch.Schema()
	for row := 0; row < int(batch.NumRows()); row++ {
		rec := make(Record, batch.NumCols())
		for c, col := range batch.Columns() {
			rec[schema.Field(c).Name] = cellValue(col, row)
		}
		recs = append(recs, rec)
	}
	return recs
}

// cellValue converts one Arrow cell into a Go value the grid can compare:
// integers widen to int64 or uint64, dates and timestamps become time.Time
// and nested values decode through their JSON form.
func cellValue(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Boolean:
		return c.Value(pos)
	case *array.Int8:
		return int64(c.Value(pos))
	case *array.Int16:
		return int64(c.Value(pos))
	case *array.Int32:
		return int64(c.Value(pos))
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return uint64(c.Value(pos))
	case *array.Uint16:
		return uint64(c.Value(pos))
	case *array.Uint32:
		return uint64(c.Value(pos))
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float16:
		return float64(c.Value(pos).Float32())
	case *array.Float32:
		return float64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime().UTC()
	case *array.Date64:
		return c.Value(pos).ToTime().UTC()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit).UTC()
	case *array.Decimal128:
		return c.Value(pos).BigInt().String()
	case *array.Dictionary:
		return cellValue(c.Dictionary(), c.GetValueIndex(pos))
	}

	raw, err := json.Marshal(col.GetOneForMarshal(pos))
	if err != nil {
		return col.ValueStr(pos)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return col.ValueStr(pos)
	}
	return v
}
