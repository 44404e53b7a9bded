package source

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/itchyny/gojq"
)

var queryCache sync.Map

func compileQuery(query string) (*gojq.Code, error) {
	if code, ok := queryCache.Load(query); ok {
		return code.(*gojq.Code), nil
	}
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid row query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("compile row query: %w", err)
	}
	queryCache.Store(query, code)
	return code, nil
}

// applyQuery runs query over the table. A document that was a single
// object is presented as that object so ".items" narrows a wrapper; other
// tables are presented as an array of rows. A single array result is
// flattened into rows, otherwise every emitted value is a row.
func (t *Table) applyQuery(query string) error {
	code, err := compileQuery(query)
	if err != nil {
		return err
	}

	input, err := queryInput(t)
	if err != nil {
		return err
	}

	var results []any
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("row query failed: %w", err)
		}
		results = append(results, v)
	}
	if len(results) == 1 {
		if arr, ok := results[0].([]any); ok {
			results = arr
		}
	}

	order := fieldOrder{}
	order.add(t.Fields...)
	recs := make([]Record, 0, len(results))
	for _, v := range results {
		rec, ok := v.(map[string]any)
		if !ok {
			rec = map[string]any{"value": v}
		}
		recs = append(recs, Record(rec))
	}

	var used fieldOrder
	for _, r := range recs {
		order.addRecord(r)
	}
	for _, name := range order.names {
		for _, r := range recs {
			if _, ok := r[name]; ok {
				used.add(name)
				break
			}
		}
	}
	t.Fields, t.Records, t.object = used.names, recs, false
	return nil
}

// queryInput converts the table into plain JSON values. Typed cells from
// columnar and CSV sources, such as int64 and time.Time, are not values the
// jq runtime accepts.
func queryInput(t *Table) (any, error) {
	var v any = t.Records
	if t.object && len(t.Records) == 1 {
		v = t.Records[0]
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("prepare rows for query: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("prepare rows for query: %w", err)
	}
	return out, nil
}
