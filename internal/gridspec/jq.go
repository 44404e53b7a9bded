package gridspec

import (
	"fmt"
	"math"
	"time"

	"github.com/itchyny/gojq"

	"github.com/kong/gridctl/internal/source"
)

type jqProgram struct {
	expr string
	code *gojq.Code
}

func compileJQ(expr string) (*jqProgram, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jq %q: %w", expr, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile jq %q: %w", expr, err)
	}
	return &jqProgram{expr: expr, code: code}, nil
}

// first returns the first value the program emits for rec. Errors and empty
// output read as nil.
func (p *jqProgram) first(rec source.Record) any {
	iter := p.code.Run(jqValue(map[string]any(rec)))
	v, ok := iter.Next()
	if !ok {
		return nil
	}
	if _, isErr := v.(error); isErr {
		return nil
	}
	return v
}

// truthy reports whether the first emitted value is neither false nor null.
func (p *jqProgram) truthy(rec source.Record) bool {
	switch v := p.first(rec).(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// jqValue converts cell values into the set of types gojq evaluates: int,
// float64, string, bool, nil, []any and map[string]any.
func jqValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jqValue(e)
		}
		return out
	case source.Record:
		return jqValue(map[string]any(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jqValue(e)
		}
		return out
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
		return float64(x)
	case int32:
		return int(x)
	case uint64:
		if x <= math.MaxInt {
			return int(x)
		}
		return float64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}
