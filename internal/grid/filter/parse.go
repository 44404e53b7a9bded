package filter

import (
	"fmt"
	"strings"
)

// two-character symbols must be tried before their one-character prefixes.
var parseOrder = []Operator{Ne, Lte, Gte, Eq, Lt, Gt, Contains, StartsWith, EndsWith}

// Parse reads the textual form "column<op>value" where op is one of
// = != < <= > >= ~ (contains) ^ (starts with) $ (ends with). The value is
// kept as a string and coerced against the column's filter type when applied.
func Parse(s string) (Filter, error) {
	for i := range len(s) {
		for _, op := range parseOrder {
			sym := symbols[op]
			if !strings.HasPrefix(s[i:], sym) {
				continue
			}
			col := strings.TrimSpace(s[:i])
			if col == "" {
				return Filter{}, fmt.Errorf("%w: %q has no column", ErrInvalidFilter, s)
			}
			return Filter{
				Column:   col,
				Operator: op,
				Value:    strings.TrimSpace(s[i+len(sym):]),
			}, nil
		}
	}
	return Filter{}, fmt.Errorf("%w: %q has no operator", ErrInvalidFilter, s)
}

// ParseAll parses each expression, keeping the last filter per column.
func ParseAll(exprs []string) ([]Filter, error) {
	var out []Filter
	for _, expr := range exprs {
		f, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		out = Put(out, f)
	}
	return out, nil
}
