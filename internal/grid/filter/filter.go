// Package filter evaluates per-column filters and the global search term
// against grid rows.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/value"
)

// ErrInvalidFilter is returned for filters that cannot be parsed or validated.
var ErrInvalidFilter = errors.New("invalid filter")

// Operator is a column filter comparison.
type Operator string

const (
	Eq         Operator = "eq"
	Ne         Operator = "ne"
	Lt         Operator = "lt"
	Lte        Operator = "lte"
	Gt         Operator = "gt"
	Gte        Operator = "gte"
	Contains   Operator = "contains"
	StartsWith Operator = "startsWith"
	EndsWith   Operator = "endsWith"
)

var symbols = map[Operator]string{
	Eq:         "=",
	Ne:         "!=",
	Lt:         "<",
	Lte:        "<=",
	Gt:         ">",
	Gte:        ">=",
	Contains:   "~",
	StartsWith: "^",
	EndsWith:   "$",
}

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	_, ok := symbols[o]
	return ok
}

// Symbol is the short textual form used by Parse.
func (o Operator) Symbol() string {
	if s, ok := symbols[o]; ok {
		return s
	}
	return string(o)
}

// Filter constrains one column.
type Filter struct {
	Column   string   `json:"column" yaml:"column"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// Validate checks the column and operator.
func (f Filter) Validate() error {
	if f.Column == "" {
		return fmt.Errorf("%w: missing column", ErrInvalidFilter)
	}
	if !f.Operator.Valid() {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Operator)
	}
	return nil
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.Column, f.Operator.Symbol(), value.String(f.Value))
}

// Description joins the filters the way they combine.
func Description(filters []Filter) string {
	if len(filters) == 0 {
		return "no filters"
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, " AND ")
}

// Put returns filters with f replacing any existing filter on the same
// column, keeping its position, or appended otherwise. The input is not
// modified.
func Put(filters []Filter, f Filter) []Filter {
	out := slices.Clone(filters)
	for i := range out {
		if out[i].Column == f.Column {
			out[i] = f
			return out
		}
	}
	return append(out, f)
}

// Remove returns filters without the filter on column.
func Remove(filters []Filter, column string) []Filter {
	return slices.DeleteFunc(slices.Clone(filters), func(f Filter) bool {
		return f.Column == column
	})
}

// Find returns the filter on column.
func Find(filters []Filter, column string) (Filter, bool) {
	for _, f := range filters {
		if f.Column == column {
			return f, true
		}
	}
	return Filter{}, false
}

type predicate[T any] struct {
	col  column.Column[T]
	op   Operator
	want any
}

// Apply keeps the rows that satisfy every filter and the search term. Rows
// whose override disables filtering or searching survive that step
// unconditionally. With no active filter and an empty search the input is
// returned as is.
func Apply[T any](rows []T, filters []Filter, cols *column.Set[T], search string, features row.FeatureFunc[T]) []T {
	if len(filters) == 0 && strings.TrimSpace(search) == "" {
		return rows
	}
	return row.Rows(ApplyEntries(row.Entries(rows), filters, cols, search, features))
}

// ApplyEntries is Apply over entries that carry the original row index.
func ApplyEntries[T any](entries []row.Entry[T], filters []Filter, cols *column.Set[T], search string, features row.FeatureFunc[T]) []row.Entry[T] {
	preds := compile(filters, cols)
	term := strings.ToLower(strings.TrimSpace(search))
	if len(preds) == 0 && term == "" {
		return entries
	}

	var searchCols []column.Column[T]
	if term != "" {
		searchCols = cols.Columns()
	}

	out := make([]row.Entry[T], 0, len(entries))
	for _, e := range entries {
		f := features.Resolve(e.Row, e.Index)
		if len(preds) > 0 && f.IsFilterable() && !matchAll(preds, e.Row) {
			continue
		}
		if term != "" && f.IsSearchable() && !matchSearch(searchCols, e.Row, term) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// compile drops filters that reference a missing or non-filterable column,
// or carry an unknown operator, and coerces filter values to the column's
// filter type.
func compile[T any](filters []Filter, cols *column.Set[T]) []predicate[T] {
	preds := make([]predicate[T], 0, len(filters))
	for _, f := range filters {
		if !f.Operator.Valid() {
			continue
		}
		col, ok := cols.Lookup(f.Column)
		if !ok || !col.IsFilterable() {
			continue
		}
		preds = append(preds, predicate[T]{col: col, op: f.Operator, want: coerce(f.Value, col.FilterType)})
	}
	return preds
}

func matchAll[T any](preds []predicate[T], r T) bool {
	for _, p := range preds {
		if !Match(p.op, p.col.Value(r), p.want) {
			return false
		}
	}
	return true
}

func matchSearch[T any](cols []column.Column[T], r T, term string) bool {
	for _, c := range cols {
		if strings.Contains(strings.ToLower(value.String(c.Value(r))), term) {
			return true
		}
	}
	return false
}

// Match evaluates one operator against a cell value.
func Match(op Operator, cell, want any) bool {
	switch op {
	case Eq:
		return value.Equal(cell, want)
	case Ne:
		return !value.Equal(cell, want)
	case Lt, Lte, Gt, Gte:
		c, ok := value.Order(cell, want)
		if !ok {
			return false
		}
		switch op { //nolint:exhaustive
		case Lt:
			return c < 0
		case Lte:
			return c <= 0
		case Gt:
			return c > 0
		}
		return c >= 0
	case Contains:
		return strings.Contains(lower(cell), lower(want))
	case StartsWith:
		return strings.HasPrefix(lower(cell), lower(want))
	case EndsWith:
		return strings.HasSuffix(lower(cell), lower(want))
	}
	return false
}

func lower(v any) string {
	return strings.ToLower(value.String(v))
}

// coerce converts textual filter values to the column's value kind so that
// strict equality and ordering compare like with like.
func coerce(v any, ft column.FilterType) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch ft { //nolint:exhaustive
	case column.FilterNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	case column.FilterDate:
		if t, ok := value.ParseTime(s); ok {
			return t
		}
	case column.FilterBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return v
}
