// Package sorting orders grid rows by a prioritized list of column sorts.
package sorting

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/value"
)

// ErrInvalidSort is returned for sort specs that cannot be parsed.
var ErrInvalidSort = errors.New("invalid sort")

// Direction of one sort key. None removes the key from the sort list.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
	None Direction = ""
)

// Spec is one sort key. The position in a []Spec is its priority.
type Spec struct {
	Column    string    `json:"column" yaml:"column"`
	Direction Direction `json:"direction" yaml:"direction"`
}

func (s Spec) String() string {
	if s.Direction == None {
		return s.Column
	}
	return s.Column + ":" + string(s.Direction)
}

type key[T any] struct {
	col  column.Column[T]
	desc bool
}

// Apply sorts rows by specs. Rows whose override disables sorting are left
// out of the sort and appended afterwards in their input order. The sort is
// stable and the input is not modified.
func Apply[T any](rows []T, specs []Spec, cols *column.Set[T], features row.FeatureFunc[T]) []T {
	if features == nil && len(compile(specs, cols)) == 0 {
		return rows
	}
	return row.Rows(ApplyEntries(row.Entries(rows), specs, cols, features))
}

// ApplyEntries is Apply over entries that carry the original row index.
func ApplyEntries[T any](entries []row.Entry[T], specs []Spec, cols *column.Set[T], features row.FeatureFunc[T]) []row.Entry[T] {
	keys := compile(specs, cols)

	sortable := make([]row.Entry[T], 0, len(entries))
	var pinned []row.Entry[T]
	for _, e := range entries {
		if features.Resolve(e.Row, e.Index).IsSortable() {
			sortable = append(sortable, e)
		} else {
			pinned = append(pinned, e)
		}
	}

	if len(keys) > 0 {
		slices.SortStableFunc(sortable, func(a, b row.Entry[T]) int {
			for _, k := range keys {
				if c := compareKey(k, a.Row, b.Row); c != 0 {
					return c
				}
			}
			return 0
		})
	}
	return append(sortable, pinned...)
}

// compile resolves specs to sort keys, skipping keys without a direction,
// keys on missing or non-sortable columns, and repeated columns.
func compile[T any](specs []Spec, cols *column.Set[T]) []key[T] {
	keys := make([]key[T], 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if s.Direction != Asc && s.Direction != Desc {
			continue
		}
		if _, dup := seen[s.Column]; dup {
			continue
		}
		col, ok := cols.Lookup(s.Column)
		if !ok || !col.IsSortable() {
			continue
		}
		seen[s.Column] = struct{}{}
		keys = append(keys, key[T]{col: col, desc: s.Direction == Desc})
	}
	return keys
}

// compareKey orders nulls after every value before applying the direction.
func compareKey[T any](k key[T], a, b T) int {
	va, vb := k.col.Value(a), k.col.Value(b)
	an, bn := value.IsNull(va), value.IsNull(vb)

	var c int
	switch {
	case an && bn:
		c = 0
	case an:
		c = 1
	case bn:
		c = -1
	case k.col.Compare != nil:
		c = safeCompare(k.col.Compare, va, vb, a, b)
	default:
		c = value.Compare(va, vb)
	}
	if k.desc {
		return -c
	}
	return c
}

// safeCompare treats a panicking compare function as reporting equality.
func safeCompare[T any](fn column.CompareFunc[T], a, b any, rowA, rowB T) (c int) {
	defer func() {
		if r := recover(); r != nil {
			c = 0
		}
	}()
	return fn(a, b, rowA, rowB)
}

// Set returns specs with s applied: an existing key on the same column is
// updated in place, a new one is appended, and a None direction removes it.
func Set(specs []Spec, s Spec) []Spec {
	out := slices.Clone(specs)
	for i := range out {
		if out[i].Column != s.Column {
			continue
		}
		if s.Direction == None {
			return slices.Delete(out, i, i+1)
		}
		out[i].Direction = s.Direction
		return out
	}
	if s.Direction == None {
		return out
	}
	return append(out, s)
}

// Next cycles asc, desc, none.
func (d Direction) Next() Direction {
	switch d {
	case None:
		return Asc
	case Asc:
		return Desc
	}
	return None
}

// DirectionOf returns the direction of column in specs.
func DirectionOf(specs []Spec, column string) Direction {
	for _, s := range specs {
		if s.Column == column {
			return s.Direction
		}
	}
	return None
}

// Toggle applies a header click on column. Without multi the result holds at
// most that column; with multi the column is updated in place or appended.
func Toggle(specs []Spec, column string, multi bool) []Spec {
	next := DirectionOf(specs, column).Next()
	if multi {
		return Set(specs, Spec{Column: column, Direction: next})
	}
	if next == None {
		return []Spec{}
	}
	return []Spec{{Column: column, Direction: next}}
}

// Normalize drops keys without a direction and repeated columns, keeping
// the first.
func Normalize(specs []Spec) []Spec {
	out := make([]Spec, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if s.Direction == None {
			continue
		}
		if _, dup := seen[s.Column]; dup {
			continue
		}
		seen[s.Column] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Parse reads "column", "column:asc" or "column:desc".
func Parse(s string) (Spec, error) {
	col, dir, hasDir := strings.Cut(strings.TrimSpace(s), ":")
	col = strings.TrimSpace(col)
	if col == "" {
		return Spec{}, fmt.Errorf("%w: %q has no column", ErrInvalidSort, s)
	}
	if !hasDir {
		return Spec{Column: col, Direction: Asc}, nil
	}
	switch d := Direction(strings.ToLower(strings.TrimSpace(dir))); d {
	case Asc, Desc:
		return Spec{Column: col, Direction: d}, nil
	}
	return Spec{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, dir)
}

// ParseAll parses each expression in priority order.
func ParseAll(exprs []string) ([]Spec, error) {
	out := make([]Spec, 0, len(exprs))
	for _, expr := range exprs {
		s, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return Normalize(out), nil
}
