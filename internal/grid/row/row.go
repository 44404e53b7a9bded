// Package row derives row identity and per-row feature overrides.
package row

import (
	"strconv"

	"github.com/kong/gridctl/internal/grid/value"
	"github.com/kong/gridctl/internal/util"
)

// ID identifies a row across filtering, sorting and paging. Numeric ids are
// carried in their decimal form.
type ID string

// IndexID is the default id: the row's position in the full row set.
func IndexID(index int) ID {
	return ID(strconv.Itoa(index))
}

// IDOf renders an arbitrary field value as an ID.
func IDOf(v any) ID {
	return ID(value.String(v))
}

// IDFunc derives a row id. It must be deterministic and unique across the
// full, unfiltered row set.
type IDFunc[T any] func(row T, index int) ID

// ByIndex is the default IDFunc.
func ByIndex[T any](_ T, index int) ID {
	return IndexID(index)
}

// Entry pairs a row with its index in the caller's full row set so that
// downstream stages can resolve ids and overrides after reordering.
type Entry[T any] struct {
	Row   T
	Index int
}

// Entries wraps rows with their positional indexes.
func Entries[T any](rows []T) []Entry[T] {
	out := make([]Entry[T], len(rows))
	for i, r := range rows {
		out[i] = Entry[T]{Row: r, Index: i}
	}
	return out
}

// Rows unwraps entries.
func Rows[T any](entries []Entry[T]) []T {
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.Row
	}
	return out
}

// IDs resolves the id of every entry in order. A nil fn uses ByIndex.
func IDs[T any](entries []Entry[T], fn IDFunc[T]) []ID {
	if fn == nil {
		fn = ByIndex[T]
	}
	out := make([]ID, len(entries))
	for i, e := range entries {
		out[i] = fn(e.Row, e.Index)
	}
	return out
}

// Features narrows which interactions apply to one row. Nil fields keep the
// default, which is enabled.
type Features struct {
	Selectable *bool
	Editable   *bool
	Sortable   *bool
	Filterable *bool
	Searchable *bool
}

func (f Features) IsSelectable() bool { return util.BoolValueOr(f.Selectable, true) }
func (f Features) IsEditable() bool   { return util.BoolValueOr(f.Editable, true) }
func (f Features) IsSortable() bool   { return util.BoolValueOr(f.Sortable, true) }
func (f Features) IsFilterable() bool { return util.BoolValueOr(f.Filterable, true) }
func (f Features) IsSearchable() bool { return util.BoolValueOr(f.Searchable, true) }

// FeatureFunc is the per-row override. Returning nil leaves every feature on.
type FeatureFunc[T any] func(row T, index int) *Features

// Resolve evaluates the override, tolerating a nil func and a nil result.
func (fn FeatureFunc[T]) Resolve(row T, index int) Features {
	if fn == nil {
		return Features{}
	}
	if f := fn(row, index); f != nil {
		return *f
	}
	return Features{}
}
