// Package column normalizes column declarations for the grid engine.
package column

import (
	"errors"
	"fmt"

	"github.com/kong/gridctl/internal/util"
)

var (
	// ErrEmptyKey is returned when a column is declared without a key.
	ErrEmptyKey = errors.New("column key must not be empty")
	// ErrDuplicateKey is returned when two columns share a key.
	ErrDuplicateKey = errors.New("duplicate column key")
)

// FilterType hints which filter editor and value coercion a column uses.
type FilterType string

const (
	FilterText    FilterType = "text"
	FilterNumber  FilterType = "number"
	FilterSelect  FilterType = "select"
	FilterDate    FilterType = "date"
	FilterBoolean FilterType = "boolean"
)

// ParseFilterType validates a textual filter type. The empty string maps to
// FilterText.
func ParseFilterType(s string) (FilterType, error) {
	switch FilterType(s) {
	case "":
		return FilterText, nil
	case FilterText, FilterNumber, FilterSelect, FilterDate, FilterBoolean:
		return FilterType(s), nil
	}
	return "", fmt.Errorf("unknown filter type %q", s)
}

// Accessor extracts a cell value from a row. Accessors must be pure.
type Accessor[T any] func(row T) any

// CompareFunc orders two non-null cell values. The owning rows are passed
// for tie-breaks that need more than the cell.
type CompareFunc[T any] func(a, b any, rowA, rowB T) int

// Column declares one grid column.
type Column[T any] struct {
	Key        string
	Title      string
	Accessor   Accessor[T]
	Sortable   *bool
	Filterable *bool
	FilterType FilterType
	Compare    CompareFunc[T]
	Width      int
	MinWidth   int
	MaxWidth   int
	Resizable  *bool
}

// Value returns the accessed cell value for row, or nil without an accessor.
func (c Column[T]) Value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Header is the display title, falling back to the key.
func (c Column[T]) Header() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

func (c Column[T]) IsSortable() bool   { return util.BoolValueOr(c.Sortable, true) }
func (c Column[T]) IsFilterable() bool { return util.BoolValueOr(c.Filterable, true) }
func (c Column[T]) IsResizable() bool  { return util.BoolValueOr(c.Resizable, true) }

// Set is an ordered, key-indexed column collection. A nil *Set is empty.
type Set[T any] struct {
	cols  []Column[T]
	index map[string]int
}

// NewSet validates that keys are present and unique and indexes them.
func NewSet[T any](cols ...Column[T]) (*Set[T], error) {
	s := &Set[T]{
		cols:  make([]Column[T], 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c.Key == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyKey)
		}
		if _, ok := s.index[c.Key]; ok {
			return nil, fmt.Errorf("column %q: %w", c.Key, ErrDuplicateKey)
		}
		if c.FilterType == "" {
			c.FilterType = FilterText
		}
		s.index[c.Key] = len(s.cols)
		s.cols = append(s.cols, c)
	}
	return s, nil
}

// MustNewSet is NewSet that panics on invalid declarations.
func MustNewSet[T any](cols ...Column[T]) *Set[T] {
	s, err := NewSet(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup finds a column by key.
func (s *Set[T]) Lookup(key string) (Column[T], bool) {
	if s == nil {
		return Column[T]{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Column[T]{}, false
	}
	return s.cols[i], true
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cols)
}

// Columns returns the columns in declaration order.
func (s *Set[T]) Columns() []Column[T] {
	if s == nil {
		return nil
	}
	out := make([]Column[T], len(s.cols))
	copy(out, s.cols)
	return out
}

// Keys returns the column keys in declaration order.
func (s *Set[T]) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.cols))
	for i, c := range s.cols {
		keys[i] = c.Key
	}
	return keys
}
