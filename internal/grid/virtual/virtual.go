// Package virtual provides what a windowed row renderer needs from the grid:
// stable row keys, an estimated row size, a fingerprint whose change means
// previously measured rows must be measured again, and window arithmetic.
package virtual

import (
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/kong/gridctl/internal/grid/row"
)

const (
	DefaultRowHeight         = 1
	DefaultExpandedRowHeight = 6
)

// Fingerprint summarizes the render-affecting interaction state. Compare
// fingerprints with ==.
type Fingerprint struct {
	Selected       int
	SelectionHash  uint64
	Expanded       int
	ExpansionHash  uint64
	WidthHash      uint64
	VisibleColumns string
}

// NewFingerprint digests the selection, expansion, widths and visible
// column order. Set hashes ignore member order; the visible column list
// does not.
func NewFingerprint(selected, expanded []row.ID, widths map[string]int, visible []string) Fingerprint {
	return Fingerprint{
		Selected:       len(selected),
		SelectionHash:  hashIDs(selected),
		Expanded:       len(expanded),
		ExpansionHash:  hashIDs(expanded),
		WidthHash:      hashWidths(widths),
		VisibleColumns: joinKeys(visible),
	}
}

func hashIDs(ids []row.ID) uint64 {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	d := xxhash.New()
	for _, id := range sorted {
		_, _ = d.WriteString(string(id))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func hashWidths(widths map[string]int) uint64 {
	keys := make([]string, 0, len(widths))
	for k := range widths {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(strconv.Itoa(widths[k]))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func joinKeys(keys []string) string {
	n := 0
	for _, k := range keys {
		n += len(k) + 1
	}
	b := make([]byte, 0, n)
	for i, k := range keys {
		if i > 0 {
			b = append(b, 0x1f)
		}
		b = append(b, k...)
	}
	return string(b)
}

// Tracker remembers the last fingerprint seen by a renderer.
type Tracker struct {
	last Fingerprint
	seen bool
}

// Changed records fp and reports whether it differs from the previous one.
// The first call always reports true.
func (t *Tracker) Changed(fp Fingerprint) bool {
	changed := !t.seen || fp != t.last
	t.last, t.seen = fp, true
	return changed
}

// Adapter derives keys and sizes for a windowed renderer.
type Adapter[T any] struct {
	ID                row.IDFunc[T]
	RowHeight         int
	ExpandedRowHeight int
	Expandable        bool
}

// KeyOf returns the stable key of a row.
func (a Adapter[T]) KeyOf(r T, index int) string {
	if a.ID == nil {
		return string(row.IndexID(index))
	}
	return string(a.ID(r, index))
}

// EstimatedItemSize is the size to assume for unmeasured rows. Expandable
// grids reserve room for detail content.
func (a Adapter[T]) EstimatedItemSize() int {
	if a.Expandable {
		return a.expandedHeight()
	}
	return a.rowHeight()
}

// ItemSize is the measured size of a row in its current state.
func (a Adapter[T]) ItemSize(expanded bool) int {
	if expanded {
		return a.expandedHeight()
	}
	return a.rowHeight()
}

func (a Adapter[T]) rowHeight() int {
	if a.RowHeight > 0 {
		return a.RowHeight
	}
	return DefaultRowHeight
}

func (a Adapter[T]) expandedHeight() int {
	if a.ExpandedRowHeight > 0 {
		return max(a.ExpandedRowHeight, a.rowHeight())
	}
	return max(DefaultExpandedRowHeight, a.rowHeight())
}
