// Package gridview renders grid views to the terminal, either as a static
// table or as an interactive browser.
package gridview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/kong/gridctl/internal/grid"
	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/sorting"
	"github.com/kong/gridctl/internal/grid/value"
	"github.com/kong/gridctl/internal/util"
)

const (
	// UnitsPerCell converts engine column widths to terminal cells.
	UnitsPerCell = 10

	minColumnCells = 4
	maxColumnCells = 60
	// fitSample bounds how many rows are measured when fitting widths.
	fitSample = 500
	ellipsis  = "…"
)

// Formatter renders a cell value for display.
type Formatter func(key string, v any) string

// PlainFormat renders values through value.String.
func PlainFormat(_ string, v any) string {
	return value.String(v)
}

// FitWidths sizes every column that declares no width of its own to its
// content, measured over the matching rows. Declared widths are kept.
func FitWidths[T any](g *grid.Grid[T], format Formatter) {
	if format == nil {
		format = PlainFormat
	}
	matching := g.Matching()

	state := g.ColumnState()
	for _, c := range g.ColumnSet().Columns() {
		if c.Width > 0 {
			continue
		}
		w := runewidth.StringWidth(c.Header()) + 2
		for i, r := range matching {
			if i == fitSample {
				break
			}
			if cw := runewidth.StringWidth(cellText(format, c, r)); cw > w {
				w = cw
			}
		}
		state.SetWidth(c.Key, clamp(w, minColumnCells, maxColumnCells)*UnitsPerCell)
	}
}

// cells converts an engine width to terminal cells.
func cells(width int) int {
	return max(width/UnitsPerCell, 1)
}

// cellText renders one cell on a single line. UUID values in id columns are
// shortened to their first block.
func cellText[T any](format Formatter, c column.Column[T], r T) string {
	s := format(c.Key, c.Value(r))
	s = strings.Join(strings.Fields(s), " ")
	if isIDColumn(c.Key) {
		s = util.AbbreviateUUID(s)
	}
	return s
}

func isIDColumn(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "id", "uuid", "uid", "identifier":
		return true
	}
	k = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(k)
	for _, suffix := range []string{" id", " uuid", " uid", " identifier"} {
		if strings.HasSuffix(k, suffix) {
			return true
		}
	}
	return false
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > w {
		s = ansi.Truncate(s, w, ellipsis)
	}
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// headerLabel appends the sort direction, and the sort priority when more
// than one column is sorted.
func headerLabel[T any](c column.Column[T], specs []sorting.Spec) string {
	label := c.Header()
	for i, s := range specs {
		if s.Column != c.Key {
			continue
		}
		arrow := "▲"
		if s.Direction == sorting.Desc {
			arrow = "▼"
		}
		if len(specs) > 1 {
			return fmt.Sprintf("%s %s%d", label, arrow, i+1)
		}
		return label + " " + arrow
	}
	return label
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
