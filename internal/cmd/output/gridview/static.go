package gridview

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kong/gridctl/internal/grid"
	"github.com/kong/gridctl/internal/grid/filter"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/sorting"
	"github.com/kong/gridctl/internal/theme"
)

type config struct {
	title   string
	format  Formatter
	palette theme.Palette
	width   int
	gridID  string
}

// Option configures rendering.
type Option func(*config)

// WithTitle sets a line printed above the table.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithFormatter sets how cells are rendered.
func WithFormatter(format Formatter) Option {
	return func(c *config) {
		if format != nil {
			c.format = format
		}
	}
}

// WithPalette overrides the current theme palette.
func WithPalette(p theme.Palette) Option {
	return func(c *config) {
		c.palette = p
	}
}

// WithWidth limits the table to width cells. Zero means unlimited.
func WithWidth(width int) Option {
	return func(c *config) {
		c.width = width
	}
}

// WithGridID labels structured output and the browser status line.
func WithGridID(id string) Option {
	return func(c *config) {
		c.gridID = id
	}
}

func newConfig(opts []Option) config {
	cfg := config{format: PlainFormat, palette: theme.Current()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// RenderStatic writes the current page of g as a bordered table followed by
// a summary line.
func RenderStatic[T any](out io.Writer, g *grid.Grid[T], opts ...Option) error {
	if out == nil {
		return errors.New("gridview: output stream is not available")
	}
	cfg := newConfig(opts)
	view := g.Process()

	if len(view.Columns) == 0 {
		return writeStaticMessage(out, cfg.title, "No visible columns. Use --show to reveal hidden columns.")
	}
	if view.Total == 0 {
		return writeStaticMessage(out, cfg.title, "No rows match.")
	}

	widths := make([]int, len(view.Columns))
	minWidths := make([]int, len(view.Columns))
	for i, c := range view.Columns {
		widths[i] = cells(view.Widths[c.Key])
		minWidths[i] = min(widths[i], minColumnCells)
	}
	if cfg.width > 0 {
		// borders and one cell of padding either side of each column
		frame := len(widths)*3 + 1
		shrinkToWidth(widths, minWidths, cfg.width-frame)
	}

	headers := make([]string, len(view.Columns))
	specs := g.Sort()
	for i, c := range view.Columns {
		headers[i] = fit(headerLabel(c, specs), widths[i])
	}
	rows := make([][]string, len(view.Rows))
	for ri, r := range view.Rows {
		cellsOut := make([]string, len(view.Columns))
		for ci, c := range view.Columns {
			cellsOut[ci] = fit(cellText(cfg.format, c, r), widths[ci])
		}
		rows[ri] = cellsOut
	}

	re := lipgloss.NewRenderer(out)
	p := cfg.palette
	headerStyle := re.NewStyle().Padding(0, 1).Bold(true).Foreground(p.Adaptive(theme.ColorHeaderText))
	cellStyle := re.NewStyle().Padding(0, 1).Foreground(p.Adaptive(theme.ColorTextPrimary))
	altStyle := cellStyle.Background(p.Adaptive(theme.ColorRowAlt))

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(re.NewStyle().Foreground(p.Adaptive(theme.ColorBorder))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, _ int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return headerStyle
			case r%2 == 1:
				return altStyle
			}
			return cellStyle
		})

	sections := make([]string, 0, 3)
	if cfg.title != "" {
		sections = append(sections, cfg.title)
	}
	sections = append(sections, tbl.String(), re.NewStyle().Foreground(p.Adaptive(theme.ColorTextMuted)).Render(Summary(g, view)))
	_, err := fmt.Fprintln(out, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

// Summary describes the row counts, paging, sort and filters of view.
func Summary[T any](g *grid.Grid[T], view grid.View[T]) string {
	parts := make([]string, 0, 4)
	if g.Virtualized() || view.PageCount <= 1 {
		parts = append(parts, fmt.Sprintf("%d rows", view.Total))
	} else {
		first := (view.Page-1)*view.PageSize + 1
		last := first + len(view.Rows) - 1
		parts = append(parts, fmt.Sprintf("rows %d-%d of %d", first, last, view.Total),
			fmt.Sprintf("page %d/%d", view.Page, view.PageCount))
	}
	if n := g.Selection().Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if specs := g.Sort(); len(specs) > 0 {
		keys := make([]string, len(specs))
		for i, s := range specs {
			keys[i] = s.String()
		}
		parts = append(parts, "sorted by "+strings.Join(keys, ", "))
	}
	if filters := g.Filters(); len(filters) > 0 {
		parts = append(parts, "where "+filter.Description(filters))
	}
	if term := g.Search(); term != "" {
		parts = append(parts, fmt.Sprintf("search %q", term))
	}
	return strings.Join(parts, " · ")
}

// shrinkToWidth narrows the widest columns, one cell at a time, until the
// total fits limit or every column is at its minimum.
func shrinkToWidth(widths, minWidths []int, limit int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > limit {
		idx := widestColumnAboveMin(widths, minWidths)
		if idx == -1 {
			return
		}
		widths[idx]--
		total--
	}
}

func widestColumnAboveMin(widths, minWidths []int) int {
	idx := -1
	maxWidth := math.MinInt
	for i, width := range widths {
		if width > maxWidth && width > minWidths[i] {
			maxWidth = width
			idx = i
		}
	}
	return idx
}

func writeStaticMessage(out io.Writer, title, message string) error {
	content := message
	if title != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, title, message)
	}
	_, err := fmt.Fprintln(out, content)
	return err
}

// Payload is the structured form of one page for json and yaml output.
type Payload struct {
	GridID    string           `json:"grid_id,omitempty" yaml:"grid_id,omitempty"`
	Columns   []string         `json:"columns" yaml:"columns"`
	Hidden    []string         `json:"hidden_columns,omitempty" yaml:"hidden_columns,omitempty"`
	Rows      []map[string]any `json:"rows" yaml:"rows"`
	IDs       []row.ID         `json:"ids" yaml:"ids"`
	Total     int              `json:"total" yaml:"total"`
	Page      int              `json:"page" yaml:"page"`
	PageSize  int              `json:"page_size" yaml:"page_size"`
	PageCount int              `json:"page_count" yaml:"page_count"`
	Search    string           `json:"search,omitempty" yaml:"search,omitempty"`
	Filters   []filter.Filter  `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sort      []sorting.Spec   `json:"sort,omitempty" yaml:"sort,omitempty"`
}

// BuildPayload captures the current page of g with raw cell values keyed by
// the visible column keys.
func BuildPayload[T any](g *grid.Grid[T], gridID string) Payload {
	view := g.Process()
	keys := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		keys[i] = c.Key
	}
	rows := make([]map[string]any, len(view.Rows))
	for i, r := range view.Rows {
		m := make(map[string]any, len(view.Columns))
		for _, c := range view.Columns {
			m[c.Key] = c.Value(r)
		}
		rows[i] = m
	}
	return Payload{
		GridID:    gridID,
		Columns:   keys,
		Hidden:    g.ColumnState().Hidden(),
		Rows:      rows,
		IDs:       view.IDs,
		Total:     view.Total,
		Page:      view.Page,
		PageSize:  view.PageSize,
		PageCount: view.PageCount,
		Search:    g.Search(),
		Filters:   g.Filters(),
		Sort:      g.Sort(),
	}
}
