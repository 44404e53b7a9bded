package gridview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kong/gridctl/internal/grid"
	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/selection"
	"github.com/kong/gridctl/internal/grid/virtual"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/internal/theme"
)

const (
	defaultWidth  = 120
	defaultHeight = 24
	columnGap     = "  "
	// prefixWidth covers the selection box and the expansion marker.
	prefixWidth  = 6
	detailIndent = "      "
)

type styles struct {
	header   lipgloss.Style
	focused  lipgloss.Style
	cell     lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	pinned   lipgloss.Style
	disabled lipgloss.Style
	detail   lipgloss.Style
	muted    lipgloss.Style
	chip     lipgloss.Style
	danger   lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(p.Adaptive(theme.ColorHeaderText)),
		focused:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(p.Adaptive(theme.ColorSorted)),
		cell:     lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorTextPrimary)),
		cursor:   lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorCursorText)).Background(p.Adaptive(theme.ColorCursor)),
		selected: lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorSelectedText)).Background(p.Adaptive(theme.ColorSelected)),
		pinned:   lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorPinned)),
		disabled: lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorDisabled)),
		detail:   lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorExpanded)),
		muted:    lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorTextMuted)),
		chip:     lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorFilterChipTxt)).Background(p.Adaptive(theme.ColorFilterChip)).Padding(0, 1),
		danger:   lipgloss.NewStyle().Foreground(p.Adaptive(theme.ColorDanger)),
	}
}

// Model is the interactive grid browser.
type Model[T any] struct {
	g    *grid.Grid[T]
	cfg  config
	keys keyMap
	help help.Model

	search    textinput.Model
	searching bool
	prevTerm  string
	showHelp  bool

	view   grid.View[T]
	cursor int
	offset int
	focus  int
	width  int
	height int

	styles  styles
	status  string
	copyIDs func(string) error

	// rendered row lines keyed by row key; dropped whenever the view
	// fingerprint or the horizontal layout changes
	tracker virtual.Tracker
	lines   map[string][]string
	layout  [2]int
}

// NewModel builds a browser over g.
func NewModel[T any](g *grid.Grid[T], opts ...Option) *Model[T] {
	cfg := newConfig(opts)
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search all columns"

	m := &Model[T]{
		g:       g,
		cfg:     cfg,
		keys:    defaultKeyMap(),
		help:    help.New(),
		search:  ti,
		width:   defaultWidth,
		height:  defaultHeight,
		styles:  newStyles(cfg.palette),
		copyIDs: clipboard.WriteAll,
		lines:   make(map[string][]string),
	}
	m.refresh()
	return m
}

// Browse runs the browser on the terminal behind streams until the user
// quits or ctx is cancelled.
func Browse[T any](ctx context.Context, streams *iostreams.IOStreams, g *grid.Grid[T], opts ...Option) error {
	if streams == nil || streams.Out == nil {
		return errors.New("gridview: output stream is not available")
	}
	m := NewModel(g, opts...)
	m.width, m.height = streams.TerminalSize(defaultWidth, defaultHeight)

	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (m *Model[T]) Init() tea.Cmd {
	return nil
}

func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, k.Up):
		m.moveCursor(-1)
	case key.Matches(msg, k.Down):
		m.moveCursor(1)
	case key.Matches(msg, k.Top):
		m.moveCursor(-len(m.view.Rows))
	case key.Matches(msg, k.Bottom):
		m.moveCursor(len(m.view.Rows))
	case key.Matches(msg, k.Left):
		m.focus = max(m.focus-1, 0)
	case key.Matches(msg, k.Right):
		m.focus = min(m.focus+1, max(len(m.view.Columns)-1, 0))
	case key.Matches(msg, k.Select):
		if id, ok := m.cursorID(); ok {
			m.g.ToggleRow(id, selection.Modifiers{})
		}
	case key.Matches(msg, k.RangeUp):
		m.extendRange(-1)
	case key.Matches(msg, k.RangeDown):
		m.extendRange(1)
	case key.Matches(msg, k.RangeToAnchor):
		m.rangeToCursor()
	case key.Matches(msg, k.ToggleAll):
		m.g.ToggleAll()
	case key.Matches(msg, k.SelectMatching):
		m.g.SelectAllMatching()
		m.status = fmt.Sprintf("Selected all %d matching rows", m.g.Selection().Len())
	case key.Matches(msg, k.Clear):
		m.g.ClearSelection()
	case key.Matches(msg, k.Expand):
		if id, ok := m.cursorID(); ok {
			m.g.ToggleExpanded(id)
		}
	case key.Matches(msg, k.Search):
		m.prevTerm = m.g.Search()
		m.searching = true
		m.search.SetValue(m.prevTerm)
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, k.Sort), key.Matches(msg, k.SortMulti):
		m.toggleSort(key.Matches(msg, k.SortMulti))
	case key.Matches(msg, k.Hide):
		m.hideFocused()
	case key.Matches(msg, k.ShowAll):
		m.g.ColumnState().ShowAll()
	case key.Matches(msg, k.Narrow):
		m.resizeFocused(-UnitsPerCell)
	case key.Matches(msg, k.Widen):
		m.resizeFocused(UnitsPerCell)
	case key.Matches(msg, k.NextPage):
		m.g.NextPage()
		m.cursor, m.offset = 0, 0
	case key.Matches(msg, k.PrevPage):
		m.g.PrevPage()
		m.cursor, m.offset = 0, 0
	case key.Matches(msg, k.ClearFilters):
		m.g.ClearFilters()
		m.g.SetSearch("")
	case key.Matches(msg, k.Virtual):
		m.g.SetVirtualized(!m.g.Virtualized())
		m.cursor, m.offset = 0, 0
	case key.Matches(msg, k.Copy):
		m.copySelection()
	case key.Matches(msg, k.Theme):
		m.nextTheme()
	}
	m.refresh()
	return nil
}

func (m *Model[T]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type { //nolint:exhaustive
	case tea.KeyEsc:
		m.g.SetSearch(m.prevTerm)
		m.endSearch()
		return nil
	case tea.KeyEnter:
		m.endSearch()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.g.SetSearch(m.search.Value())
	m.cursor, m.offset = 0, 0
	m.refresh()
	return cmd
}

func (m *Model[T]) endSearch() {
	m.searching = false
	m.search.Blur()
	m.refresh()
}

func (m *Model[T]) refresh() {
	m.view = m.g.Process()
	if m.tracker.Changed(m.view.Fingerprint) {
		clear(m.lines)
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.view.Rows)-1, 0))
	m.focus = clamp(m.focus, 0, max(len(m.view.Columns)-1, 0))
	m.ensureCursorVisible()
}

func (m *Model[T]) cursorID() (row.ID, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.IDs) {
		return "", false
	}
	return m.view.IDs[m.cursor], true
}

func (m *Model[T]) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.view.Rows)-1, 0))
	m.ensureCursorVisible()
}

// extendRange moves the cursor and selects the visible range between the
// anchor and the new cursor row. Without an anchor the starting row
// becomes the anchor.
func (m *Model[T]) extendRange(delta int) {
	from, ok := m.cursorID()
	if !ok {
		return
	}
	sel := m.g.Selection()
	if _, has := sel.Anchor(); !has {
		m.g.ToggleRow(from, selection.Modifiers{})
	}
	m.moveCursor(delta)
	m.rangeToCursor()
}

func (m *Model[T]) rangeToCursor() {
	to, ok := m.cursorID()
	if !ok {
		return
	}
	anchor, has := m.g.Selection().Anchor()
	if !has {
		m.status = "No anchor row; select a row with space first"
		return
	}
	m.g.SelectRange(anchor, to)
}

func (m *Model[T]) focusedColumn() (column.Column[T], bool) {
	if m.focus < 0 || m.focus >= len(m.view.Columns) {
		return column.Column[T]{}, false
	}
	return m.view.Columns[m.focus], true
}

func (m *Model[T]) toggleSort(multi bool) {
	c, ok := m.focusedColumn()
	if !ok {
		return
	}
	if !c.IsSortable() {
		m.status = fmt.Sprintf("Column %s is not sortable", c.Header())
		return
	}
	m.g.ToggleSort(c.Key, multi)
}

func (m *Model[T]) hideFocused() {
	c, ok := m.focusedColumn()
	if !ok {
		return
	}
	if len(m.view.Columns) == 1 {
		m.status = "Cannot hide the last visible column"
		return
	}
	m.g.ColumnState().Hide(c.Key)
	m.status = fmt.Sprintf("Hid %s; press + to show all columns", c.Header())
}

func (m *Model[T]) resizeFocused(delta int) {
	c, ok := m.focusedColumn()
	if !ok {
		return
	}
	cs := m.g.ColumnState()
	if !cs.BeginResize(c.Key) {
		m.status = fmt.Sprintf("Column %s is not resizable", c.Header())
		return
	}
	cs.Drag(delta)
	_, w, _ := cs.EndResize()
	m.status = fmt.Sprintf("%s width %d", c.Header(), cells(w))
}

func (m *Model[T]) copySelection() {
	ids := m.g.Selection().Selected()
	if len(ids) == 0 {
		if id, ok := m.cursorID(); ok {
			ids = []row.ID{id}
		}
	}
	if len(ids) == 0 {
		m.status = "Nothing to copy"
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	if err := m.copyIDs(strings.Join(parts, "\n")); err != nil {
		m.status = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("Copied %d id(s)", len(ids))
}

func (m *Model[T]) nextTheme() {
	names := theme.Available()
	if len(names) == 0 {
		return
	}
	i := slices.Index(names, m.cfg.palette.Name)
	next, ok := theme.Get(names[(i+1)%len(names)])
	if !ok {
		return
	}
	m.cfg.palette = next
	m.styles = newStyles(next)
	clear(m.lines)
	m.status = "Theme: " + next.DisplayName
}

// sizes returns the height in lines of every row in the view.
func (m *Model[T]) sizes() []int {
	adapter := m.g.Adapter()
	exp := m.g.Expansion()
	out := make([]int, len(m.view.IDs))
	for i, id := range m.view.IDs {
		out[i] = adapter.ItemSize(exp.IsExpanded(id))
	}
	return out
}

func (m *Model[T]) chromeHeight() int {
	h := 3 // summary, header, status
	if m.hasChips() {
		h++
	}
	if m.showHelp {
		tallest := 0
		for _, group := range m.keys.FullHelp() {
			tallest = max(tallest, len(group))
		}
		h += tallest
	}
	return h
}

func (m *Model[T]) bodyHeight() int {
	return max(m.height-m.chromeHeight(), 1)
}

func (m *Model[T]) ensureCursorVisible() {
	if len(m.view.Rows) == 0 {
		m.offset = 0
		return
	}
	sizes := m.sizes()
	top := virtual.OffsetOf(sizes, m.cursor)
	bottom := top + sizes[m.cursor]
	body := m.bodyHeight()
	if top < m.offset {
		m.offset = top
	}
	if bottom > m.offset+body {
		m.offset = bottom - body
	}
	m.offset = max(m.offset, 0)
}

func (m *Model[T]) hasChips() bool {
	return len(m.g.Filters()) > 0 || m.g.Search() != ""
}

// layoutColumns picks the columns that fit the terminal width, scrolling
// right so the focused column is always shown.
func (m *Model[T]) layoutColumns() (first int, widths []int) {
	cols := m.view.Columns
	widths = make([]int, len(cols))
	for i, c := range cols {
		widths[i] = cells(m.view.Widths[c.Key])
	}
	avail := m.width - prefixWidth
	span := func(from, to int) int {
		total := 0
		for i := from; i <= to; i++ {
			total += widths[i] + len(columnGap)
		}
		return total
	}
	for first < m.focus && span(first, m.focus) > avail {
		first++
	}
	return first, widths
}

func (m *Model[T]) View() string {
	sections := make([]string, 0, 5)

	summary := Summary(m.g, m.view)
	if m.cfg.title != "" {
		summary = m.cfg.title + " · " + summary
	}
	sections = append(sections, m.styles.muted.Render(ansi.Truncate(summary, m.width, ellipsis)))

	if m.hasChips() {
		sections = append(sections, m.renderChips())
	}

	first, widths := m.layoutColumns()
	sections = append(sections, m.renderHeader(first, widths))
	sections = append(sections, m.renderBody(first, widths))

	switch {
	case m.searching:
		sections = append(sections, m.search.View())
	case m.status != "":
		sections = append(sections, m.styles.muted.Render(m.status))
	default:
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model[T]) renderChips() string {
	var chips []string
	for _, f := range m.g.Filters() {
		chips = append(chips, m.styles.chip.Render(f.String()))
	}
	if term := m.g.Search(); term != "" {
		chips = append(chips, m.styles.chip.Render("/"+term))
	}
	return strings.Join(chips, " ")
}

func (m *Model[T]) renderHeader(first int, widths []int) string {
	box := "[ ]"
	switch {
	case m.view.AllSelected:
		box = "[x]"
	case m.view.Indeterminate:
		box = "[-]"
	}
	var b strings.Builder
	b.WriteString(fit(box, prefixWidth))
	specs := m.g.Sort()
	for i := first; i < len(m.view.Columns); i++ {
		label := fit(headerLabel(m.view.Columns[i], specs), widths[i])
		if i == m.focus {
			b.WriteString(m.styles.focused.Render(label))
		} else {
			b.WriteString(m.styles.header.Render(label))
		}
		b.WriteString(columnGap)
	}
	return ansi.Truncate(b.String(), m.width, "")
}

func (m *Model[T]) renderBody(first int, widths []int) string {
	body := m.bodyHeight()
	if len(m.view.Rows) == 0 {
		return m.styles.muted.Render(fit("No rows match.", m.width)) + strings.Repeat("\n", body-1)
	}

	if layout := [2]int{first, m.width}; layout != m.layout {
		clear(m.lines)
		m.layout = layout
	}

	sizes := m.sizes()
	win := virtual.VariableWindow(sizes, m.offset, body, 0)
	start := virtual.OffsetOf(sizes, win.Start)

	adapter := m.g.Adapter()
	lines := make([]string, 0, body)
	for i := win.Start; i < win.End; i++ {
		e := m.view.Entries[i]
		var rowLines []string
		if i == m.cursor {
			rowLines = m.renderRow(i, first, widths, sizes[i])
		} else {
			k := adapter.KeyOf(e.Row, e.Index)
			cached, ok := m.lines[k]
			if !ok {
				cached = m.renderRow(i, first, widths, sizes[i])
				m.lines[k] = cached
			}
			rowLines = cached
		}
		lines = append(lines, rowLines...)
	}

	skip := m.offset - start
	if skip > 0 && skip < len(lines) {
		lines = lines[skip:]
	}
	if len(lines) > body {
		lines = lines[:body]
	}
	for len(lines) < body {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderRow renders row i of the view in exactly height lines.
func (m *Model[T]) renderRow(i, first int, widths []int, height int) []string {
	e := m.view.Entries[i]
	id := m.view.IDs[i]
	features := m.g.RowFeatures(e)
	selected := m.g.Selection().IsSelected(id)
	expanded := m.g.Expansion().IsExpanded(id)

	box := "[ ]"
	switch {
	case !features.IsSelectable():
		box = " - "
	case selected:
		box = "[x]"
	}
	marker := "▸"
	if expanded {
		marker = "▾"
	}

	var b strings.Builder
	b.WriteString(fit(box+" "+marker, prefixWidth))
	for ci := first; ci < len(m.view.Columns); ci++ {
		b.WriteString(fit(cellText(m.cfg.format, m.view.Columns[ci], e.Row), widths[ci]))
		b.WriteString(columnGap)
	}
	line := fit(b.String(), m.width)

	style := m.styles.cell
	switch {
	case i == m.cursor:
		style = m.styles.cursor
	case selected:
		style = m.styles.selected
	case !features.IsSelectable():
		style = m.styles.disabled
	case !features.IsSortable():
		style = m.styles.pinned
	}

	out := make([]string, 0, height)
	out = append(out, style.Render(line))
	if expanded {
		for _, l := range m.detailLines(e.Row, height-1) {
			out = append(out, m.styles.detail.Render(l))
		}
	}
	for len(out) < height {
		out = append(out, "")
	}
	return out[:height]
}

// detailLines lists every column, hidden ones included, wrapped to the
// terminal width and cut to n lines.
func (m *Model[T]) detailLines(r T, n int) []string {
	if n <= 0 {
		return nil
	}
	wrapAt := max(m.width-len(detailIndent), 20)
	var out []string
	for _, c := range m.g.ColumnSet().Columns() {
		text := fmt.Sprintf("%s: %s", c.Header(), m.cfg.format(c.Key, c.Value(r)))
		for _, l := range strings.Split(wordwrap.String(text, wrapAt), "\n") {
			out = append(out, detailIndent+l)
			if len(out) == n {
				return out
			}
		}
	}
	return out
}
