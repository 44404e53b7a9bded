package gridview

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kong/gridctl/internal/grid"
	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/filter"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/sorting"
	"github.com/kong/gridctl/internal/theme"
)

type service struct {
	ID    string
	Name  string
	Port  int
	Owner string
}

func services(n int) []service {
	out := make([]service, n)
	for i := range out {
		out[i] = service{
			ID:    fmt.Sprintf("%08d-1234-1234-1234-123456789012", i+1),
			Name:  fmt.Sprintf("svc-%02d", i+1),
			Port:  8000 + i,
			Owner: []string{"ann", "bob", "cid"}[i%3],
		}
	}
	return out
}

func serviceColumns() []column.Column[service] {
	return []column.Column[service]{
		{Key: "id", Title: "ID", Accessor: func(s service) any { return s.ID }},
		{Key: "name", Title: "Name", Accessor: func(s service) any { return s.Name }},
		{Key: "port", Title: "Port", Accessor: func(s service) any { return s.Port }, FilterType: column.FilterNumber},
		{Key: "owner", Title: "Owner", Accessor: func(s service) any { return s.Owner }},
	}
}

func newServiceGrid(t *testing.T, n int, mutate ...func(*grid.Options[service])) *grid.Grid[service] {
	t.Helper()
	opts := grid.Options[service]{
		Columns:  serviceColumns(),
		RowID:    func(s service, _ int) row.ID { return row.ID(s.Name) },
		PageSize: 2,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	g, err := grid.New(services(n), opts)
	require.NoError(t, err)
	FitWidths(g, nil)
	return g
}

func TestFitWidths(t *testing.T) {
	g := newServiceGrid(t, 3)
	widths := g.ColumnState().Widths()
	assert.Equal(t, 9*UnitsPerCell, widths["id"], "abbreviated uuids are measured")
	assert.Equal(t, 6*UnitsPerCell, widths["port"], "header plus sort indicator room")
	assert.Equal(t, 7*UnitsPerCell, widths["owner"])

	declared := serviceColumns()
	declared[1].Width = 300
	g2, err := grid.New(services(3), grid.Options[service]{Columns: declared})
	require.NoError(t, err)
	FitWidths(g2, nil)
	assert.Equal(t, 300, g2.ColumnState().Width("name"))
}

func TestRenderStatic(t *testing.T) {
	g := newServiceGrid(t, 3)
	g.SetSort([]sorting.Spec{{Column: "name", Direction: sorting.Desc}})

	var out bytes.Buffer
	require.NoError(t, RenderStatic(&out, g, WithTitle("Services"), WithPalette(theme.Current())))
	text := out.String()

	assert.True(t, strings.HasPrefix(text, "Services"))
	assert.Contains(t, text, "Name ▼")
	assert.Contains(t, text, "svc-03")
	assert.Contains(t, text, "svc-02")
	assert.NotContains(t, text, "svc-01", "second page is not rendered")
	assert.Contains(t, text, "00000003…", "uuid ids are abbreviated")
	assert.Contains(t, text, "rows 1-2 of 3 · page 1/2 · sorted by name:desc")
}

func TestRenderStaticMessages(t *testing.T) {
	g := newServiceGrid(t, 3)
	require.NoError(t, g.SetFilter(filter.Filter{Column: "owner", Operator: filter.Eq, Value: "zed"}))

	var out bytes.Buffer
	require.NoError(t, RenderStatic(&out, g))
	assert.Equal(t, "No rows match.\n", out.String())

	for _, k := range []string{"id", "name", "port", "owner"} {
		g.ColumnState().Hide(k)
	}
	out.Reset()
	require.NoError(t, RenderStatic(&out, g))
	assert.Contains(t, out.String(), "No visible columns")
}

func TestRenderStaticShrinksToWidth(t *testing.T) {
	g := newServiceGrid(t, 2)
	var out bytes.Buffer
	require.NoError(t, RenderStatic(&out, g, WithWidth(30)))
	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30, line)
	}
	assert.Contains(t, out.String(), "…")
}

func TestShrinkToWidth(t *testing.T) {
	widths := []int{10, 30, 8}
	shrinkToWidth(widths, []int{4, 4, 4}, 30)
	assert.Equal(t, []int{10, 12, 8}, widths)

	widths = []int{6, 6}
	shrinkToWidth(widths, []int{4, 4}, 2)
	assert.Equal(t, []int{4, 4}, widths)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, "abc…", fit("abcdef", 4))
	assert.Equal(t, "", fit("abc", 0))
}

func TestIsIDColumn(t *testing.T) {
	for _, k := range []string{"id", "ID", "service_id", "owner-uuid", "meta.uid"} {
		assert.True(t, isIDColumn(k), k)
	}
	for _, k := range []string{"idea", "valid", "name"} {
		assert.False(t, isIDColumn(k), k)
	}
}

func TestBuildPayload(t *testing.T) {
	g := newServiceGrid(t, 3)
	g.ColumnState().Hide("id")
	require.NoError(t, g.SetFilter(filter.Filter{Column: "port", Operator: filter.Gte, Value: 8001}))

	p := BuildPayload(g, "services")
	want := Payload{
		GridID:    "services",
		Columns:   []string{"name", "port", "owner"},
		Hidden:    []string{"id"},
		Rows:      []map[string]any{{"name": "svc-02", "port": 8001, "owner": "bob"}, {"name": "svc-03", "port": 8002, "owner": "cid"}},
		IDs:       []row.ID{"svc-02", "svc-03"},
		Total:     2,
		Page:      1,
		PageSize:  2,
		PageCount: 1,
		Filters:   []filter.Filter{{Column: "port", Operator: filter.Gte, Value: 8001}},
		Sort:      []sorting.Spec{},
	}
	if diff := cmp.Diff(want, p, cmpEmptyAsNil); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

var cmpEmptyAsNil = cmp.FilterValues(func(a, b []sorting.Spec) bool {
	return len(a) == 0 && len(b) == 0
}, cmp.Ignore())

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model[service], msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestBrowseSelection(t *testing.T) {
	g := newServiceGrid(t, 5, func(o *grid.Options[service]) { o.PageSize = 5 })
	m := NewModel(g)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})

	press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, []row.ID{"svc-01"}, g.Selection().Selected())

	press(m, tea.KeyMsg{Type: tea.KeyShiftDown}, tea.KeyMsg{Type: tea.KeyShiftDown})
	assert.ElementsMatch(t, []row.ID{"svc-01", "svc-02", "svc-03"}, g.Selection().Selected())
	assert.Equal(t, 2, m.cursor)

	press(m, runes("j"), runes("j"), runes("X"))
	assert.Len(t, g.Selection().Selected(), 5)
	assert.Contains(t, m.View(), "[x]")

	press(m, runes("c"))
	assert.Empty(t, g.Selection().Selected())

	press(m, runes("a"))
	assert.Len(t, g.Selection().Selected(), 5)
	press(m, runes("a"))
	assert.Empty(t, g.Selection().Selected())
}

func TestBrowseColumnsAndSort(t *testing.T) {
	g := newServiceGrid(t, 3)
	m := NewModel(g)

	press(m, runes("l"), runes("s"))
	assert.Equal(t, []sorting.Spec{{Column: "name", Direction: sorting.Asc}}, g.Sort())
	press(m, runes("s"))
	assert.Equal(t, []sorting.Spec{{Column: "name", Direction: sorting.Desc}}, g.Sort())
	press(m, runes("l"), runes("S"))
	assert.Len(t, g.Sort(), 2)

	before := g.ColumnState().Width("port")
	press(m, runes("]"))
	assert.Equal(t, before+UnitsPerCell, g.ColumnState().Width("port"))
	press(m, runes("["), runes("["))
	assert.Equal(t, before-UnitsPerCell, g.ColumnState().Width("port"))

	press(m, runes("-"))
	assert.Equal(t, []string{"port"}, g.ColumnState().Hidden())
	assert.NotContains(t, m.renderHeader(m.layoutColumns()), "Port")
	press(m, runes("+"))
	assert.Empty(t, g.ColumnState().Hidden())
}

func TestBrowseSearch(t *testing.T) {
	g := newServiceGrid(t, 5, func(o *grid.Options[service]) { o.PageSize = 5 })
	m := NewModel(g)

	press(m, runes("/"), runes("b"), runes("o"))
	assert.True(t, m.searching)
	assert.Equal(t, "bo", g.Search())
	assert.Len(t, m.view.Rows, 2)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, "bo", g.Search())
	assert.Contains(t, m.View(), "/bo")

	press(m, runes("/"), runes("x"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "bo", g.Search(), "escape restores the previous term")

	press(m, runes("F"))
	assert.Empty(t, g.Search())
}

func TestBrowseExpandAndPages(t *testing.T) {
	g := newServiceGrid(t, 3, func(o *grid.Options[service]) { o.ExpandedRowHeight = 6 })
	m := NewModel(g)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, g.Expansion().IsExpanded("svc-01"))
	view := m.View()
	assert.Contains(t, view, "▾")
	assert.Contains(t, view, "Owner: ann")

	press(m, runes("n"))
	assert.Equal(t, 2, g.Pagination().Page)
	press(m, runes("p"))
	assert.Equal(t, 1, g.Pagination().Page)
}

func TestBrowseVirtualWindow(t *testing.T) {
	g := newServiceGrid(t, 100, func(o *grid.Options[service]) { o.Virtualized = true })
	m := NewModel(g)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 12})

	view := m.View()
	assert.Contains(t, view, "svc-01")
	assert.NotContains(t, view, "svc-50")

	press(m, runes("G"))
	view = m.View()
	assert.Contains(t, view, "svc-100")
	assert.NotContains(t, view, "svc-01 ")
	assert.Equal(t, 99, m.cursor)

	press(m, runes("V"))
	assert.False(t, g.Virtualized())
	assert.Len(t, m.view.Rows, 2)
}

func TestBrowseCopyAndTheme(t *testing.T) {
	g := newServiceGrid(t, 3)
	m := NewModel(g)
	var copied string
	m.copyIDs = func(s string) error {
		copied = s
		return nil
	}

	press(m, runes("y"))
	assert.Equal(t, "svc-01", copied)

	press(m, runes("A"), runes("y"))
	assert.ElementsMatch(t, []string{"svc-01", "svc-02", "svc-03"}, strings.Split(copied, "\n"))
	assert.Equal(t, "Copied 3 id(s)", m.status)

	start := m.cfg.palette.Name
	press(m, runes("t"))
	assert.NotEqual(t, start, m.cfg.palette.Name)
}

func TestBrowseQuitAndHelp(t *testing.T) {
	m := NewModel(newServiceGrid(t, 1))
	press(m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "clear selection")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPinnedAndDisabledRows(t *testing.T) {
	no := false
	g := newServiceGrid(t, 3, func(o *grid.Options[service]) {
		o.Features = func(s service, _ int) *row.Features {
			if s.Owner == "bob" {
				return &row.Features{Selectable: &no}
			}
			return nil
		}
	})
	m := NewModel(g)
	press(m, runes("j"), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Empty(t, g.Selection().Selected())
	assert.Contains(t, m.View(), " -  ▸")
}
