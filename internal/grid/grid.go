// Package grid wires the filter, sort and paginate stages together with the
// selection, expansion and column state controllers behind one facade.
//
// Every state concern (search, filters, sort, pagination, selection,
// expanded rows, hidden columns) is uncontrolled until the caller takes it
// over with the matching Control method. Change callbacks fire on every
// requested change in both modes.
package grid

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/kong/gridctl/internal/grid/colstate"
	"github.com/kong/gridctl/internal/grid/column"
	"github.com/kong/gridctl/internal/grid/expansion"
	"github.com/kong/gridctl/internal/grid/filter"
	"github.com/kong/gridctl/internal/grid/pagination"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/grid/selection"
	"github.com/kong/gridctl/internal/grid/sorting"
	"github.com/kong/gridctl/internal/grid/state"
	"github.com/kong/gridctl/internal/grid/virtual"
	"github.com/kong/gridctl/internal/log"
)

const DefaultPageSize = 25

// Options configures a Grid. Zero values select the defaults.
type Options[T any] struct {
	Columns  []column.Column[T]
	RowID    row.IDFunc[T]
	Features row.FeatureFunc[T]

	Page        int
	PageSize    int
	Virtualized bool

	// PersistSelection keeps selected ids that leave the view. Default true.
	PersistSelection *bool
	Expansion        expansion.Policy

	RowHeight         int
	ExpandedRowHeight int
	Expandable        bool

	// Store receives hidden-column changes for GridID on a background
	// writer. Call FlushPreferences before exiting to wait for it.
	GridID string
	Store  colstate.PreferenceStore
	Logger *slog.Logger

	InitialSearch   string
	InitialFilters  []filter.Filter
	InitialSort     []sorting.Spec
	InitialHidden   []string
	InitialSelected []row.ID
	InitialExpanded []row.ID

	OnSearchChange           func(string)
	OnFilterChange           func([]filter.Filter)
	OnSortChange             func([]sorting.Spec)
	OnPaginationChange       func(pagination.State)
	OnSelectionChange        func([]row.ID)
	OnExpandedRowsChange     func([]row.ID)
	OnColumnVisibilityChange func([]string)
}

// View is the result of one processing pass.
type View[T any] struct {
	// Rows are the rows to render: the current page, or every matching row
	// when the grid is virtualized.
	Rows    []T
	Entries []row.Entry[T]
	IDs     []row.ID

	// Total counts the rows that survived filtering.
	Total     int
	Page      int
	PageSize  int
	PageCount int

	Columns       []column.Column[T]
	Widths        map[string]int
	Fingerprint   virtual.Fingerprint
	AllSelected   bool
	Indeterminate bool
}

type memoKey struct {
	rows, filters, sort, search uint64
}

// Grid is the data grid engine over rows of type T. It is not safe for
// concurrent use.
type Grid[T any] struct {
	rows        []T
	rowsVersion uint64
	cols        *column.Set[T]
	rowID       row.IDFunc[T]
	features    row.FeatureFunc[T]
	virtualized bool
	logger      *slog.Logger

	search  *state.Value[string]
	filters *state.Value[[]filter.Filter]
	sort    *state.Value[[]sorting.Spec]
	page    *state.Value[pagination.State]

	selection *selection.Controller
	expansion *expansion.Controller
	columns   *colstate.Manager
	adapter   virtual.Adapter[T]

	memoKey     memoKey
	memoValid   bool
	memoEntries []row.Entry[T]
	memoIDs     []row.ID
	byID        map[row.ID]int
}

// New builds a grid over rows.
func New[T any](rows []T, opts Options[T]) (*Grid[T], error) {
	cols, err := column.NewSet(opts.Columns...)
	if err != nil {
		return nil, fmt.Errorf("invalid columns: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rowID := opts.RowID
	if rowID == nil {
		rowID = row.ByIndex[T]
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	g := &Grid[T]{
		rows:        rows,
		cols:        cols,
		rowID:       rowID,
		features:    opts.Features,
		virtualized: opts.Virtualized,
		logger:      logger,
		search:      state.New(opts.InitialSearch),
		filters:     state.New(slices.Clone(opts.InitialFilters)),
		sort:        state.New(sorting.Normalize(opts.InitialSort)),
		page:        state.New(pagination.State{Page: max(opts.Page, 1), PageSize: size}),
		adapter: virtual.Adapter[T]{
			ID:                rowID,
			RowHeight:         opts.RowHeight,
			ExpandedRowHeight: opts.ExpandedRowHeight,
			Expandable:        opts.Expandable,
		},
	}
	g.search.OnChange(opts.OnSearchChange)
	g.filters.OnChange(opts.OnFilterChange)
	g.sort.OnChange(opts.OnSortChange)
	g.page.OnChange(opts.OnPaginationChange)

	persist := true
	if opts.PersistSelection != nil {
		persist = *opts.PersistSelection
	}
	g.selection = selection.New(
		selection.WithInitial(opts.InitialSelected...),
		selection.WithPersistence(persist),
		selection.WithOnChange(opts.OnSelectionChange),
	)
	g.expansion = expansion.New(opts.Expansion,
		expansion.WithInitial(opts.InitialExpanded...),
		expansion.WithOnChange(opts.OnExpandedRowsChange),
	)

	colOpts := []colstate.Option{
		colstate.WithHidden(opts.InitialHidden...),
		colstate.WithLogger(logger),
		colstate.WithOnVisibilityChange(opts.OnColumnVisibilityChange),
	}
	if opts.Store != nil {
		colOpts = append(colOpts, colstate.WithStore(opts.GridID, opts.Store))
	}
	g.columns = colstate.New(colstate.BoundsOf(cols), colOpts...)

	g.checkIDs()
	return g, nil
}

// SetRows replaces the row data. Interaction state is kept.
func (g *Grid[T]) SetRows(rows []T) {
	g.rows = rows
	g.rowsVersion++
	g.checkIDs()
}

func (g *Grid[T]) Rows() []T { return g.rows }
func (g *Grid[T]) ColumnSet() *column.Set[T] { return g.cols }
func (g *Grid[T]) Selection() *selection.Controller { return g.selection }
func (g *Grid[T]) Expansion() *expansion.Controller { return g.expansion }
func (g *Grid[T]) ColumnState() *colstate.Manager { return g.columns }
func (g *Grid[T]) Adapter() virtual.Adapter[T] { return g.adapter }
func (g *Grid[T]) Virtualized() bool { return g.virtualized }

// SetVirtualized switches between paged and windowed output.
func (g *Grid[T]) SetVirtualized(v bool) {
	g.virtualized = v
}

// Search returns the effective search term.
func (g *Grid[T]) Search() string {
	return g.search.Get()
}

// SetSearch requests a new search term and returns to the first page.
func (g *Grid[T]) SetSearch(term string) {
	if term == g.search.Get() {
		return
	}
	g.search.Set(term)
	g.resetPage()
}

// Filters returns the effective column filters.
func (g *Grid[T]) Filters() []filter.Filter {
	return slices.Clone(g.filters.Get())
}

// SetFilter replaces the filter on f.Column, or adds it, and returns to the
// first page.
func (g *Grid[T]) SetFilter(f filter.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	g.filters.Set(filter.Put(g.filters.Get(), f))
	g.resetPage()
	return nil
}

// RemoveFilter drops the filter on column.
func (g *Grid[T]) RemoveFilter(column string) {
	if _, ok := filter.Find(g.filters.Get(), column); !ok {
		return
	}
	g.filters.Set(filter.Remove(g.filters.Get(), column))
	g.resetPage()
}

// SetFilters replaces every filter, keeping the last one per column.
func (g *Grid[T]) SetFilters(filters []filter.Filter) error {
	var next []filter.Filter
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return err
		}
		next = filter.Put(next, f)
	}
	if next == nil {
		next = []filter.Filter{}
	}
	g.filters.Set(next)
	g.resetPage()
	return nil
}

// ClearFilters removes every filter.
func (g *Grid[T]) ClearFilters() {
	if len(g.filters.Get()) == 0 {
		return
	}
	g.filters.Set([]filter.Filter{})
	g.resetPage()
}

// Sort returns the effective sort list.
func (g *Grid[T]) Sort() []sorting.Spec {
	return slices.Clone(g.sort.Get())
}

// SetSort replaces the sort list.
func (g *Grid[T]) SetSort(specs []sorting.Spec) {
	g.sort.Set(sorting.Normalize(specs))
}

// ToggleSort applies a header click on column: asc, desc, then none. With
// multi the column is added to or updated within the existing list.
func (g *Grid[T]) ToggleSort(column string, multi bool) {
	if col, ok := g.cols.Lookup(column); !ok || !col.IsSortable() {
		return
	}
	g.sort.Set(sorting.Toggle(g.sort.Get(), column, multi))
}

// Pagination returns the effective page state.
func (g *Grid[T]) Pagination() pagination.State {
	return g.page.Get()
}

// SetPage requests a page. Out-of-range pages are not clamped.
func (g *Grid[T]) SetPage(page int) {
	ps := g.page.Get()
	if ps.Page == page {
		return
	}
	ps.Page = page
	g.page.Set(ps)
}

// SetPageSize changes the page size and clamps the page to the new page
// count.
func (g *Grid[T]) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	ps := g.page.Get()
	ps.PageSize = size
	ps.Page = pagination.ClampPage(ps.Page, len(g.processed()), size)
	g.page.Set(ps)
}

// NextPage and PrevPage move within [1, PageCount].
func (g *Grid[T]) NextPage() {
	ps := g.page.Get()
	g.SetPage(pagination.ClampPage(ps.Page+1, len(g.processed()), ps.PageSize))
}

func (g *Grid[T]) PrevPage() {
	ps := g.page.Get()
	g.SetPage(pagination.ClampPage(ps.Page-1, len(g.processed()), ps.PageSize))
}

// ControlSearch and the other Control methods hand a concern to the caller
// and set the value it reports.
func (g *Grid[T]) ControlSearch(term string) { g.search.Control(term) }
func (g *Grid[T]) ControlFilters(filters []filter.Filter) { g.filters.Control(filters) }
func (g *Grid[T]) ControlSort(specs []sorting.Spec) { g.sort.Control(specs) }
func (g *Grid[T]) ControlPagination(ps pagination.State) { g.page.Control(ps) }
func (g *Grid[T]) ControlSelection(ids []row.ID) { g.selection.State().Control(ids) }
func (g *Grid[T]) ControlExpanded(ids []row.ID) { g.expansion.State().Control(ids) }
func (g *Grid[T]) ControlHiddenColumns(keys []string) { g.columns.Control(keys) }

// FlushPreferences waits for pending hidden-column saves.
func (g *Grid[T]) FlushPreferences(ctx context.Context) error {
	return g.columns.Flush(ctx)
}

// ToggleRow, ToggleAll and the other selection methods forward to the
// selection controller.
func (g *Grid[T]) ToggleRow(id row.ID, mods selection.Modifiers) { g.selection.ToggleRow(id, mods) }
func (g *Grid[T]) ToggleAll() { g.selection.ToggleAll() }
func (g *Grid[T]) SelectRange(from, to row.ID) { g.selection.SelectRange(from, to) }
func (g *Grid[T]) ClearSelection() { g.selection.ClearSelection() }

// SelectAll replaces the selection with the visible ids.
func (g *Grid[T]) SelectAll() {
	g.selection.SelectAll(nil)
}

// SelectAllMatching replaces the selection with every row that survived
// filtering, across all pages.
func (g *Grid[T]) SelectAllMatching() {
	g.processed()
	g.selection.SelectAll(slices.Clone(g.memoIDs))
}

// ToggleExpanded forwards to the expansion controller.
func (g *Grid[T]) ToggleExpanded(id row.ID) {
	g.expansion.Toggle(id)
}

// Matching returns every row that survived filtering, in sorted order and
// across all pages.
func (g *Grid[T]) Matching() []T {
	return row.Rows(g.processed())
}

// RowFeatures resolves the per-row feature override for e.
func (g *Grid[T]) RowFeatures(e row.Entry[T]) row.Features {
	return g.features.Resolve(e.Row, e.Index)
}

// RowID derives the id of e.
func (g *Grid[T]) RowID(e row.Entry[T]) row.ID {
	return g.rowID(e.Row, e.Index)
}

// RowByID finds a row in the full row set.
func (g *Grid[T]) RowByID(id row.ID) (T, bool) {
	if g.byID == nil {
		g.byID = make(map[row.ID]int, len(g.rows))
		for i, r := range g.rows {
			if _, dup := g.byID[g.rowID(r, i)]; !dup {
				g.byID[g.rowID(r, i)] = i
			}
		}
	}
	i, ok := g.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return g.rows[i], true
}

// Process runs filter, sort and paginate and returns the view. Pagination
// is skipped when the grid is virtualized.
func (g *Grid[T]) Process() View[T] {
	entries := g.processed()
	ps := g.page.Get()

	visible := entries
	if !g.virtualized {
		visible = pagination.Paginate(entries, ps.Page, ps.PageSize)
	}
	ids := row.IDs(visible, g.rowID)

	g.selection.SetVisible(ids)
	g.selection.SetDisabled(g.disabledIDs())

	keys := g.columns.Visible()
	cols := make([]column.Column[T], 0, len(keys))
	for _, k := range keys {
		if c, ok := g.cols.Lookup(k); ok {
			cols = append(cols, c)
		}
	}
	widths := g.columns.Widths()

	return View[T]{
		Rows:          row.Rows(visible),
		Entries:       visible,
		IDs:           ids,
		Total:         len(entries),
		Page:          ps.Page,
		PageSize:      ps.PageSize,
		PageCount:     pagination.PageCount(len(entries), ps.PageSize),
		Columns:       cols,
		Widths:        widths,
		Fingerprint:   virtual.NewFingerprint(g.selection.Selected(), g.expansion.Expanded(), widths, keys),
		AllSelected:   g.selection.IsAllSelected(),
		Indeterminate: g.selection.IsIndeterminate(),
	}
}

// processed returns the filtered and sorted entries, recomputing them only
// when rows, filters, sort or search changed.
func (g *Grid[T]) processed() []row.Entry[T] {
	key := memoKey{
		rows:    g.rowsVersion,
		filters: g.filters.Version(),
		sort:    g.sort.Version(),
		search:  g.search.Version(),
	}
	if g.memoValid && key == g.memoKey {
		return g.memoEntries
	}

	start := time.Now()
	filtered := filter.ApplyEntries(row.Entries(g.rows), g.filters.Get(), g.cols, g.search.Get(), g.features)
	sorted := sorting.ApplyEntries(filtered, g.sort.Get(), g.cols, g.features)

	g.memoEntries = sorted
	g.memoIDs = row.IDs(sorted, g.rowID)
	g.memoKey, g.memoValid = key, true

	g.logger.Log(context.Background(), log.LevelTrace, "grid pipeline recomputed",
		slog.Int("rows", len(g.rows)),
		slog.Int("matched", len(sorted)),
		slog.Int("filters", len(g.filters.Get())),
		slog.Int("sort_keys", len(g.sort.Get())),
		slog.Duration("elapsed", time.Since(start)),
	)
	return sorted
}

func (g *Grid[T]) disabledIDs() []row.ID {
	if g.features == nil {
		return nil
	}
	var out []row.ID
	for i, e := range g.memoEntries {
		if !g.features.Resolve(e.Row, e.Index).IsSelectable() {
			out = append(out, g.memoIDs[i])
		}
	}
	return out
}

func (g *Grid[T]) resetPage() {
	ps := g.page.Get()
	if ps.Page == 1 {
		return
	}
	ps.Page = 1
	g.page.Set(ps)
}

// checkIDs warns about duplicate row ids, which make selection and
// expansion ambiguous.
func (g *Grid[T]) checkIDs() {
	g.byID = nil
	seen := make(map[row.ID]struct{}, len(g.rows))
	for i, r := range g.rows {
		id := g.rowID(r, i)
		if _, dup := seen[id]; dup {
			g.logger.Warn("duplicate row id", slog.String("id", string(id)), slog.Int("index", i))
			return
		}
		seen[id] = struct{}{}
	}
}
