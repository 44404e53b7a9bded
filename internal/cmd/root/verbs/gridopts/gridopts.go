// Package gridopts holds the flags shared by the commands that open a data
// file as a grid, and builds the grid they describe.
package gridopts

import (
	"cmp"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/grid"
	"github.com/kong/gridctl/internal/grid/expansion"
	"github.com/kong/gridctl/internal/grid/filter"
	"github.com/kong/gridctl/internal/grid/sorting"
	"github.com/kong/gridctl/internal/gridspec"
	"github.com/kong/gridctl/internal/log"
	"github.com/kong/gridctl/internal/prefs"
	"github.com/kong/gridctl/internal/source"
)

const (
	SpecFlagName   = "spec"
	QueryFlagName  = "query"
	FormatFlagName = "format"
	GridIDFlagName = "grid-id"
	FilterFlagName = "filter"
	SortFlagName   = "sort"
	SearchFlagName = "search"
	PageFlagName   = "page"
	HideFlagName   = "hide"
	ShowFlagName   = "show"
)

// Grid is the row type every command works with.
type Grid = grid.Grid[source.Record]

// Loaded is a data file opened as a grid.
type Loaded struct {
	Grid   *Grid
	Table  *source.Table
	Spec   *gridspec.Compiled
	GridID string
	Store  *prefs.Store
}

// AddFlags registers the data and grid flags on c.
func AddFlags(c *cobra.Command) {
	flags := c.Flags()
	flags.String(SpecFlagName, "",
		"Grid spec file declaring columns, accessors and row features. Columns are inferred when omitted.")
	flags.String(QueryFlagName, "",
		"jq expression selecting or reshaping the rows (e.g. '.items').")
	flags.String(FormatFlagName, "",
		fmt.Sprintf("Data format, overriding the file extension.\n- Allowed    : [ %s ]",
			strings.Join(source.Formats(), "|")))
	flags.String(GridIDFlagName, "",
		"Grid id used to store column preferences. Defaults to the spec id or one derived from the file path.")
	flags.StringArray(FilterFlagName, nil,
		"Column filter 'column<op>value' with op one of = != < <= > >= ~ ^ $. Repeatable.")
	flags.StringArray(SortFlagName, nil,
		"Sort 'column[:asc|desc]'. Repeat for multi-column sorts, highest priority first.")
	flags.String(SearchFlagName, "", "Case-insensitive search across every column.")
	flags.Int(PageFlagName, 1, "Page to show, starting at 1.")

	flags.Int(common.PageSizeFlagName, common.DefaultPageSize,
		fmt.Sprintf(`Rows per page.
- Config path: [ %s ]`, common.PageSizeConfigPath))
	flags.Bool(common.PersistSelectionFlagName, true,
		fmt.Sprintf(`Keep selected rows selected when they are filtered out of view.
- Config path: [ %s ]`, common.PersistSelectionConfig))
	flags.Var(cmdpkg.NewEnum([]string{string(expansion.Single), string(expansion.Multiple)}, common.DefaultExpansion),
		common.ExpansionFlagName,
		fmt.Sprintf(`How many rows may be expanded at once.
- Config path: [ %s ]
- Allowed    : [ single|multiple ]`, common.ExpansionConfigPath))
}

// AddVisibilityFlags registers --hide and --show, which adjust column
// visibility for one invocation without touching stored preferences.
func AddVisibilityFlags(c *cobra.Command) {
	c.Flags().StringSlice(HideFlagName, nil, "Columns to hide for this invocation.")
	c.Flags().StringSlice(ShowFlagName, nil, "Hidden columns to show for this invocation.")
}

// BindFlags binds the configurable grid flags of c onto the configuration.
func BindFlags(c *cobra.Command, args []string) error {
	helper := cmdpkg.BuildHelper(c, args)
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	bindings := []struct{ flag, path string }{
		{common.PageSizeFlagName, common.PageSizeConfigPath},
		{common.PersistSelectionFlagName, common.PersistSelectionConfig},
		{common.ExpansionFlagName, common.ExpansionConfigPath},
		{common.VirtualizedFlagName, common.VirtualizedConfigPath},
	}
	for _, b := range bindings {
		f := c.Flags().Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := cfg.BindFlag(b.path, f); err != nil {
			return err
		}
	}
	return nil
}

// StoreFor returns the preference store configured for helper.
func StoreFor(helper cmdpkg.Helper) (*prefs.Store, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	dir := cfg.GetString(common.PrefsDirConfigPath)
	if dir == "" {
		dir = filepath.Join(filepath.Dir(cfg.GetPath()), "grids")
	}
	return prefs.NewStore(dir), nil
}

// Load reads the data file named by the first argument and builds its grid.
// Interactive callers pass the Virtualized setting through virtualized.
func Load(helper cmdpkg.Helper, virtualized bool) (*Loaded, error) {
	c := helper.GetCmd()
	flags := c.Flags()
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return nil, err
	}
	args := helper.GetArgs()
	if len(args) != 1 {
		return nil, &cmdpkg.ConfigurationError{Err: fmt.Errorf("expected one data file argument, got %d", len(args))}
	}
	path := args[0]

	formatText, _ := flags.GetString(FormatFlagName)
	format, err := source.ParseFormat(formatText)
	if err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}
	filterExprs, _ := flags.GetStringArray(FilterFlagName)
	filters, err := filter.ParseAll(filterExprs)
	if err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}
	sortExprs, _ := flags.GetStringArray(SortFlagName)
	sorts, err := sorting.ParseAll(sortExprs)
	if err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}
	policy, err := expansion.ParsePolicy(cfg.GetString(common.ExpansionConfigPath))
	if err != nil {
		return nil, &cmdpkg.ConfigurationError{Err: err}
	}
	pageSize := cfg.GetIntOrElse(common.PageSizeConfigPath, common.DefaultPageSize)
	if pageSize <= 0 {
		return nil, &cmdpkg.ConfigurationError{Err: fmt.Errorf("--%s must be positive, got %d",
			common.PageSizeFlagName, pageSize)}
	}
	page, _ := flags.GetInt(PageFlagName)
	search, _ := flags.GetString(SearchFlagName)
	query, _ := flags.GetString(QueryFlagName)
	specPath, _ := flags.GetString(SpecFlagName)
	gridIDFlag, _ := flags.GetString(GridIDFlagName)

	ctx := log.WithGridLogContext(helper.GetContext(), log.GridLogContext{
		CommandPath: c.CommandPath(),
		Source:      path,
		SpecFile:    specPath,
	})

	table, err := source.Load(ctx, source.Options{
		Path:   path,
		Format: format,
		Query:  query,
		Stdin:  helper.GetStreams().In,
	})
	if err != nil {
		return nil, cmdpkg.PrepareExecutionError("failed to load data", err, c, "source", path)
	}

	var spec *gridspec.Spec
	if specPath != "" {
		spec, err = gridspec.Load(specPath)
		if err != nil {
			return nil, cmdpkg.PrepareExecutionError("failed to load grid spec", err, c, "spec", specPath)
		}
	} else {
		spec = gridspec.Infer("", table)
	}
	compiled, err := gridspec.Compile(spec)
	if err != nil {
		return nil, cmdpkg.PrepareExecutionError("invalid grid spec", err, c, "spec", specPath)
	}

	gridID := cmp.Or(gridIDFlag, compiled.ID, prefs.GridIDForSource(path))
	store, err := StoreFor(helper)
	if err != nil {
		return nil, err
	}

	ctx = log.WithGridLogContext(ctx, log.GridLogContext{GridID: gridID, SourceFormat: string(table.Format)})
	logger = logger.With(attrsToArgs(log.GridLogContextAttrs(ctx))...)

	persist := cfg.GetBool(common.PersistSelectionConfig)
	g, err := grid.New(table.Rows(), grid.Options[source.Record]{
		Columns:           compiled.Columns,
		RowID:             compiled.RowID,
		Features:          compiled.Features,
		Page:              page,
		PageSize:          pageSize,
		Virtualized:       virtualized,
		PersistSelection:  &persist,
		Expansion:         policy,
		RowHeight:         cfg.GetIntOrElse(common.RowHeightConfigPath, 1),
		ExpandedRowHeight: cfg.GetIntOrElse(common.ExpandedRowHeightConfig, 6),
		Expandable:        true,
		GridID:            gridID,
		Store:             store,
		Logger:            logger,
		InitialSearch:     search,
		InitialFilters:    filters,
		InitialSort:       sorts,
	})
	if err != nil {
		return nil, cmdpkg.PrepareExecutionError("failed to build grid", err, c)
	}
	applyVisibility(c, g)

	logger.Debug("grid loaded",
		slog.Int("rows", len(table.Records)),
		slog.Int("columns", len(compiled.Columns)))

	return &Loaded{Grid: g, Table: table, Spec: compiled, GridID: gridID, Store: store}, nil
}

// applyVisibility layers --hide and --show over the stored hidden columns.
// The result is controlled so it is never written back to the store.
func applyVisibility(c *cobra.Command, g *Grid) {
	if c.Flags().Lookup(HideFlagName) == nil {
		return
	}
	hide, _ := c.Flags().GetStringSlice(HideFlagName)
	show, _ := c.Flags().GetStringSlice(ShowFlagName)
	if len(hide) == 0 && len(show) == 0 {
		return
	}
	keys := g.ColumnState().Keys()
	hidden := g.ColumnState().Hidden()
	for _, k := range hide {
		if slices.Contains(keys, k) && !slices.Contains(hidden, k) {
			hidden = append(hidden, k)
		}
	}
	hidden = slices.DeleteFunc(hidden, func(k string) bool { return slices.Contains(show, k) })
	g.ControlHiddenColumns(hidden)
}

func attrsToArgs(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}
