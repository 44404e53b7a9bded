package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/cmd/output/gridview"
	"github.com/kong/gridctl/internal/cmd/root/verbs"
	"github.com/kong/gridctl/internal/cmd/root/verbs/gridopts"
	"github.com/kong/gridctl/internal/log"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/theme"
	"github.com/kong/gridctl/internal/util/i18n"
	"github.com/kong/gridctl/internal/util/normalizers"
)

const (
	Verb = verbs.Browse

	flushTimeout = 5 * time.Second
)

var (
	browseUse = Verb.String() + " <file>"

	browseShort = i18n.T("root.verbs.browse.browseShort", "Explore a data file in an interactive grid")

	browseLong = normalizers.LongDesc(i18n.T("root.verbs.browse.browseLong",
		`Open a data file in a full-screen grid. Rows can be searched, sorted,
selected, expanded and paged, and columns hidden or resized. Hidden columns
are remembered per grid. Press ? inside the browser for every key binding.`))

	browseExamples = normalizers.Examples(i18n.T("root.verbs.browse.browseExamples",
		fmt.Sprintf(`
		# Browse a CSV file
		%[1]s browse services.csv
		# Browse every row in one scrolling window instead of pages
		%[1]s browse events.parquet --virtual
		# Start sorted and filtered, with a spec that declares the columns
		%[1]s browse users.json --spec users.grid.yaml --sort name --filter 'active=true'
		`, meta.CLIName)))

	errStdinSource = errors.New("browse reads keys from standard input; pass a file instead of -")
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:              browseUse,
		Short:            browseShort,
		Long:             browseLong,
		Example:          browseExamples,
		Aliases:          []string{"b"},
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: verbs.SetVerb(Verb),
		PreRunE:          gridopts.BindFlags,
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}

	gridopts.AddFlags(c)
	c.Flags().Bool(common.VirtualizedFlagName, false,
		fmt.Sprintf(`Render every matching row in one scrolling window instead of pages.
- Config path: [ %s ]`, common.VirtualizedConfigPath))

	return c, nil
}

func run(helper cmdpkg.Helper) error {
	if helper.GetArgs()[0] == "-" {
		return &cmdpkg.ConfigurationError{Err: errStdinSource}
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	loaded, err := gridopts.Load(helper, cfg.GetBool(common.VirtualizedConfigPath))
	if err != nil {
		return err
	}
	gridview.FitWidths(loaded.Grid, loaded.Spec.Format)

	// Error records would draw over the alternate screen.
	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	err = gridview.Browse(helper.GetContext(), helper.GetStreams(), loaded.Grid,
		gridview.WithTitle(loaded.Spec.ID),
		gridview.WithFormatter(loaded.Spec.Format),
		gridview.WithPalette(theme.FromContext(helper.GetContext())),
		gridview.WithGridID(loaded.GridID),
	)
	flushPreferences(helper, loaded)
	if err != nil {
		return cmdpkg.PrepareExecutionError("grid browser failed", err, helper.GetCmd())
	}
	return nil
}

// flushPreferences waits briefly for hidden-column saves still in flight so
// the last change made in the browser is on disk before the process exits.
func flushPreferences(helper cmdpkg.Helper, loaded *gridopts.Loaded) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(helper.GetContext()), flushTimeout)
	defer cancel()
	if err := loaded.Grid.FlushPreferences(ctx); err != nil {
		if logger, lerr := helper.GetLogger(); lerr == nil {
			logger.Warn("column preferences may not be saved",
				slog.String("grid_id", loaded.GridID), slog.Any("error", err))
		}
	}
}
