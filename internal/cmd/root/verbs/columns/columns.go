package columns

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/cmd/root/verbs"
	"github.com/kong/gridctl/internal/cmd/root/verbs/gridopts"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/prefs"
	"github.com/kong/gridctl/internal/util/i18n"
	"github.com/kong/gridctl/internal/util/normalizers"
)

const (
	Verb = verbs.Columns

	yesFlagName = "yes"
)

var (
	use = Verb.String()

	short = i18n.T("root.verbs.columns.short", "Inspect and edit stored column preferences")
	long  = normalizers.LongDesc(i18n.T("root.verbs.columns.long",
		`Every grid remembers which of its columns are hidden. The preferences are
stored per grid id under the configuration directory. These commands list and
change them without opening the grid.`))
	example = normalizers.Examples(i18n.T("root.verbs.columns.examples",
		fmt.Sprintf(`
  # List every grid with stored preferences
  %[1]s columns list

  # Hide two columns of the users grid
  %[1]s columns hide users email phone

  # Forget everything stored for the users grid
  %[1]s columns reset users --yes
`, meta.CLIName)))
)

type recordItem struct {
	GridID        string    `json:"grid_id" yaml:"grid_id"`
	HiddenColumns []string  `json:"hidden_columns" yaml:"hidden_columns"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
	File          string    `json:"file" yaml:"file"`
}

// NewColumnsCmd builds the columns verb and its subcommands.
func NewColumnsCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:               use,
		Short:             short,
		Long:              long,
		Example:           example,
		PersistentPreRun:  verbs.SetVerb(Verb),
		RunE:              runList,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	c.AddCommand(&cobra.Command{
		Use:   "list [grid-id]",
		Short: "List stored column preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	})
	c.AddCommand(&cobra.Command{
		Use:   "hide <grid-id> <column>...",
		Short: "Hide columns of a grid",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runEdit(cmdpkg.BuildHelper(c, args), func(hidden []string, cols []string) []string {
				for _, col := range cols {
					if !slices.Contains(hidden, col) {
						hidden = append(hidden, col)
					}
				}
				return hidden
			})
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "show <grid-id> <column>...",
		Short: "Show hidden columns of a grid",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runEdit(cmdpkg.BuildHelper(c, args), func(hidden []string, cols []string) []string {
				return slices.DeleteFunc(hidden, func(k string) bool { return slices.Contains(cols, k) })
			})
		},
	})

	reset := &cobra.Command{
		Use:   "reset <grid-id>",
		Short: "Forget the stored preferences of a grid",
		Args:  cobra.ExactArgs(1),
		PreRun: func(c *cobra.Command, _ []string) {
			yes, _ := c.Flags().GetBool(yesFlagName)
			cmdpkg.SetAutoApprove(c, yes)
		},
		RunE: runReset,
	}
	reset.Flags().BoolP(yesFlagName, "y", false, "Skip the confirmation prompt.")
	c.AddCommand(reset)

	return c, nil
}

func runList(c *cobra.Command, args []string) error {
	helper := cmdpkg.BuildHelper(c, args)
	store, err := gridopts.StoreFor(helper)
	if err != nil {
		return err
	}

	var records []prefs.Record
	if len(args) == 1 {
		rec, err := store.Load(args[0])
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return cmdpkg.PrepareExecutionErrorMsg(helper,
				fmt.Sprintf("no preferences stored for grid %q", args[0]), "grid_id", args[0])
		case err != nil:
			return cmdpkg.PrepareExecutionError("failed to read column preferences", err, c)
		}
		records = []prefs.Record{rec}
	} else {
		records, err = store.List()
		if err != nil {
			return cmdpkg.PrepareExecutionError("failed to list column preferences", err, c)
		}
	}

	items := make([]recordItem, 0, len(records))
	for _, rec := range records {
		items = append(items, recordItem{
			GridID:        rec.GridID,
			HiddenColumns: rec.HiddenColumns,
			UpdatedAt:     rec.UpdatedAt,
			File:          store.Path(rec.GridID),
		})
	}
	return output(helper, items)
}

func runEdit(helper cmdpkg.Helper, edit func(hidden, cols []string) []string) error {
	args := helper.GetArgs()
	gridID, cols := args[0], args[1:]
	store, err := gridopts.StoreFor(helper)
	if err != nil {
		return err
	}
	hidden, err := store.LoadHiddenColumns(gridID)
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to read column preferences", err, helper.GetCmd())
	}
	hidden = edit(slices.Clone(hidden), cols)
	if err := store.SaveHiddenColumns(gridID, hidden); err != nil {
		return cmdpkg.PrepareExecutionError("failed to save column preferences", err, helper.GetCmd())
	}

	rec, err := store.Load(gridID)
	if err != nil {
		return cmdpkg.PrepareExecutionError("failed to read column preferences", err, helper.GetCmd())
	}
	return output(helper, []recordItem{{
		GridID:        rec.GridID,
		HiddenColumns: rec.HiddenColumns,
		UpdatedAt:     rec.UpdatedAt,
		File:          store.Path(rec.GridID),
	}})
}

func runReset(c *cobra.Command, args []string) error {
	helper := cmdpkg.BuildHelper(c, args)
	gridID := args[0]
	store, err := gridopts.StoreFor(helper)
	if err != nil {
		return err
	}
	if err := cmdpkg.Confirm(helper, "reset", fmt.Sprintf("the column preferences of grid %q", gridID)); err != nil {
		return err
	}
	if err := store.Delete(gridID); err != nil {
		return cmdpkg.PrepareExecutionError("failed to reset column preferences", err, c)
	}
	_, err = fmt.Fprintf(helper.GetStreams().Out, "Reset column preferences for %s\n", gridID)
	return err
}

func output(helper cmdpkg.Helper, items []recordItem) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType == common.TEXT {
		return renderText(helper.GetStreams().Out, items)
	}
	printer, err := cli.Format(outType.String(), helper.GetStreams().Out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(items)
	return nil
}

func renderText(out io.Writer, items []recordItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No column preferences stored.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GRID ID\tHIDDEN\tUPDATED")
	for _, item := range items {
		hidden := "-"
		if len(item.HiddenColumns) > 0 {
			hidden = strings.Join(item.HiddenColumns, ",")
		}
		updated := "-"
		if !item.UpdatedAt.IsZero() {
			updated = item.UpdatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.GridID, hidden, updated)
	}
	return tw.Flush()
}
