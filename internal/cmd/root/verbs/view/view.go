package view

import (
	"fmt"
	"path/filepath"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/cmd/output/gridview"
	jqoutput "github.com/kong/gridctl/internal/cmd/output/jq"
	"github.com/kong/gridctl/internal/cmd/root/verbs"
	"github.com/kong/gridctl/internal/cmd/root/verbs/gridopts"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/theme"
	"github.com/kong/gridctl/internal/util/i18n"
	"github.com/kong/gridctl/internal/util/normalizers"
)

const (
	Verb = verbs.View
)

var (
	viewUse = Verb.String() + " <file>"

	viewShort = i18n.T("root.verbs.view.viewShort", "Print a page of a data file as a grid")

	viewLong = normalizers.LongDesc(i18n.T("root.verbs.view.viewLong",
		`Load a JSON, JSONL, YAML, CSV, Arrow or Parquet file and print one page of it
after filtering, searching and sorting. Text output is a table sized to the
terminal. JSON and YAML output carry the rows together with paging metadata
and can be narrowed further with --jq.

Use - as the file to read JSON from standard input.`))

	viewExamples = normalizers.Examples(i18n.T("root.verbs.view.viewExamples",
		fmt.Sprintf(`
		# Print the first page of a CSV file
		%[1]s view services.csv
		# Filter, sort and page
		%[1]s view services.json --filter 'port>=8000' --sort name:desc --page 2
		# Declare columns with a grid spec and select rows with a jq query
		%[1]s view users.json --spec users.grid.yaml --query '.items'
		# Structured output narrowed with jq
		%[1]s view services.parquet -o json --jq '.rows[].name'
		`, meta.CLIName)))
)

// NewViewCmd creates the view command.
func NewViewCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:              viewUse,
		Short:            viewShort,
		Long:             viewLong,
		Example:          viewExamples,
		Aliases:          []string{"v"},
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: verbs.SetVerb(Verb),
		PreRunE: func(c *cobra.Command, args []string) error {
			if err := gridopts.BindFlags(c, args); err != nil {
				return err
			}
			helper := cmdpkg.BuildHelper(c, args)
			cfg, err := helper.GetConfig()
			if err != nil {
				return err
			}
			return jqoutput.BindFlags(cfg, c.Flags())
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmdpkg.BuildHelper(c, args))
		},
	}

	gridopts.AddFlags(c)
	gridopts.AddVisibilityFlags(c)
	jqoutput.AddFlags(c.Flags())

	return c, nil
}

func run(helper cmdpkg.Helper) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	settings, err := jqoutput.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return &cmdpkg.ConfigurationError{Err: err}
	}
	if err := jqoutput.ValidateOutputFormat(outType, settings); err != nil {
		return err
	}

	loaded, err := gridopts.Load(helper, false)
	if err != nil {
		return err
	}
	streams := helper.GetStreams()

	if outType == common.TEXT {
		gridview.FitWidths(loaded.Grid, loaded.Spec.Format)
		return gridview.RenderStatic(streams.Out, loaded.Grid,
			gridview.WithTitle(title(loaded)),
			gridview.WithFormatter(loaded.Spec.Format),
			gridview.WithPalette(theme.FromContext(helper.GetContext())),
			gridview.WithWidth(terminalWidth(helper)),
			gridview.WithGridID(loaded.GridID),
		)
	}

	payload, handled, err := jqoutput.Apply(gridview.BuildPayload(loaded.Grid, loaded.GridID), outType, settings, streams.Out)
	if err != nil {
		return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
	}
	if handled {
		return nil
	}
	printer, err := cli.Format(outType.String(), streams.Out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(payload)
	return nil
}

func title(l *gridopts.Loaded) string {
	if l.Spec.ID != "" {
		return l.Spec.ID
	}
	if l.Table.Source == "" || l.Table.Source == "-" {
		return ""
	}
	return filepath.Base(l.Table.Source)
}

// terminalWidth is zero, meaning unlimited, when output is redirected.
func terminalWidth(helper cmdpkg.Helper) int {
	streams := helper.GetStreams()
	if !streams.IsOutputTerminal() {
		return 0
	}
	return streams.TerminalWidth(0)
}
