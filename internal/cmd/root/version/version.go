package version

import (
	"fmt"
	"io"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/kong/gridctl/internal/build"
	"github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/cmd/root/verbs"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/util/i18n"
	"github.com/kong/gridctl/internal/util/normalizers"
)

const (
	ShowCommitFlagName   = "show-commit"
	ShowCommitConfigPath = "version." + ShowCommitFlagName
)

var (
	versionUse   = verbs.Version.String()
	versionShort = i18n.T("root.version.versionShort",
		fmt.Sprintf("Print the %s version", meta.CLIName))
	versionLong = normalizers.LongDesc(i18n.T("root.version.versionLong",
		`The version command prints the version and other optional information`))
	versionExample = normalizers.Examples(i18n.T("root.version.versionExamples",
		fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version and the git commit hash
		%[1]s version --show-commit
		`, meta.CLIName)))
)

// Build a new instance of the version command
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:              versionUse,
		Short:            versionShort,
		Long:             versionLong,
		Example:          versionExample,
		Args:             cobra.NoArgs,
		PersistentPreRun: verbs.SetVerb(verbs.Version),
		PreRunE: func(c *cobra.Command, args []string) error {
			return bindFlags(c, args)
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			if err := validate(helper); err != nil {
				return err
			}
			return run(helper)
		},
	}

	rv.Flags().Bool(ShowCommitFlagName, false,
		i18n.T(fmt.Sprintf("root.%s", ShowCommitConfigPath),
			fmt.Sprintf("True to show the git commit hash when built.\n (config path = '%s')", ShowCommitConfigPath)))

	return rv
}

func bindFlags(c *cobra.Command, args []string) error {
	helper := cmd.BuildHelper(c, args)
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	return cfg.BindFlag(ShowCommitConfigPath, c.Flags().Lookup(ShowCommitFlagName))
}

// Validate ensures the configured command is valid
func validate(helper cmd.Helper) error {
	_, err := helper.GetOutputFormat()
	return err
}

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Run performs the actual version command logic
func run(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	info, err := helper.GetBuildInfo()
	if err != nil {
		info = build.Current()
	}

	result := versionInfo{Version: info.Version}
	if cfg.GetBool(ShowCommitConfigPath) {
		result.Commit = info.Commit
		result.Date = info.Date
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType == common.TEXT {
		return printText(result, helper.GetStreams().Out)
	}

	p, err := cli.Format(outType.String(), helper.GetStreams().Out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(result)
	return nil
}

func printText(v versionInfo, out io.Writer) error {
	if v.Commit == "" {
		_, err := fmt.Fprintln(out, v.Version)
		return err
	}
	_, err := fmt.Fprintf(out, "%s (%s)\n", v.Version, v.Commit)
	return err
}
