package root

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/kong/gridctl/internal/build"
	"github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/cmd/root/verbs/browse"
	"github.com/kong/gridctl/internal/cmd/root/verbs/columns"
	"github.com/kong/gridctl/internal/cmd/root/verbs/help"
	"github.com/kong/gridctl/internal/cmd/root/verbs/view"
	"github.com/kong/gridctl/internal/cmd/root/version"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/internal/log"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/theme"
	"github.com/kong/gridctl/internal/util"
	"github.com/kong/gridctl/internal/util/i18n"
	"github.com/kong/gridctl/internal/util/normalizers"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  gridctl loads tabular data files into a data grid: filter, search, sort and
  page rows, select and expand them, and hide or resize columns, either as a
  printed page or in an interactive terminal browser.

  Run 'gridctl help' for the extended help topics.`))

	rootShort = i18n.T("root/rootShort", fmt.Sprintf("%s explores data files as grids", meta.CLIName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the Configuration file path
	defaultConfigFilePath, _ = config.GetDefaultConfigFilePath()
	configFilePath           = defaultConfigFilePath
	currProfile              = common.DefaultProfile

	currConfig   *config.ProfiledConfig
	streams      *iostreams.IOStreams
	outputFormat = cmd.NewEnum(common.OutputFormats(), common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum(log.Levels, common.DefaultLogLevel)
	colorTheme   = theme.NewFlag(common.DefaultColorTheme)

	buildInfo *build.Info
	closeLog  = func() error { return nil }
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           meta.CLIName,
		Short:         rootShort,
		Long:          rootLong,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return &cmd.ConfigurationError{Err: err}
			}
			palette, ok := theme.Get(currConfig.GetString(common.ColorThemeConfigPath))
			if !ok {
				palette = theme.Current()
			}

			ctx := context.WithValue(c.Context(), config.ConfigKey, config.Hook(currConfig))
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			ctx = theme.ContextWithPalette(ctx, palette)
			ctx = log.WithGridLogContext(ctx, log.GridLogContext{
				CommandPath: c.CommandPath(),
				CommandVerb: verbOf(c),
			})
			c.SetContext(ctx)

			logger.Log(ctx, log.LevelTrace, "command starting",
				slog.String("profile", currConfig.GetProfile()),
				slog.String("config", currConfig.GetPath()))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeLog()
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName,
		defaultConfigFilePath,
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	rootCmd.PersistentFlags().StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		common.DefaultProfile,
		"Specify the profile to use for this command.")

	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))

	rootCmd.PersistentFlags().String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write logs to this file instead of standard error.
- Config path: [ %s ]`, common.LogFileConfigPath))

	rootCmd.PersistentFlags().Var(colorTheme, common.ColorThemeFlagName,
		fmt.Sprintf(`Color theme for tables and the grid browser.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.ColorThemeConfigPath, strings.Join(theme.Available(), "|")))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.SetHelpCommand(help.NewHelpCmd())

	builders := []func() (*cobra.Command, error){
		view.NewViewCmd,
		browse.NewBrowseCmd,
		columns.NewColumnsCmd,
	}
	for _, newCmd := range builders {
		c, err := newCmd()
		if err != nil {
			return err
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err := addCommands()
	util.CheckError(err)

	// The profile selects the configuration section, so it cannot come from
	// viper. The environment variable applies unless the flag is given.
	profileEnvVar, found := os.LookupEnv(meta.EnvPrefix + "_PROFILE")
	if found {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	cfg, err := config.GetConfig(configFilePath, currProfile, defaultConfigFilePath)
	util.CheckError(err)
	currConfig = cfg

	bindings := []struct{ path, flag string }{
		{common.OutputConfigPath, common.OutputFlagName},
		{common.LogLevelConfigPath, common.LogLevelFlagName},
		{common.LogFileConfigPath, common.LogFileFlagName},
		{common.ColorThemeConfigPath, common.ColorThemeFlagName},
	}
	for _, b := range bindings {
		util.CheckError(cfg.BindFlag(b.path, rootCmd.PersistentFlags().Lookup(b.flag)))
	}
}

func newLogger() (*slog.Logger, error) {
	level, err := log.ParseLevel(currConfig.GetString(common.LogLevelConfigPath))
	if err != nil {
		return nil, err
	}
	logger, closer, err := log.New(log.Options{
		Level:  level,
		File:   currConfig.GetString(common.LogFileConfigPath),
		ErrOut: streams.ErrOut,
	})
	if err != nil {
		return nil, err
	}
	closeLog = closer
	return logger, nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	rootCmd.SetIn(s.In)
	rootCmd.SetOut(s.Out)
	rootCmd.SetErr(s.ErrOut)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) {
		printer, perr := cli.Format(outputFormat.String(), s.ErrOut)
		if perr != nil || outputFormat.String() == common.DefaultOutputFormat {
			fmt.Fprintf(s.ErrOut, "Error: %s\n", friendlyMessage(executionError))
		} else {
			printer.Print(errorReport{
				Error:  friendlyMessage(executionError),
				Detail: attrsMap(executionError.Attrs),
			})
			printer.Flush()
		}
		_ = closeLog()
		os.Exit(1)
	}

	fmt.Fprintf(s.ErrOut, "Error: %s\n", err)
	var configError *cmd.ConfigurationError
	if errors.As(err, &configError) {
		fmt.Fprintf(s.ErrOut, "Run '%s --help' for usage.\n", rootCmd.CommandPath())
	}
	_ = closeLog()
	os.Exit(1)
}

type errorReport struct {
	Error  string         `json:"error" yaml:"error"`
	Detail map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// attrsMap folds slog-style alternating key/value attrs into a map.
func attrsMap(attrs []any) map[string]any {
	if len(attrs) < 2 {
		return nil
	}
	out := make(map[string]any, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok {
			out[k] = attrs[i+1]
		}
	}
	return out
}

// verbOf names the top-level command c belongs to.
func verbOf(c *cobra.Command) string {
	for c.HasParent() && c.Parent().HasParent() {
		c = c.Parent()
	}
	if !c.HasParent() {
		return ""
	}
	return c.Name()
}

func friendlyMessage(e *cmd.ExecutionError) string {
	if e.Msg == "" || e.Msg == e.Err.Error() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}
