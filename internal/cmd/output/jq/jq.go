// Package jq filters the JSON or YAML form of a rendered grid view with a jq
// expression before it is printed.
package jq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/itchyny/gojq"
	cmdpkg "github.com/kong/gridctl/internal/cmd"
	cmdcommon "github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	FlagName                    = "jq"
	ColorFlagName               = "jq-color"
	ColorThemeFlagName          = "jq-color-theme"
	RawOutputFlagName           = "jq-raw-output"
	RawOutputFlagShort          = "r"
	DefaultExpressionConfigPath = "jq.default-expression"
	ColorEnabledConfigPath      = "jq.color.enabled"
	ColorThemeConfigPath        = "jq.color.theme"
	RawOutputConfigPath         = "jq.raw-output"
	DefaultTheme                = "friendly"
)

var queryCache sync.Map

type Settings struct {
	Filter    string
	ColorMode cmdcommon.ColorMode
	Theme     string
	RawOutput bool
}

// HasFilter reports whether a jq expression will be applied.
func (s Settings) HasFilter() bool {
	return strings.TrimSpace(s.Filter) != ""
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(FlagName, "",
		"Filter the JSON or YAML view with a jq expression (e.g. '.rows[].name').")

	jqColor := cmdpkg.NewEnum([]string{
		cmdcommon.ColorModeAuto.String(),
		cmdcommon.ColorModeAlways.String(),
		cmdcommon.ColorModeNever.String(),
	}, cmdcommon.DefaultColorMode)
	flags.Var(jqColor, ColorFlagName,
		fmt.Sprintf(`Controls colorized output for jq results.
- Config path: [ %s ]
- Allowed    : [ auto|always|never ]`, ColorEnabledConfigPath))

	flags.String(ColorThemeFlagName, DefaultTheme,
		fmt.Sprintf(`Color theme for jq results.
- Config path: [ %s ]
- Examples   : [ friendly, github-dark, dracula ]`, ColorThemeConfigPath))

	flags.BoolP(RawOutputFlagName, RawOutputFlagShort, false,
		fmt.Sprintf(`Print string results without JSON quotes (like jq -r).
- Config path: [ %s ]`, RawOutputConfigPath))
}

func BindFlags(cfg config.Hook, flags *pflag.FlagSet) error {
	if cfg == nil || flags == nil {
		return nil
	}
	bindings := []struct{ flag, cfgPath string }{
		{ColorFlagName, ColorEnabledConfigPath},
		{ColorThemeFlagName, ColorThemeConfigPath},
		{RawOutputFlagName, RawOutputConfigPath},
	}
	for _, b := range bindings {
		if f := flags.Lookup(b.flag); f != nil {
			if err := cfg.BindFlag(b.cfgPath, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResolveSettings merges the jq flags of command with cfg. Flags win; an
// unset --jq falls back to the configured default expression.
func ResolveSettings(command *cobra.Command, cfg config.Hook) (Settings, error) {
	settings := Settings{Theme: DefaultTheme, ColorMode: cmdcommon.ColorModeAuto}
	if command == nil || command.Flags().Lookup(FlagName) == nil {
		return settings, nil
	}
	flags := command.Flags()

	filter, err := flags.GetString(FlagName)
	if err != nil {
		return Settings{}, err
	}
	settings.Filter = strings.TrimSpace(filter)
	if flags.Changed(FlagName) && settings.Filter == "" {
		settings.Filter = "."
	}

	if cfg == nil {
		settings.RawOutput, err = flags.GetBool(RawOutputFlagName)
		return settings, err
	}

	if !flags.Changed(FlagName) {
		if def := strings.TrimSpace(cfg.GetString(DefaultExpressionConfigPath)); def != "" {
			settings.Filter = def
		}
	}
	mode, err := cmdcommon.ColorModeStringToIota(strings.ToLower(strings.TrimSpace(cfg.GetString(ColorEnabledConfigPath))))
	if err != nil {
		return Settings{}, err
	}
	settings.ColorMode = mode
	if theme := strings.TrimSpace(cfg.GetString(ColorThemeConfigPath)); theme != "" {
		settings.Theme = theme
	}
	settings.RawOutput = cfg.GetBool(RawOutputConfigPath)
	return settings, nil
}

func ValidateOutputFormat(outType cmdcommon.OutputFormat, settings Settings) error {
	switch {
	case settings.RawOutput && !settings.HasFilter():
		return &cmdpkg.ConfigurationError{Err: fmt.Errorf("--%s requires --%s", RawOutputFlagName, FlagName)}
	case settings.RawOutput && outType != cmdcommon.JSON:
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json", RawOutputFlagName),
		}
	case settings.HasFilter() && outType == cmdcommon.TEXT:
		return &cmdpkg.ConfigurationError{
			Err: fmt.Errorf("--%s is only supported with --output json or --output yaml", FlagName),
		}
	}
	return nil
}

// Apply runs the filter over payload. When the result was written to out
// directly (raw or colorized output) handled is true; otherwise the caller
// prints the returned value.
func Apply(payload any, outType cmdcommon.OutputFormat, settings Settings, out io.Writer) (any, bool, error) {
	if !settings.HasFilter() {
		return payload, false, nil
	}
	if err := ValidateOutputFormat(outType, settings); err != nil {
		return nil, false, err
	}

	results, err := Evaluate(payload, settings.Filter)
	if err != nil {
		return nil, false, err
	}

	if settings.RawOutput {
		return nil, true, writeRaw(results, out)
	}

	result := collapse(results)
	if outType == cmdcommon.JSON && ShouldUseColor(settings.ColorMode, out) {
		formatted, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, false, fmt.Errorf("encode jq result: %w", err)
		}
		_, err = fmt.Fprintln(out, strings.TrimRight(Colorize(string(formatted), settings.Theme), "\n"))
		return nil, true, err
	}
	return result, false, nil
}

// Evaluate runs filter over payload and returns every emitted value.
// payload is round-tripped through JSON so struct values behave like the
// documents jq users expect.
func Evaluate(payload any, filter string) ([]any, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		filter = "."
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode view before applying jq filter: %w", err)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode view before applying jq filter: %w", err)
	}

	code, err := compile(filter)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq filter failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func compile(filter string) (*gojq.Code, error) {
	if code, ok := queryCache.Load(filter); ok {
		return code.(*gojq.Code), nil
	}
	parsed, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	queryCache.Store(filter, code)
	return code, nil
}

func collapse(results []any) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return results
	}
}

func writeRaw(results []any, out io.Writer) error {
	for _, r := range results {
		line, ok := r.(string)
		if !ok {
			b, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode jq result: %w", err)
			}
			line = string(b)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

var terminalDetector = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func ShouldUseColor(mode cmdcommon.ColorMode, out io.Writer) bool {
	switch mode {
	case cmdcommon.ColorModeAlways:
		return true
	case cmdcommon.ColorModeNever:
		return false
	}
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	fw, ok := out.(interface{ Fd() uintptr })
	return ok && terminalDetector(fw.Fd())
}

// Colorize highlights formatted JSON with the named chroma style. The input
// is returned unchanged when highlighting is not possible.
func Colorize(formatted, theme string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return formatted
	}
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return formatted
	}
	return buf.String()
}
