package common

import (
	"fmt"
	"strings"
)

// Represents an enum of valid values for the format of the output for this CLI execution
type OutputFormat int

type ColorMode int

const (
	JSON OutputFormat = iota
	YAML
	TEXT
)

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

const (
	// related to the --output flag
	DefaultOutputFormat = "text"
	OutputFlagName      = "output"
	OutputFlagShort     = "o"
	OutputConfigPath    = OutputFlagName

	// related to the --color flag
	ColorFlagName    = "color"
	ColorConfigPath  = ColorFlagName
	DefaultColorMode = "auto"

	// related to the --color-theme flag
	ColorThemeFlagName   = "color-theme"
	ColorThemeConfigPath = ColorThemeFlagName
	DefaultColorTheme    = "grid-dark"

	// related to the --profile flag
	ProfileFlagName  = "profile"
	ProfileFlagShort = "p"
	DefaultProfile   = "default"

	// related to the --config-file flag
	ConfigFilePathFlagName = "config-file"

	// related to the --log-level flag
	LogLevelFlagName   = "log-level"
	DefaultLogLevel    = "warn"
	LogLevelConfigPath = LogLevelFlagName

	// related to the --log-file flag
	LogFileFlagName   = "log-file"
	LogFileConfigPath = LogFileFlagName
)

// Grid defaults applied to every command that builds a grid. Flags of the
// same name override them.
const (
	PageSizeFlagName         = "page-size"
	PageSizeConfigPath       = "grid." + PageSizeFlagName
	DefaultPageSize          = 25
	PersistSelectionFlagName = "persist-selection"
	PersistSelectionConfig   = "grid." + PersistSelectionFlagName
	ExpansionFlagName        = "expansion"
	ExpansionConfigPath      = "grid." + ExpansionFlagName
	DefaultExpansion         = "multiple"
	RowHeightConfigPath      = "grid.row-height"
	ExpandedRowHeightConfig  = "grid.expanded-row-height"
	VirtualizedFlagName      = "virtual"
	VirtualizedConfigPath    = "grid.virtualized"
	PrefsDirConfigPath       = "grid.prefs-dir"
)

var outputFormats = []string{"json", "yaml", "text"}

func (of OutputFormat) String() string {
	return outputFormats[of]
}

// OutputFormats lists the values accepted by --output.
func OutputFormats() []string {
	return append([]string(nil), outputFormats...)
}

func OutputFormatStringToIota(format string) (OutputFormat, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "text", "":
		return TEXT, nil
	default:
		return TEXT, fmt.Errorf("invalid output format %q, must be one of %v", format, outputFormats)
	}
}

func (cm ColorMode) String() string {
	switch cm {
	case ColorModeAlways:
		return "always"
	case ColorModeNever:
		return "never"
	default:
		return "auto"
	}
}

func ColorModeStringToIota(mode string) (ColorMode, error) {
	switch mode {
	case "auto", "":
		return ColorModeAuto, nil
	case "always":
		return ColorModeAlways, nil
	case "never":
		return ColorModeNever, nil
	default:
		return ColorModeAuto, fmt.Errorf("invalid color mode %q, must be one of %v", mode,
			[]string{"auto", "always", "never"})
	}
}
