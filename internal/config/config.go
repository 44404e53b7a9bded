package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/util/viper"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var defaultConfigFileName = "config.yaml"

// Returns the expanded default config path depending on what
// environment variables are set. If XDG_CONFIG_HOME is set,
// the default is $XDG_CONFIG_HOME/gridctl,
// otherwise the default is os.UserHomeDir()/.config/gridctl.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(home, ".config")
	}
	return os.ExpandEnv(filepath.Join(val, meta.CLIName)), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// GetConfig loads the configuration for this invocation. An explicit path
// must exist. The default path is created with defaults on first use.
func GetConfig(path string, profile string, defaultConfigFilePath string) (*ProfiledConfig, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err == nil {
		vip, err := viper.NewViperE(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return BuildProfiledConfig(profile, path, vip), nil
	}

	if path != defaultConfigFilePath {
		return nil, fmt.Errorf("the provided config file path does not exist: %s", path)
	}

	vip, err := viper.InitializeDefaultViper(getDefaultConfig(profile, path), path)
	if err != nil {
		return nil, fmt.Errorf("initialize config %s: %w", path, err)
	}
	return BuildProfiledConfig(profile, path, vip), nil
}

// Empty type to represent the _type_ Config. Genesis is to support a key in a Context
type Key struct{}

// Config is a global instance of the Key type
var ConfigKey = Key{}

// Hook is the narrow view of the configuration commands use.
type Hook interface {
	// Save writes the configuration to the file system
	Save() error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	// GetIntOrElse returns an integer value from the configuration or a default
	GetIntOrElse(key string, orElse int) int
	GetStringSlice(key string) []string
	IsSet(key string) bool
	SetString(key string, value string)
	Set(k string, v any)
	Get(key string) any
	// BindFlag takes a specific configuration path and
	// binds it to a specific flag
	BindFlag(configPath string, f *pflag.Flag) error
	// The profile for this configuration
	GetProfile() string
	// The file path used to load this configuration
	GetPath() string
}

// ProfiledConfig is a Viper scoped to one profile. Reads go to the profile's
// sub-tree, Save writes the whole file.
type ProfiledConfig struct {
	*v.Viper
	subViper    *v.Viper
	ProfileName string
	Path        string
}

func (p *ProfiledConfig) GetProfile() string {
	return p.ProfileName
}

func (p *ProfiledConfig) Save() error {
	p.Viper.Set(p.ProfileName, p.subViper.AllSettings())
	return viper.PersistViper(p.Viper)
}

func (p *ProfiledConfig) GetString(key string) string {
	return p.subViper.GetString(key)
}

func (p *ProfiledConfig) GetBool(key string) bool {
	return p.subViper.GetBool(key)
}

func (p *ProfiledConfig) GetInt(key string) int {
	return p.subViper.GetInt(key)
}

func (p *ProfiledConfig) GetIntOrElse(key string, orElse int) int {
	if p.subViper.IsSet(key) {
		return p.subViper.GetInt(key)
	}
	return orElse
}

func (p *ProfiledConfig) GetStringSlice(key string) []string {
	return p.subViper.GetStringSlice(key)
}

func (p *ProfiledConfig) Get(key string) any {
	return p.subViper.Get(key)
}

func (p *ProfiledConfig) IsSet(key string) bool {
	return p.subViper.IsSet(key)
}

func (p *ProfiledConfig) BindFlag(configPath string, f *pflag.Flag) error {
	return p.subViper.BindPFlag(configPath, f)
}

func (p *ProfiledConfig) SetString(k string, v string) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) Set(k string, v any) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) GetPath() string {
	return p.Path
}

// ProfileEnvPrefix is the environment prefix of a profile's settings:
// profile "team-a" reads GRIDCTL_TEAM_A_<KEY>.
func ProfileEnvPrefix(profile string) string {
	return meta.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(profile, "-", "_"))
}

func BuildProfiledConfig(profile string, path string, mainv *v.Viper) *ProfiledConfig {
	subv := mainv.Sub(profile)
	if subv == nil {
		subv = v.New()
	}
	viper.ConfigureEnvVars(subv, ProfileEnvPrefix(profile))

	return &ProfiledConfig{
		Viper:       mainv,
		ProfileName: profile,
		subViper:    subv,
		Path:        path,
	}
}

func getDefaultConfig(profileName, configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)

	return map[string]any{
		profileName: map[string]any{
			common.OutputConfigPath:     common.DefaultOutputFormat,
			common.LogLevelConfigPath:   common.DefaultLogLevel,
			common.LogFileConfigPath:    filepath.Join(configDir, "logs", meta.CLIName+".log"),
			common.ColorThemeConfigPath: common.DefaultColorTheme,
			"grid": map[string]any{
				"page-size":           common.DefaultPageSize,
				"persist-selection":   true,
				"expansion":           common.DefaultExpansion,
				"row-height":          1,
				"expanded-row-height": 6,
				"virtualized":         false,
				"prefs-dir":           filepath.Join(configDir, "grids"),
			},
		},
	}
}
