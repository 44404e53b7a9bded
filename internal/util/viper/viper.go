package viper

import (
	"strings"

	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/util"
	v "github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// InitializeDefaultViper loads path, creating it with defaultValues when the
// file is missing or empty.
func InitializeDefaultViper(defaultValues map[string]any, path string) (*v.Viper, error) {
	if err := util.InitDir(path, 0o755); err != nil {
		return nil, err
	}

	rv := NewViper(path)
	if len(rv.AllSettings()) > 0 {
		return rv, nil
	}
	if err := rv.MergeConfigMap(defaultValues); err != nil {
		return nil, err
	}
	if err := rv.WriteConfig(); err != nil {
		return nil, err
	}
	return rv, nil
}

// NewViperE reads path strictly, failing when it cannot be parsed.
func NewViperE(path string) (*v.Viper, error) {
	rv := newViper(path)
	if err := rv.ReadInConfig(); err != nil {
		return nil, err
	}
	return rv, nil
}

// NewViper reads path if it can. A missing file yields an empty config that
// still honours environment overrides.
func NewViper(path string) *v.Viper {
	rv := newViper(path)
	_ = rv.ReadInConfig()
	return rv
}

// ConfigureEnvVars makes vip resolve keys from environment variables named
// <prefix>_<KEY> with dots and dashes mapped to underscores.
func ConfigureEnvVars(vip *v.Viper, prefix string) {
	vip.SetEnvPrefix(prefix)
	vip.SetEnvKeyReplacer(envKeyReplacer)
	vip.AutomaticEnv()
}

func PersistViper(vip *v.Viper) error {
	return vip.WriteConfig()
}

func newViper(path string) *v.Viper {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, strings.ToLower(meta.CLIName))
	return rv
}
