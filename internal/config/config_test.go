package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kong/gridctl/internal/cmd/common"
	utilviper "github.com/kong/gridctl/internal/util/viper"
)

func TestBuildProfiledConfig_ProfileEnvWithDashes(t *testing.T) {
	t.Setenv("GRIDCTL_TEAM_A_B_C_GRID_PAGE_SIZE", "40")

	profile := "team-a-b-c"
	mainv := utilviper.NewViper("nonexistent.yaml")
	mainv.Set(profile, map[string]any{})

	cfg := BuildProfiledConfig(profile, "nonexistent.yaml", mainv)

	if got := cfg.GetInt(common.PageSizeConfigPath); got != 40 {
		t.Fatalf("expected grid.page-size to be %d, got %d", 40, got)
	}
}

func TestBuildProfiledConfig_MissingProfileReadsEnv(t *testing.T) {
	t.Setenv("GRIDCTL_STAGING_OUTPUT", "json")

	cfg := BuildProfiledConfig("staging", "nonexistent.yaml", utilviper.NewViper("nonexistent.yaml"))

	assert.Equal(t, "json", cfg.GetString(common.OutputConfigPath))
	assert.Equal(t, 7, cfg.GetIntOrElse(common.RowHeightConfigPath, 7))
	assert.Equal(t, "staging", cfg.GetProfile())
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := GetDefaultConfigFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gridctl", "config.yaml"), path)
}

func TestGetConfigInitializesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridctl", "config.yaml")

	cfg, err := GetConfig(path, common.DefaultProfile, path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	assert.Equal(t, common.DefaultOutputFormat, cfg.GetString(common.OutputConfigPath))
	assert.Equal(t, common.DefaultPageSize, cfg.GetInt(common.PageSizeConfigPath))
	assert.True(t, cfg.GetBool(common.PersistSelectionConfig))
	assert.Equal(t, common.DefaultExpansion, cfg.GetString(common.ExpansionConfigPath))
	assert.Equal(t, filepath.Join(dir, "gridctl", "grids"), cfg.GetString(common.PrefsDirConfigPath))
	assert.Equal(t, path, cfg.GetPath())
}

func TestGetConfigRejectsMissingExplicitPath(t *testing.T) {
	_, err := GetConfig(filepath.Join(t.TempDir(), "missing.yaml"), common.DefaultProfile, "/default/config.yaml")
	assert.ErrorContains(t, err, "does not exist")
}

func TestSavePersistsProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := GetConfig(path, common.DefaultProfile, path)
	require.NoError(t, err)
	cfg.Set(common.PageSizeConfigPath, 100)
	require.NoError(t, cfg.Save())

	again, err := GetConfig(path, common.DefaultProfile, path)
	require.NoError(t, err)
	assert.Equal(t, 100, again.GetInt(common.PageSizeConfigPath))
}
