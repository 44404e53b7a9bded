package viper

import (
	"os"
	"path/filepath"
	"testing"

	v "github.com/spf13/viper"
)

func TestNewViperEnvKeyReplacer(t *testing.T) {
	t.Setenv("GRIDCTL_LOG_LEVEL", "debug")
	t.Setenv("GRIDCTL_GRID_PAGE_SIZE", "50")

	vip := NewViper("nonexistent.yaml")

	if got := vip.GetString("log-level"); got != "debug" {
		t.Fatalf("expected log-level to be %q, got %q", "debug", got)
	}
	if got := vip.GetInt("grid.page-size"); got != 50 {
		t.Fatalf("expected grid.page-size to be %d, got %d", 50, got)
	}
}

func TestNewViperEnvKeyReplacerProfileWithDashes(t *testing.T) {
	t.Setenv("GRIDCTL_TEAM_A_GRID_EXPANSION", "single")

	vip := NewViper("nonexistent.yaml")
	vip.Set("team-a", map[string]any{})

	profile := vip.Sub("team-a")
	if profile == nil {
		t.Fatal("expected profile viper, got nil")
	}
	if got := profile.GetString("grid.expansion"); got != "single" {
		t.Fatalf("expected grid.expansion to be %q, got %q", "single", got)
	}
}

func TestConfigureEnvVars(t *testing.T) {
	t.Setenv("CUSTOM_GRID_ROW_HEIGHT", "3")

	vip := v.New()
	ConfigureEnvVars(vip, "CUSTOM")

	if got := vip.GetInt("grid.row-height"); got != 3 {
		t.Fatalf("expected grid.row-height to be 3, got %d", got)
	}
}

func TestInitializeDefaultViperWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	vip, err := InitializeDefaultViper(map[string]any{"default": map[string]any{"output": "json"}}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := vip.GetString("default.output"); got != "json" {
		t.Fatalf("expected default.output to be json, got %q", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}

	again, err := NewViperE(path)
	if err != nil {
		t.Fatalf("unexpected error reading written config: %v", err)
	}
	if got := again.GetString("default.output"); got != "json" {
		t.Fatalf("expected persisted default.output to be json, got %q", got)
	}
}
