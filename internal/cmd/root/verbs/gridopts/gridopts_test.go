package gridopts

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/grid/row"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/internal/log"
	"github.com/kong/gridctl/internal/prefs"
	testConfig "github.com/kong/gridctl/test/config"
)

const servicesJSON = `[
  {"id": 1, "name": "billing", "port": 80},
  {"id": 2, "name": "auth", "port": 8080},
  {"id": 3, "name": "search", "port": 9000}
]`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

type fixture struct {
	cmd      *cobra.Command
	args     []string
	prefsDir string
}

func newFixture(t *testing.T, file string, flags map[string][]string) *fixture {
	t.Helper()
	prefsDir := filepath.Join(t.TempDir(), "grids")
	cfg := testConfig.New(t, map[string]any{
		"grid": map[string]any{"prefs-dir": prefsDir},
	})
	streams, _, _, _ := iostreams.NewTestIOStreams()

	c := &cobra.Command{Use: "test"}
	AddFlags(c)
	AddVisibilityFlags(c)
	for name, values := range flags {
		for _, v := range values {
			require.NoError(t, c.Flags().Set(name, v), name)
		}
	}

	ctx := context.WithValue(context.Background(), config.ConfigKey, config.Hook(cfg))
	ctx = context.WithValue(ctx, log.LoggerKey, slog.New(slog.DiscardHandler))
	ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
	c.SetContext(ctx)

	args := []string{file}
	require.NoError(t, BindFlags(c, args))
	return &fixture{cmd: c, args: args, prefsDir: prefsDir}
}

func (f *fixture) load(t *testing.T) (*Loaded, error) {
	t.Helper()
	return Load(cmdpkg.BuildHelper(f.cmd, f.args), false)
}

func names(l *Loaded) []string {
	view := l.Grid.Process()
	out := make([]string, len(view.Rows))
	for i, r := range view.Rows {
		out[i], _ = r["name"].(string)
	}
	return out
}

func TestLoadAppliesCriteria(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)
	f := newFixture(t, path, map[string][]string{
		FilterFlagName: {"port>=8000"},
		SortFlagName:   {"name:desc"},
	})

	l, err := f.load(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "auth"}, names(l))
	assert.Equal(t, prefs.GridIDForSource(path), l.GridID)
	assert.Equal(t, []string{"id", "name", "port"}, l.Grid.ColumnState().Keys())
}

func TestLoadPagesAndSearch(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)
	f := newFixture(t, path, map[string][]string{
		"page-size":    {"2"},
		PageFlagName:   {"2"},
		GridIDFlagName: {"svc"},
	})

	l, err := f.load(t)
	require.NoError(t, err)
	assert.Equal(t, "svc", l.GridID)
	assert.Equal(t, []string{"search"}, names(l))
	assert.Equal(t, 2, l.Grid.Process().PageCount)

	f = newFixture(t, path, map[string][]string{SearchFlagName: {"AUTH"}})
	l, err = f.load(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth"}, names(l))
}

func TestLoadWithSpec(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)
	spec := writeFile(t, "services.grid.yaml", `
id: services
row-id: id
columns:
  - key: name
  - key: port
    filter-type: number
`)
	f := newFixture(t, path, map[string][]string{SpecFlagName: {spec}})

	l, err := f.load(t)
	require.NoError(t, err)
	assert.Equal(t, "services", l.GridID)
	assert.Equal(t, []row.ID{"1", "2", "3"}, l.Grid.Process().IDs)
	assert.Equal(t, []string{"name", "port"}, l.Grid.ColumnState().Keys())
}

func TestVisibilityFlagsAreNotPersisted(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)
	f := newFixture(t, path, map[string][]string{
		GridIDFlagName: {"svc"},
		HideFlagName:   {"port,nope"},
	})
	store := prefs.NewStore(f.prefsDir)
	require.NoError(t, store.SaveHiddenColumns("svc", []string{"id"}))

	l, err := f.load(t)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"id", "port"}, l.Grid.ColumnState().Hidden())

	stored, err := store.LoadHiddenColumns("svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, stored)
}

func TestShowFlagRevealsStoredHiddenColumn(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)
	f := newFixture(t, path, map[string][]string{
		GridIDFlagName: {"svc"},
		ShowFlagName:   {"id"},
	})
	require.NoError(t, prefs.NewStore(f.prefsDir).SaveHiddenColumns("svc", []string{"id", "port"}))

	l, err := f.load(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"port"}, l.Grid.ColumnState().Hidden())
}

func TestHideFlagKeepsOneColumnVisible(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)
	f := newFixture(t, path, map[string][]string{HideFlagName: {"id,name,port"}})

	l, err := f.load(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, l.Grid.ColumnState().Visible())
	assert.Equal(t, []string{"name", "port"}, l.Grid.ColumnState().Hidden())
	assert.Len(t, l.Grid.Process().Rows, 3)
}

func TestLoadErrors(t *testing.T) {
	path := writeFile(t, "services.json", servicesJSON)

	tests := []struct {
		name    string
		file    string
		flags   map[string][]string
		wantCfg bool
	}{
		{name: "bad filter", file: path, flags: map[string][]string{FilterFlagName: {"port"}}, wantCfg: true},
		{name: "bad sort", file: path, flags: map[string][]string{SortFlagName: {"name:sideways"}}, wantCfg: true},
		{name: "bad format", file: path, flags: map[string][]string{FormatFlagName: {"xml"}}, wantCfg: true},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope.json")},
		{name: "bad query", file: path, flags: map[string][]string{QueryFlagName: {".["}}},
		{name: "missing spec", file: path, flags: map[string][]string{SpecFlagName: {"/nonexistent/spec.yaml"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFixture(t, tt.file, tt.flags).load(t)
			require.Error(t, err)

			var cfgErr *cmdpkg.ConfigurationError
			var execErr *cmdpkg.ExecutionError
			if tt.wantCfg {
				assert.True(t, errors.As(err, &cfgErr), "want a configuration error, got %T", err)
			} else {
				assert.True(t, errors.As(err, &execErr), "want an execution error, got %T", err)
			}
		})
	}
}

func TestStoreForDefaultsNextToConfig(t *testing.T) {
	cfg := testConfig.New(t, map[string]any{})
	c := &cobra.Command{Use: "test"}
	c.SetContext(context.WithValue(context.Background(), config.ConfigKey, config.Hook(cfg)))

	store, err := StoreFor(cmdpkg.BuildHelper(c, nil))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.GetPath()), "grids"), store.Dir())

	_, err = store.Load("anything")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
