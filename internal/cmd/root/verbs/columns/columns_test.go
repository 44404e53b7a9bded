package columns

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/internal/prefs"
	testConfig "github.com/kong/gridctl/test/config"
)

type env struct {
	store *prefs.Store
	cfg   config.Hook
}

func newEnv(t *testing.T, output string) *env {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "grids")
	return &env{
		store: prefs.NewStore(dir),
		cfg: testConfig.New(t, map[string]any{
			"output": output,
			"grid":   map[string]any{"prefs-dir": dir},
		}),
	}
}

// exec runs the columns command tree with args and returns stdout.
func (e *env) exec(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	streams, in, out, _ := iostreams.NewTestIOStreams()
	in.WriteString(stdin)

	c, err := NewColumnsCmd()
	require.NoError(t, err)
	ctx := context.WithValue(context.Background(), config.ConfigKey, e.cfg)
	ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
	c.SetArgs(args)
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	_, err = c.ExecuteContextC(ctx)
	return out.String(), err
}

func TestHideShowList(t *testing.T) {
	e := newEnv(t, "text")

	_, err := e.exec(t, "", "hide", "users", "email", "phone", "email")
	require.NoError(t, err)
	hidden, err := e.store.LoadHiddenColumns("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "phone"}, hidden)

	_, err = e.exec(t, "", "show", "users", "email")
	require.NoError(t, err)
	hidden, err = e.store.LoadHiddenColumns("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, hidden)

	require.NoError(t, e.store.SaveHiddenColumns("orders", nil))
	out, err := e.exec(t, "", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "GRID ID"))
	assert.True(t, strings.HasPrefix(lines[1], "orders"))
	assert.Contains(t, lines[1], " - ")
	assert.True(t, strings.HasPrefix(lines[2], "users"))
	assert.Contains(t, lines[2], "phone")
}

func TestListJSON(t *testing.T) {
	e := newEnv(t, "json")
	require.NoError(t, e.store.SaveHiddenColumns("users", []string{"email"}))

	out, err := e.exec(t, "", "list", "users")
	require.NoError(t, err)

	var items []recordItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "users", items[0].GridID)
	assert.Equal(t, []string{"email"}, items[0].HiddenColumns)
	assert.Equal(t, e.store.Path("users"), items[0].File)
}

func TestListUnknownGrid(t *testing.T) {
	e := newEnv(t, "text")
	_, err := e.exec(t, "", "list", "nope")
	var execErr *cmdpkg.ExecutionError
	require.True(t, errors.As(err, &execErr), "got %v", err)
	assert.Contains(t, execErr.Msg, `"nope"`)

	out, err := e.exec(t, "")
	require.NoError(t, err)
	assert.Equal(t, "No column preferences stored.\n", out)
}

func TestReset(t *testing.T) {
	e := newEnv(t, "text")
	require.NoError(t, e.store.SaveHiddenColumns("users", []string{"email"}))

	_, err := e.exec(t, "no\n", "reset", "users")
	require.Error(t, err)
	_, err = e.store.Load("users")
	require.NoError(t, err, "declined reset keeps the preferences")

	out, err := e.exec(t, "yes\n", "reset", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset column preferences for users")
	hidden, err := e.store.LoadHiddenColumns("users")
	require.NoError(t, err)
	assert.Nil(t, hidden)

	require.NoError(t, e.store.SaveHiddenColumns("users", []string{"email"}))
	_, err = e.exec(t, "", "reset", "users", "--yes")
	require.NoError(t, err)
	hidden, err = e.store.LoadHiddenColumns("users")
	require.NoError(t, err)
	assert.Nil(t, hidden)
}

func TestSubcommandArgs(t *testing.T) {
	c, err := NewColumnsCmd()
	require.NoError(t, err)
	byName := map[string]*cobra.Command{}
	for _, sub := range c.Commands() {
		byName[sub.Name()] = sub
	}
	require.Len(t, byName, 4)
	assert.Error(t, byName["hide"].Args(byName["hide"], []string{"users"}))
	assert.Error(t, byName["reset"].Args(byName["reset"], nil))
}
