package view

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/internal/log"
	testConfig "github.com/kong/gridctl/test/config"
)

const servicesJSON = `[
  {"id": 1, "name": "billing", "port": 80},
  {"id": 2, "name": "auth", "port": 8080},
  {"id": 3, "name": "search", "port": 9000}
]`

func runView(t *testing.T, output string, flags map[string]string) (*bytes.Buffer, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.json")
	require.NoError(t, os.WriteFile(path, []byte(servicesJSON), 0o600))

	cfg := testConfig.New(t, map[string]any{
		"output": output,
		"grid":   map[string]any{"prefs-dir": filepath.Join(t.TempDir(), "grids")},
	})
	streams, _, out, _ := iostreams.NewTestIOStreams()

	c, err := NewViewCmd()
	require.NoError(t, err)
	for name, v := range flags {
		require.NoError(t, c.Flags().Set(name, v), name)
	}
	ctx := context.WithValue(context.Background(), config.ConfigKey, config.Hook(cfg))
	ctx = context.WithValue(ctx, log.LoggerKey, slog.New(slog.DiscardHandler))
	ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
	c.SetContext(ctx)

	args := []string{path}
	require.NoError(t, c.PreRunE(c, args))
	return out, run(cmdpkg.BuildHelper(c, args))
}

func TestViewText(t *testing.T) {
	out, err := runView(t, "text", map[string]string{"sort": "name"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "services.json")
	assert.Contains(t, text, "port")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("auth")), bytes.Index(out.Bytes(), []byte("billing")))
	assert.Contains(t, text, "3 rows · sorted by name:asc")
}

func TestViewJSON(t *testing.T) {
	out, err := runView(t, "json", map[string]string{"filter": "port>1000", "hide": "id"})
	require.NoError(t, err)

	var payload struct {
		Columns []string         `json:"columns"`
		Hidden  []string         `json:"hidden_columns"`
		Rows    []map[string]any `json:"rows"`
		Total   int              `json:"total"`
		Page    int              `json:"page"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, []string{"name", "port"}, payload.Columns)
	assert.Equal(t, []string{"id"}, payload.Hidden)
	assert.Equal(t, 2, payload.Total)
	assert.Equal(t, 1, payload.Page)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "auth", payload.Rows[0]["name"])
}

func TestViewJQ(t *testing.T) {
	out, err := runView(t, "json", map[string]string{"jq": "[.rows[].name]"})
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &names))
	assert.Equal(t, []string{"billing", "auth", "search"}, names)
}

func TestViewJQRequiresStructuredOutput(t *testing.T) {
	_, err := runView(t, "text", map[string]string{"jq": ".rows"})
	var cfgErr *cmdpkg.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "got %v", err)
}

func TestViewCommandShape(t *testing.T) {
	c, err := NewViewCmd()
	require.NoError(t, err)
	assert.Error(t, c.Args(c, nil))
	assert.NoError(t, c.Args(c, []string{"a.csv"}))
	for _, name := range []string{"filter", "sort", "search", "page", "page-size", "hide", "show", "spec", "query", "grid-id", "format", "jq"} {
		assert.NotNil(t, c.Flags().Lookup(name), name)
	}
}
