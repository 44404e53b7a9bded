package help

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/iostreams"
)

func runHelpCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	streams, _, out, _ := iostreams.NewTestIOStreams()

	root := &cobra.Command{Use: "gridctl"}
	root.AddCommand(&cobra.Command{Use: "view", Short: "Print a page", Run: func(*cobra.Command, []string) {}})
	h := NewHelpCmd()
	root.SetHelpCommand(h)
	root.SetOut(out)

	ctx := context.WithValue(context.Background(), iostreams.StreamsKey, streams)
	root.SetArgs(append([]string{"help"}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{"browse", "columns", "config", "filters", "grid-spec", "view"}, Topics())
}

func TestHelpListsTopics(t *testing.T) {
	out, err := runHelpCmd(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Help topics:")
	for _, topic := range Topics() {
		assert.Contains(t, out, "  "+topic+"\n")
	}
}

func TestHelpRendersTopicWithoutColor(t *testing.T) {
	out, err := runHelpCmd(t, "filters")
	require.NoError(t, err)
	assert.Contains(t, out, "Filters and sorting")
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "{{cli}}")
}

func TestHelpUnknownTopic(t *testing.T) {
	_, err := runHelpCmd(t, "nope")
	var cfgErr *cmdpkg.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Contains(t, err.Error(), "grid-spec")
}

func TestLoadHelpTemplateSubstitutesCLIName(t *testing.T) {
	content, err := loadHelpTemplate("view")
	require.NoError(t, err)
	assert.NotContains(t, content, "{{cli}}")
	assert.Contains(t, content, "gridctl")
}
