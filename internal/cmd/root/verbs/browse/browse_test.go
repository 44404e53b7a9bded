package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/iostreams"
	testConfig "github.com/kong/gridctl/test/config"
)

func TestBrowseRejectsStdin(t *testing.T) {
	streams, _, _, _ := iostreams.NewTestIOStreams()
	c, err := NewBrowseCmd()
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), config.ConfigKey, config.Hook(testConfig.New(t, map[string]any{})))
	ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
	c.SetArgs([]string{"-"})
	err = c.ExecuteContext(ctx)

	var cfgErr *cmdpkg.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.ErrorIs(t, err, errStdinSource)
}

func TestBrowseCommandShape(t *testing.T) {
	c, err := NewBrowseCmd()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, c.Aliases)
	assert.NotNil(t, c.Flags().Lookup(common.VirtualizedFlagName))
	assert.NotNil(t, c.Flags().Lookup("filter"))
	assert.Nil(t, c.Flags().Lookup("hide"))
	assert.Error(t, c.Args(c, nil))
}
