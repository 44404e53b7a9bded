package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kong/gridctl/internal/build"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/test/cmd"
	testConfig "github.com/kong/gridctl/test/config"
)

func newHelper(streams *iostreams.IOStreams, format common.OutputFormat, showCommit bool) *cmd.MockHelper {
	return &cmd.MockHelper{
		GetOutputFormatMock: func() (common.OutputFormat, error) {
			return format, nil
		},
		GetConfigMock: func() (config.Hook, error) {
			return &testConfig.MockConfigHook{
				GetBoolMock: func(key string) bool {
					return key == ShowCommitConfigPath && showCommit
				},
			}, nil
		},
		GetStreamsMock: func() *iostreams.IOStreams {
			return streams
		},
		GetBuildInfoMock: func() (*build.Info, error) {
			return &build.Info{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"}, nil
		},
	}
}

func Test_VersionCmd(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	helper := newHelper(streams, common.TEXT, false)

	require.NoError(t, validate(helper))
	require.NoError(t, run(helper))
	assert.Equal(t, "1.2.3\n", out.String())
}

func Test_VersionCmdShowCommit(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(streams, common.TEXT, true)))
	assert.Equal(t, "1.2.3 (abc123)\n", out.String())
}

func Test_VersionCmdJSONOutput(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(streams, common.JSON, true)))

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]string{"version": "1.2.3", "commit": "abc123", "date": "2026-01-02"}, got)
}
