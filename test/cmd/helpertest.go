// Package cmd provides a cmd.Helper whose methods are supplied by tests.
package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kong/gridctl/internal/build"
	"github.com/kong/gridctl/internal/cmd/common"
	"github.com/kong/gridctl/internal/cmd/root/verbs"
	"github.com/kong/gridctl/internal/config"
	"github.com/kong/gridctl/internal/iostreams"
)

type MockHelper struct {
	GetCmdMock          func() *cobra.Command
	GetArgsMock         func() []string
	GetVerbMock         func() (verbs.VerbValue, error)
	GetStreamsMock      func() *iostreams.IOStreams
	GetConfigMock       func() (config.Hook, error)
	GetOutputFormatMock func() (common.OutputFormat, error)
	GetLoggerMock       func() (*slog.Logger, error)
	GetBuildInfoMock    func() (*build.Info, error)
	GetContextMock      func() context.Context
}

func (m *MockHelper) GetCmd() *cobra.Command {
	if m.GetCmdMock == nil {
		return nil
	}
	return m.GetCmdMock()
}

func (m *MockHelper) GetArgs() []string {
	if m.GetArgsMock == nil {
		return nil
	}
	return m.GetArgsMock()
}

func (m *MockHelper) GetVerb() (verbs.VerbValue, error) {
	return m.GetVerbMock()
}

func (m *MockHelper) GetStreams() *iostreams.IOStreams {
	return m.GetStreamsMock()
}

func (m *MockHelper) GetConfig() (config.Hook, error) {
	return m.GetConfigMock()
}

func (m *MockHelper) GetOutputFormat() (common.OutputFormat, error) {
	if m.GetOutputFormatMock == nil {
		return common.TEXT, nil
	}
	return m.GetOutputFormatMock()
}

func (m *MockHelper) GetLogger() (*slog.Logger, error) {
	if m.GetLoggerMock == nil {
		return slog.New(slog.DiscardHandler), nil
	}
	return m.GetLoggerMock()
}

func (m *MockHelper) GetBuildInfo() (*build.Info, error) {
	return m.GetBuildInfoMock()
}

func (m *MockHelper) GetContext() context.Context {
	if m.GetContextMock == nil {
		return context.Background()
	}
	return m.GetContextMock()
}
