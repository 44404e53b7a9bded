package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Key struct{}

var LoggerKey = Key{}

// LevelTrace is a custom trace level for slog
// Using LevelDebug - 4 which equals -8
const LevelTrace = slog.LevelDebug - 4

// Levels accepted by the log-level setting, most verbose first.
var Levels = []string{"trace", "debug", "info", "warn", "error"}

// ParseLevel converts a log-level setting into a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "":
		return slog.LevelError, nil
	}
	return slog.LevelError, fmt.Errorf("unknown log level %q, expected one of %s", level, strings.Join(Levels, ", "))
}

// ConfigLevelStringToSlogLevel is ParseLevel for values that were already
// validated. Unknown strings fall back to error.
func ConfigLevelStringToSlogLevel(level string) slog.Level {
	l, _ := ParseLevel(level)
	return l
}

// FromContext returns the logger stored under LoggerKey, or a logger that
// discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}

// Options configures the process logger.
type Options struct {
	Level slog.Level
	// File receives every record at Level or above. Empty means ErrOut.
	File string
	// ErrOut receives the friendly rendering of error records when File is
	// set, so the user still sees failures.
	ErrOut io.Writer
}

// New builds the process logger. The returned close func releases the log
// file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: replaceLevel}

	if opts.File == "" {
		return slog.New(NewDualHandler(slog.NewTextHandler(errOut, handlerOpts), nil)), noClose, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, noClose, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, noClose, fmt.Errorf("open log file: %w", err)
	}
	h := NewDualHandler(slog.NewJSONHandler(f, handlerOpts), NewFriendlyErrorHandler(errOut))
	return slog.New(h), f.Close, nil
}

func noClose() error { return nil }

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok && l <= LevelTrace {
		return slog.String(slog.LevelKey, "TRACE")
	}
	return a
}
