package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// mirrorErrors controls whether error records also reach the mirror handler.
// The browse TUI turns it off while it owns the terminal.
var mirrorErrors atomic.Bool

func init() {
	mirrorErrors.Store(true)
}

func EnableErrorMirroring() {
	mirrorErrors.Store(true)
}

func DisableErrorMirroring() {
	mirrorErrors.Store(false)
}

// NewDualHandler fans records out to primary and, for error records while
// mirroring is enabled, to mirror. Either handler may be nil. Records gain the
// attributes of the GridLogContext found in the logging context.
func NewDualHandler(primary, mirror slog.Handler) slog.Handler {
	return &dualHandler{primary: primary, mirror: mirror}
}

type dualHandler struct {
	primary slog.Handler
	mirror  slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.primary != nil && h.primary.Enabled(ctx, level) {
		return true
	}
	return h.mirrors(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := GridLogContextAttrs(ctx); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}

	if h.primary != nil && h.primary.Enabled(ctx, record.Level) {
		if err := h.primary.Handle(ctx, record); err != nil {
			return err
		}
	}
	if h.mirrors(ctx, record.Level) {
		return h.mirror.Handle(ctx, record.Clone())
	}
	return nil
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h *dualHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	out := &dualHandler{}
	if h.primary != nil {
		out.primary = fn(h.primary)
	}
	if h.mirror != nil {
		out.mirror = fn(h.mirror)
	}
	return out
}

func (h *dualHandler) mirrors(ctx context.Context, level slog.Level) bool {
	return h.mirror != nil &&
		level >= slog.LevelError &&
		mirrorErrors.Load() &&
		h.mirror.Enabled(ctx, level)
}
