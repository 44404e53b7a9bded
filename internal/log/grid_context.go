package log

import (
	"context"
	"log/slog"
)

type gridContextKey struct{}

// GridLogContext carries what a command is working on so every record logged
// under its context can be traced back to a grid and its data source.
type GridLogContext struct {
	CommandPath  string
	CommandVerb  string
	GridID       string
	Source       string
	SourceFormat string
	SpecFile     string
}

// WithGridLogContext merges values into the context's GridLogContext.
// Empty fields leave the existing value alone.
func WithGridLogContext(ctx context.Context, values GridLogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	merged := GridLogContextFrom(ctx)
	if values.CommandPath != "" {
		merged.CommandPath = values.CommandPath
	}
	if values.CommandVerb != "" {
		merged.CommandVerb = values.CommandVerb
	}
	if values.GridID != "" {
		merged.GridID = values.GridID
	}
	if values.Source != "" {
		merged.Source = values.Source
	}
	if values.SourceFormat != "" {
		merged.SourceFormat = values.SourceFormat
	}
	if values.SpecFile != "" {
		merged.SpecFile = values.SpecFile
	}
	return context.WithValue(ctx, gridContextKey{}, merged)
}

// GridLogContextFrom returns the GridLogContext stored in ctx, if any.
func GridLogContextFrom(ctx context.Context) GridLogContext {
	if ctx == nil {
		return GridLogContext{}
	}
	v, _ := ctx.Value(gridContextKey{}).(GridLogContext)
	return v
}

// GridLogContextAttrs renders the non-empty fields of the context's
// GridLogContext as slog attributes.
func GridLogContextAttrs(ctx context.Context) []slog.Attr {
	gc := GridLogContextFrom(ctx)
	attrs := make([]slog.Attr, 0, 6)
	add := func(key, val string) {
		if val != "" {
			attrs = append(attrs, slog.String(key, val))
		}
	}
	add("command_path", gc.CommandPath)
	add("command_verb", gc.CommandVerb)
	add("grid_id", gc.GridID)
	add("source", gc.Source)
	add("source_format", gc.SourceFormat)
	add("spec_file", gc.SpecFile)
	return attrs
}
