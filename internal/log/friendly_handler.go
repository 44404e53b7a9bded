package log

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Attribute keys the friendly handler renders ahead of the rest.
const (
	SuggestionKey = "suggestion"
	ErrorKey      = "error"
)

// leading keys are printed in this order before the alphabetical remainder.
var leading = []string{"grid_id", "source", "column"}

// NewFriendlyErrorHandler renders error records for a person at a terminal:
//
//	Error: <message or error attr>
//	  suggestion: <hint>
//	  grid_id: people
//	  other: value
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w, mu: &sync.Mutex{}}
}

type friendlyHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	attrs  []field
	prefix string
}

type field struct {
	key   string
	value string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)
		return true
	})

	summary := strings.TrimSpace(record.Message)
	if summary == "" {
		summary = valueOf(fields, ErrorKey)
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)
	if hint := valueOf(fields, SuggestionKey); hint != "" {
		fmt.Fprintf(&sb, "  %s: %s\n", SuggestionKey, hint)
	}

	rest := slices.DeleteFunc(fields, func(f field) bool {
		return f.value == "" || f.key == SuggestionKey || f.key == ErrorKey
	})
	slices.SortStableFunc(rest, func(a, b field) int {
		if c := cmp.Compare(rank(a.key), rank(b.key)); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	for _, f := range rest {
		writeField(&sb, f)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		out.attrs = h.appendAttr(out.attrs, h.prefix, a)
	}
	return &out
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := *h
	out.prefix = h.prefix + name + "."
	return &out
}

// appendAttr flattens groups into dotted keys.
func (h *friendlyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			fields = h.appendAttr(fields, p, ga)
		}
		return fields
	}
	if a.Key == "" {
		return fields
	}
	return append(fields, field{key: prefix + a.Key, value: render(v)})
}

func render(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

func valueOf(fields []field, key string) string {
	for _, f := range fields {
		if f.key == key && f.value != "" {
			return f.value
		}
	}
	return ""
}

func rank(key string) int {
	if i := slices.Index(leading, key); i >= 0 {
		return i
	}
	return len(leading)
}

func writeField(sb *strings.Builder, f field) {
	first, more, multi := strings.Cut(strings.TrimSpace(f.value), "\n")
	fmt.Fprintf(sb, "  %s: %s\n", f.key, strings.TrimSpace(first))
	if !multi {
		return
	}
	for _, line := range strings.Split(more, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(sb, "    %s\n", line)
		}
	}
}
