// Package render turns the markdown help topics into terminal text.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

var (
	defaultRenderer *glamour.TermRenderer
	defaultMu       sync.Mutex
)

// Options controls markdown rendering behaviour.
type Options struct {
	NoColor bool
	Width   int
}

// Markdown renders markdown for a terminal. The input is returned unchanged
// when rendering fails.
func Markdown(markdown string, opts Options) string {
	var (
		r   *glamour.TermRenderer
		err error
	)
	if opts.Width > 0 || opts.NoColor {
		r, err = newRenderer(opts)
	} else {
		r, err = getDefaultRenderer()
	}
	if err != nil {
		return markdown
	}

	str, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return normalizeSpacing(str)
}

// normalizeSpacing drops glamour's outer margin and trailing padding.
func normalizeSpacing(s string) string {
	trimmed := strings.Trim(s, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	margin := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if len(line) >= margin {
			line = line[margin:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n") + "\n"
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	options := []glamour.TermRendererOption{}
	if opts.NoColor {
		options = append(options,
			glamour.WithStandardStyle("notty"),
			glamour.WithColorProfile(termenv.Ascii),
		)
	} else {
		options = append(options,
			glamour.WithAutoStyle(),
			glamour.WithColorProfile(termenv.ANSI256),
		)
	}
	if opts.Width > 0 {
		options = append(options, glamour.WithWordWrap(opts.Width))
	}
	return glamour.NewTermRenderer(options...)
}

func getDefaultRenderer() (*glamour.TermRenderer, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRenderer == nil {
		r, err := newRenderer(Options{})
		if err != nil {
			return nil, err
		}
		defaultRenderer = r
	}
	return defaultRenderer, nil
}
