package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownNoColor(t *testing.T) {
	out := Markdown("# Filters\n\nUse `--filter` to **narrow** rows.\n", Options{NoColor: true, Width: 60})

	assert.Contains(t, out, "Filters")
	assert.Contains(t, out, "narrow")
	assert.NotContains(t, out, "\x1b[", "no escape sequences without color")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestMarkdownWraps(t *testing.T) {
	long := strings.Repeat("word ", 40)
	out := Markdown(long, Options{NoColor: true, Width: 30})
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 30, line)
	}
}

func TestNormalizeSpacing(t *testing.T) {
	assert.Equal(t, "a\n  b\n", normalizeSpacing("\n  a   \n    b\n\n"))
	assert.Empty(t, normalizeSpacing("  \n \n"))
}
