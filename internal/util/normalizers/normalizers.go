// Package normalizers tidies the help text embedded in command definitions.
package normalizers

import (
	"strings"
)

const Indentation = `  `

// LongDesc normalizes a command's long description: surrounding blank lines
// are dropped and the common leading indentation is removed.
func LongDesc(s string) string {
	return strings.Join(dedent(lines(s)), "\n")
}

// Examples normalizes a command's examples so every line sits exactly one
// Indentation deep. Relative indentation within the block is kept and blank
// lines stay empty.
func Examples(s string) string {
	ls := dedent(lines(s))
	for i, l := range ls {
		if l != "" {
			ls[i] = Indentation + l
		}
	}
	return strings.Join(ls, "\n")
}

// lines splits s and drops leading and trailing blank lines.
func lines(s string) []string {
	ls := strings.Split(strings.ReplaceAll(s, "\t", Indentation), "\n")
	for len(ls) > 0 && strings.TrimSpace(ls[0]) == "" {
		ls = ls[1:]
	}
	for len(ls) > 0 && strings.TrimSpace(ls[len(ls)-1]) == "" {
		ls = ls[:len(ls)-1]
	}
	return ls
}

func dedent(ls []string) []string {
	margin := -1
	for _, l := range ls {
		trimmed := strings.TrimLeft(l, " ")
		if trimmed == "" {
			continue
		}
		if indent := len(l) - len(trimmed); margin < 0 || indent < margin {
			margin = indent
		}
	}
	out := make([]string, len(ls))
	for i, l := range ls {
		l = strings.TrimRight(l, " ")
		if len(l) >= margin && margin > 0 {
			l = l[margin:]
		}
		out[i] = l
	}
	return out
}
