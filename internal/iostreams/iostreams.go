package iostreams

import (
	"bytes"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var osStreams *IOStreams

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Empty type to represent the _type_ IOStreams . Genesis is to support a key in a Context
type Key struct{}

// StreamsKey is a global instance of the Key type
var StreamsKey = Key{}

// Get a singleton instance of the OS IOStreams
func GetOSIOStreams() *IOStreams {
	if osStreams == nil {
		osStreams = &IOStreams{
			In:     os.Stdin,
			Out:    os.Stdout,
			ErrOut: os.Stderr,
		}
	}
	return osStreams
}

func NewTestIOStreams() (*IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
	}, in, out, errOut
}

// IsInputTerminal reports whether In is an interactive terminal. Piped
// input is read as grid data.
func (s *IOStreams) IsInputTerminal() bool {
	return isTerminal(s.In)
}

// IsOutputTerminal reports whether Out is an interactive terminal.
func (s *IOStreams) IsOutputTerminal() bool {
	return isTerminal(s.Out)
}

// TerminalWidth returns the width of Out, or fallback when Out is not a
// terminal.
func (s *IOStreams) TerminalWidth(fallback int) int {
	w, _ := s.TerminalSize(fallback, 0)
	return w
}

// TerminalSize returns the size of Out, using the fallbacks for any
// dimension that cannot be measured.
func (s *IOStreams) TerminalSize(fallbackWidth, fallbackHeight int) (int, int) {
	f, ok := s.Out.(*os.File)
	if !ok {
		return fallbackWidth, fallbackHeight
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return fallbackWidth, fallbackHeight
	}
	if w <= 0 {
		w = fallbackWidth
	}
	if h <= 0 {
		h = fallbackHeight
	}
	return w, h
}

type fdReader interface {
	Fd() uintptr
}

func isTerminal(v any) bool {
	f, ok := v.(fdReader)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
