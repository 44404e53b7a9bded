// Package theme holds the color palettes used to render grids.
package theme

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultName is the built-in theme used when no override is provided.
const DefaultName = "grid-dark"

// Token represents a semantic color slot.
type Token string

const (
	ColorTextPrimary   Token = "text.primary"
	ColorTextMuted     Token = "text.muted"
	ColorBorder        Token = "border"
	ColorHeader        Token = "header"
	ColorHeaderText    Token = "header.text"
	ColorSorted        Token = "header.sorted"
	ColorRowAlt        Token = "row.alt"
	ColorSelected      Token = "row.selected"
	ColorSelectedText  Token = "row.selected.text"
	ColorCursor        Token = "row.cursor"
	ColorCursorText    Token = "row.cursor.text"
	ColorPinned        Token = "row.pinned"
	ColorDisabled      Token = "row.disabled"
	ColorExpanded      Token = "row.expanded"
	ColorFilterChip    Token = "filter.chip"
	ColorFilterChipTxt Token = "filter.chip.text"
	ColorDanger        Token = "danger"
)

// Color stores light and dark variants for adaptive rendering.
type Color struct {
	Light string
	Dark  string
}

// Adaptive converts the color into a lipgloss adaptive color.
func (c Color) Adaptive() lipgloss.AdaptiveColor {
	light, dark := strings.TrimSpace(c.Light), strings.TrimSpace(c.Dark)
	if light == "" {
		light = dark
	}
	if dark == "" {
		dark = light
	}
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette is a named set of colors.
type Palette struct {
	Name        string
	DisplayName string
	Colors      map[Token]Color
}

// Color returns the color for token, falling back to the default palette.
func (p Palette) Color(token Token) Color {
	if c, ok := p.Colors[token]; ok && (c.Light != "" || c.Dark != "") {
		return c
	}
	if c, ok := defaultPalette().Colors[token]; ok {
		return c
	}
	return Color{Light: "#000000", Dark: "#FFFFFF"}
}

func (p Palette) Adaptive(token Token) lipgloss.AdaptiveColor {
	return p.Color(token).Adaptive()
}

func (p Palette) ForegroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Adaptive(token))
}

func (p Palette) BackgroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Background(p.Adaptive(token))
}

type contextKey struct{}

var (
	registryOnce sync.Once
	registryMu   sync.RWMutex
	palettes     map[string]Palette
	current      Palette
)

func ContextWithPalette(ctx context.Context, p Palette) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the palette stored on the context or the current palette.
func FromContext(ctx context.Context) Palette {
	if ctx != nil {
		if p, ok := ctx.Value(contextKey{}).(Palette); ok {
			return p
		}
	}
	return Current()
}

// Available returns the registered theme names, sorted.
func Available() []string {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(palettes))
	for k := range palettes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func Get(name string) (Palette, bool) {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := palettes[normalizeName(name)]
	return p, ok
}

// SetCurrent sets the active palette. An empty name selects the default.
func SetCurrent(name string) error {
	name = normalizeName(name)
	if name == "" {
		name = DefaultName
	}
	p, ok := Get(name)
	if !ok {
		return fmt.Errorf("unknown color theme %q, expected one of %s", name, strings.Join(Available(), ", "))
	}
	registryMu.Lock()
	current = p
	registryMu.Unlock()
	return nil
}

func Current() Palette {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()
	return current
}

// Flag is a pflag.Value implementation for theme names.
type Flag struct {
	value string
}

func NewFlag(defaultValue string) *Flag {
	if _, ok := Get(defaultValue); !ok {
		defaultValue = DefaultName
	}
	return &Flag{value: normalizeName(defaultValue)}
}

func (f *Flag) String() string {
	if f == nil {
		return DefaultName
	}
	return f.value
}

func (f *Flag) Set(v string) error {
	name := normalizeName(v)
	if name == "" {
		name = DefaultName
	}
	if _, ok := Get(name); !ok {
		return fmt.Errorf("invalid color theme %q", v)
	}
	f.value = name
	return nil
}

func (f *Flag) Type() string {
	return "string"
}

func ensureRegistry() {
	registryOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		palettes = make(map[string]Palette)
		for _, p := range []Palette{
			defaultPalette(),
			gridLightPalette(),
			derivePalette("ocean", "Ocean", "#3A86FF"),
			derivePalette("forest", "Forest", "#2A9D8F"),
			derivePalette("ember", "Ember", "#F4A261"),
			derivePalette("mono", "Monochrome", "#9A9A9A"),
		} {
			palettes[p.Name] = p
		}
		current = palettes[DefaultName]
	})
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

var defaultPalette = sync.OnceValue(func() Palette {
	return Palette{
		Name:        DefaultName,
		DisplayName: "Grid Dark",
		Colors: map[Token]Color{
			ColorTextPrimary:   single("#E6E8EE"),
			ColorTextMuted:     single("#8A90A2"),
			ColorBorder:        single("#3B3F4C"),
			ColorHeader:        single("#1E2130"),
			ColorHeaderText:    single("#F4F5F8"),
			ColorSorted:        single("#7AA2F7"),
			ColorRowAlt:        single("#171923"),
			ColorSelected:      single("#2E3A59"),
			ColorSelectedText:  single("#FFFFFF"),
			ColorCursor:        single("#7AA2F7"),
			ColorCursorText:    single("#10121A"),
			ColorPinned:        single("#E0AF68"),
			ColorDisabled:      single("#565B6B"),
			ColorExpanded:      single("#1A1D29"),
			ColorFilterChip:    single("#BB9AF7"),
			ColorFilterChipTxt: single("#10121A"),
			ColorDanger:        single("#F7768E"),
		},
	}
})

func gridLightPalette() Palette {
	return Palette{
		Name:        "grid-light",
		DisplayName: "Grid Light",
		Colors: map[Token]Color{
			ColorTextPrimary:   single("#1B1D24"),
			ColorTextMuted:     single("#6B7080"),
			ColorBorder:        single("#D0D4DE"),
			ColorHeader:        single("#EEF0F5"),
			ColorHeaderText:    single("#10121A"),
			ColorSorted:        single("#2F5BD3"),
			ColorRowAlt:        single("#F7F8FB"),
			ColorSelected:      single("#DCE6FF"),
			ColorSelectedText:  single("#10121A"),
			ColorCursor:        single("#2F5BD3"),
			ColorCursorText:    single("#FFFFFF"),
			ColorPinned:        single("#9A6700"),
			ColorDisabled:      single("#A3A8B5"),
			ColorExpanded:      single("#F1F3F8"),
			ColorFilterChip:    single("#7C4DDB"),
			ColorFilterChipTxt: single("#FFFFFF"),
			ColorDanger:        single("#C9253D"),
		},
	}
}

// derivePalette builds an adaptive palette around one accent color. Surfaces
// are the accent blended toward black or white; text on accent surfaces picks
// whichever of near-black and near-white contrasts better.
func derivePalette(name, display, accentHex string) Palette {
	accent, err := colorful.Hex(accentHex)
	if err != nil {
		return defaultPalette()
	}
	black := colorful.Color{}
	white := colorful.Color{R: 1, G: 1, B: 1}
	blend := func(toward colorful.Color, t float64) string {
		return accent.BlendLab(toward, t).Clamped().Hex()
	}
	pair := func(light, dark float64) Color {
		return Color{Light: blend(white, light), Dark: blend(black, dark)}
	}

	return Palette{
		Name:        name,
		DisplayName: display,
		Colors: map[Token]Color{
			ColorTextPrimary:   {Light: "#15171C", Dark: "#EDEEF2"},
			ColorTextMuted:     {Light: blend(black, 0.45), Dark: blend(white, 0.45)},
			ColorBorder:        pair(0.7, 0.7),
			ColorHeader:        pair(0.85, 0.8),
			ColorHeaderText:    {Light: "#15171C", Dark: "#F5F6F8"},
			ColorSorted:        single(accent.Hex()),
			ColorRowAlt:        pair(0.95, 0.92),
			ColorSelected:      pair(0.75, 0.6),
			ColorSelectedText:  {Light: "#15171C", Dark: "#FFFFFF"},
			ColorCursor:        single(accent.Hex()),
			ColorCursorText:    single(contrastText(accent)),
			ColorPinned:        {Light: "#9A6700", Dark: "#E0AF68"},
			ColorDisabled:      {Light: "#A3A8B5", Dark: "#565B6B"},
			ColorExpanded:      pair(0.92, 0.88),
			ColorFilterChip:    single(accent.Hex()),
			ColorFilterChipTxt: single(contrastText(accent)),
			ColorDanger:        {Light: "#C9253D", Dark: "#F7768E"},
		},
	}
}

func single(hex string) Color {
	return Color{Light: hex, Dark: hex}
}

func contrastText(c colorful.Color) string {
	r, g, b := c.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b > 0.4 {
		return "#121418"
	}
	return "#F8F8F8"
}
