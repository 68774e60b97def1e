// Package theme provides the color palettes used by the TUI and the PDF
// report. Palettes are identified by id 1-10; custom palettes are derived
// from a single primary color.
package theme

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a full set of display colors as "#RRGGBB" strings.
type Palette struct {
	ID               int
	Name             string
	Primary          string
	PrimaryVariant   string
	Secondary        string
	SecondaryVariant string
	Surface          string
	Background       string
	Error            string
	OnPrimary        string
	OnSecondary      string
	OnSurface        string
}

// DefaultID is the palette used when none is configured.
const DefaultID = 2

var builtin = []Palette{
	{1, "Material Light", "#6200EE", "#3700B3", "#03DAC6", "#018786", "#FFFFFF", "#FFFFFF", "#B00020", "#FFFFFF", "#000000", "#000000"},
	{2, "Material Dark", "#BB86FC", "#3700B3", "#03DAC6", "#03DAC6", "#121212", "#121212", "#CF6679", "#000000", "#000000", "#FFFFFF"},
	{3, "Ocean Blue", "#006994", "#004B6C", "#34B0BE", "#00838F", "#FFFFFF", "#F5F5F5", "#D32F2F", "#FFFFFF", "#000000", "#000000"},
	{4, "Forest Green", "#1B5E20", "#003300", "#66BB6A", "#2E7D32", "#FFFFFF", "#F1F8E9", "#D32F2F", "#FFFFFF", "#000000", "#1B5E20"},
	{5, "Sunset Purple", "#6A1B9A", "#4A148C", "#F06292", "#C2185B", "#FFFFFF", "#F3E5F5", "#D32F2F", "#FFFFFF", "#FFFFFF", "#4A148C"},
	{6, "Autumn Orange", "#E65100", "#BF360C", "#FF6F00", "#E65100", "#FFFFFF", "#FFF3E0", "#D32F2F", "#FFFFFF", "#FFFFFF", "#E65100"},
	{7, "Slate Gray", "#455A64", "#37474F", "#78909C", "#607D8B", "#FFFFFF", "#ECEFF1", "#D32F2F", "#FFFFFF", "#FFFFFF", "#37474F"},
	{8, "Deep Red", "#B71C1C", "#7F0000", "#E53935", "#C62828", "#FFFFFF", "#FFEBEE", "#B71C1C", "#FFFFFF", "#FFFFFF", "#B71C1C"},
	{9, "Indigo Blue", "#283593", "#1A237E", "#5E35B1", "#512DA8", "#FFFFFF", "#F3E5F5", "#D32F2F", "#FFFFFF", "#FFFFFF", "#1A237E"},
	{10, "Teal Modern", "#00897B", "#004D40", "#26C6DA", "#00838F", "#FFFFFF", "#E0F2F1", "#D32F2F", "#FFFFFF", "#000000", "#004D40"},
}

// All returns the built-in palettes ordered by id.
func All() []Palette {
	out := make([]Palette, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup returns the built-in palette with the given id.
func Lookup(id int) (Palette, bool) {
	if id < 1 || id > len(builtin) {
		return Palette{}, false
	}
	return builtin[id-1], true
}

// Get is Lookup with a fallback to the default palette.
func Get(id int) Palette {
	if p, ok := Lookup(id); ok {
		return p
	}
	return builtin[DefaultID-1]
}

// NormalizeHex parses a user-entered color ("#1e88e5", "1E88E5", "#abc")
// and returns it as "#RRGGBB".
func NormalizeHex(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q, want #RRGGBB", strings.TrimPrefix(s, "#"))
	}
	return strings.ToUpper(c.Hex()), nil
}

// FromPrimary derives a light palette from one "#RRGGBB" color: a darker
// primary variant, a complementary secondary and its darker variant.
func FromPrimary(hex, name string) (Palette, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Palette{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	h, s, v := c.Hsv()
	compl := math.Mod(h+180, 360)

	onColor := "#000000"
	if v > 0.5 {
		onColor = "#FFFFFF"
	}
	return Palette{
		Name:             name,
		Primary:          strings.ToUpper(c.Hex()),
		PrimaryVariant:   hsvHex(h, s, v-0.20),
		Secondary:        hsvHex(compl, s-0.20, v),
		SecondaryVariant: hsvHex(compl, s, v-0.15),
		Surface:          "#FFFFFF",
		Background:       "#F5F5F5",
		Error:            "#D32F2F",
		OnPrimary:        onColor,
		OnSecondary:      onColor,
		OnSurface:        "#000000",
	}, nil
}

// Dark reports whether the palette has a dark background.
func (p Palette) Dark() bool {
	c, err := colorful.Hex(p.Background)
	if err != nil {
		return false
	}
	l, _, _ := c.Lab()
	return l < 0.5
}

// RGB returns the 0-255 components of a "#RRGGBB" color, black on error.
func RGB(hex string) (r, g, b int) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0
	}
	r8, g8, b8 := c.RGB255()
	return int(r8), int(g8), int(b8)
}

// Blend mixes two colors in HCL space; t=0 gives a, t=1 gives b.
func Blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return b
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return strings.ToUpper(ca.BlendHcl(cb, t).Clamped().Hex())
}

func hsvHex(h, s, v float64) string {
	return strings.ToUpper(colorful.Hsv(h, clamp01(s), clamp01(v)).Clamped().Hex())
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
