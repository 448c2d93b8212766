// Package style interprets computed style values: colors, borders, shadows,
// corner radii, gradients, filters, transforms and typography. Parsers never
// fail loudly; a value they do not understand is reported as absent so the
// caller can fall back to simpler rendering.
package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/hazyhaar/domdeck/visual"
)

// Color is a resolved sRGB color. Hex is six uppercase hex digits without '#'
// and is empty when the color is fully transparent.
type Color struct {
	Hex   string
	Alpha float64
}

// Visible reports whether the color paints anything.
func (c Color) Visible() bool { return c.Hex != "" && c.Alpha > 0 }

// Transparency returns the color's transparency as a 0-100 percentage.
func (c Color) Transparency() float64 {
	return math.Round((1-c.Alpha)*1000) / 10
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.Alpha *= a
	if c.Alpha <= 0 {
		return Color{}
	}
	return c
}

// CSS formats the color for SVG/CSS output.
func (c Color) CSS() string {
	if !c.Visible() {
		return "none"
	}
	return "#" + c.Hex
}

func rgba(r, g, b uint8, a float64) Color {
	if a <= 0 {
		return Color{}
	}
	if a > 1 {
		a = 1
	}
	return Color{Hex: fmt.Sprintf("%02X%02X%02X", r, g, b), Alpha: a}
}

// ParseColor resolves any CSS color. Hex and rgb()/rgba() forms are parsed
// directly; other syntaxes (named colors, color(), lab(), oklch(), ...) are
// handed to probe, which asks the rendering engine for the painted pixel.
// A nil probe leaves such colors unresolved.
func ParseColor(css string, probe visual.ColorProbe) Color {
	css = strings.TrimSpace(css)
	switch strings.ToLower(css) {
	case "", "none", "transparent", "initial", "inherit":
		return Color{}
	}
	comps := components(css)
	if len(comps) == 1 {
		if c, ok := parseColorComponent(comps[0]); ok {
			return c
		}
	}
	return probeColor(css, probe)
}

// colorFrom resolves a color that has already been tokenized as part of a
// larger value (a shadow layer or gradient stop).
func colorFrom(c component, probe visual.ColorProbe) Color {
	if col, ok := parseColorComponent(c); ok {
		return col
	}
	return probeColor(c.String(), probe)
}

func probeColor(css string, probe visual.ColorProbe) Color {
	if probe == nil {
		return Color{}
	}
	px, ok := probe.ResolveColor(css)
	if !ok {
		return Color{}
	}
	return rgba(px.R, px.G, px.B, float64(px.A)/255)
}

// looksLikeColor reports whether a component can only be a color.
func looksLikeColor(c component) bool {
	switch c.typ {
	case scanner.TokenHash:
		return true
	case scanner.TokenFunction:
		switch c.value {
		case "rgb", "rgba", "hsl", "hsla", "hwb", "lab", "lch", "oklab", "oklch", "color", "color-mix":
			return true
		}
	case scanner.TokenIdent:
		return !c.isIdent("inset", "to", "left", "right", "top", "bottom", "none")
	}
	return false
}

func parseColorComponent(c component) (Color, bool) {
	switch {
	case c.typ == scanner.TokenHash:
		return parseHex(c.value)
	case c.isIdent("transparent"):
		return Color{}, true
	case c.isFunc("rgb", "rgba"):
		return parseRGB(c.args)
	}
	return Color{}, false
}

func parseHex(s string) (Color, bool) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4:
		var b strings.Builder
		for _, ch := range s {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		s = b.String()
	case 6, 8:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	alpha := 1.0
	if len(s) == 8 {
		alpha = float64(v&0xff) / 255
		v >>= 8
	}
	return rgba(uint8(v>>16), uint8(v>>8), uint8(v), alpha), true
}

// parseRGB accepts both the legacy comma syntax and the space syntax with an
// optional "/ alpha".
func parseRGB(args [][]component) (Color, bool) {
	var vals []component
	if len(args) >= 3 {
		for _, a := range args {
			if len(a) != 1 {
				return Color{}, false
			}
			vals = append(vals, a[0])
		}
	} else if len(args) == 1 {
		for _, c := range args[0] {
			if c.typ == scanner.TokenChar && c.value == "/" {
				continue
			}
			vals = append(vals, c)
		}
	}
	if len(vals) != 3 && len(vals) != 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, unit, ok := vals[i].number()
		if !ok {
			return Color{}, false
		}
		if unit == "%" {
			n = n * 255 / 100
		}
		ch[i] = uint8(math.Round(clamp(n, 0, 255)))
	}
	alpha := 1.0
	if len(vals) == 4 {
		n, unit, ok := vals[3].number()
		if !ok {
			return Color{}, false
		}
		if unit == "%" {
			n /= 100
		}
		alpha = clamp(n, 0, 1)
	}
	return rgba(ch[0], ch[1], ch[2], alpha), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// TextColor resolves the text color of an element. Gradient text (a
// transparent color over a background clipped to the glyphs) is approximated
// by the gradient's first stop.
func TextColor(st *visual.Style, probe visual.ColorProbe) Color {
	c := ParseColor(st.Color, probe)
	if c.Visible() {
		return c
	}
	if st.BackgroundClip == "text" || st.WebkitBackgroundClip == "text" {
		if g, ok := ParseLinearGradient(st.BackgroundImage, 0, 0, probe); ok && len(g.Stops) > 0 {
			return g.Stops[0].Color
		}
	}
	return c
}
