package style

import (
	"math"

	"github.com/hazyhaar/domdeck/visual"
)

// Side indexes, clockwise from the top as in CSS shorthands.
const (
	Top = iota
	Right
	Bottom
	Left
)

// Side is one border edge. Width is in source pixels.
type Side struct {
	Width float64
	Style string
	Color Color
}

func (s Side) empty() bool {
	return s.Width <= 0 || s.Style == "none" || s.Style == "hidden" || s.Style == "" || !s.Color.Visible()
}

// BorderKind says how a border can be rendered.
type BorderKind int

const (
	BorderNone      BorderKind = iota
	BorderUniform              // one line around the whole shape
	BorderComposite            // per-side rendering required
)

func (k BorderKind) String() string {
	switch k {
	case BorderNone:
		return "none"
	case BorderUniform:
		return "uniform"
	case BorderComposite:
		return "composite"
	}
	return "unknown"
}

// Border is the classification of an element's four border sides.
type Border struct {
	Kind  BorderKind
	Sides [4]Side
}

// Line is a single-style outline in target units.
type Line struct {
	Width        float64 // points
	Color        string
	Transparency float64
	Dash         string // solid, dash, sysDot
}

// ClassifyBorder reads the four sides of st.
func ClassifyBorder(st *visual.Style, probe visual.ColorProbe) Border {
	var b Border
	b.Sides[Top] = Side{Px(st.BorderTopWidth), st.BorderTopStyle, ParseColor(st.BorderTopColor, probe)}
	b.Sides[Right] = Side{Px(st.BorderRightWidth), st.BorderRightStyle, ParseColor(st.BorderRightColor, probe)}
	b.Sides[Bottom] = Side{Px(st.BorderBottomWidth), st.BorderBottomStyle, ParseColor(st.BorderBottomColor, probe)}
	b.Sides[Left] = Side{Px(st.BorderLeftWidth), st.BorderLeftStyle, ParseColor(st.BorderLeftColor, probe)}
	b.Kind = classifySides(b.Sides)
	return b
}

func classifySides(sides [4]Side) BorderKind {
	empty := 0
	for _, s := range sides {
		if s.empty() {
			empty++
		}
	}
	if empty == 4 {
		return BorderNone
	}
	if empty > 0 {
		return BorderComposite
	}
	first := sides[0]
	for _, s := range sides[1:] {
		if s.Width != first.Width || s.Style != first.Style || s.Color != first.Color {
			return BorderComposite
		}
	}
	return BorderUniform
}

// Line converts a uniform border to an outline, scaling its width by scale.
func (b Border) Line(scale float64) Line {
	s := b.Sides[Top]
	return Line{
		Width:        math.Round(s.Width*0.75*scale*100) / 100,
		Color:        s.Color.Hex,
		Transparency: s.Color.Transparency(),
		Dash:         DashType(s.Style),
	}
}

// DashType maps a CSS border style onto the target's dash names.
func DashType(cssStyle string) string {
	switch cssStyle {
	case "dashed":
		return "dash"
	case "dotted":
		return "sysDot"
	}
	return "solid"
}
