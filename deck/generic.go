package deck

import (
	"math"

	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/vecfx"
	"github.com/hazyhaar/domdeck/visual"
)

// generic paints an element's box (fill, border, shadow) and, for text
// containers, its text. It reports whether the subtree was consumed.
func (p *pass) generic(v visit) bool {
	n := v.node
	st := &n.Style
	size := n.BoxSize()
	g := p.geometry(n)
	radii := style.ParseRadii(st, size.W, size.H)
	fill := p.color(st.BackgroundColor, v)
	border := p.border(v)
	text := isTextContainer(n)

	switch grad, ok := style.ParseLinearGradient(st.BackgroundImage, size.W, size.H, p.src); {
	case ok && !textClip(st):
		for i := range grad.Stops {
			grad.Stops[i].Color = grad.Stops[i].Color.WithAlpha(v.opacity)
		}
		p.svgItem(v, g, vecfx.LinearGradient(size.W, size.H, radii, grad))
		p.outline(v, g, radii, border, size.W, size.H)
	case fill.Visible() && style.BlurRadius(st.Filter) > 0:
		doc, pad := vecfx.Blur(size.W, size.H, radii, fill, style.BlurRadius(st.Filter))
		p.svgItem(v, p.expand(g, pad), doc)
		p.outline(v, g, radii, border, size.W, size.H)
	case border.Kind == style.BorderComposite:
		p.svgItem(v, g, vecfx.CompositeBorder(size.W, size.H, radii, border.Sides, fill))
	case nonUniform(radii) && fill.Visible() && !text:
		var stroke *vecfx.Stroke
		if border.Kind == style.BorderUniform {
			s := border.Sides[style.Top]
			stroke = &vecfx.Stroke{Width: s.Width, Color: s.Color, Dash: style.DashType(s.Style)}
		}
		p.svgItem(v, g, vecfx.RoundedRect(size.W, size.H, radii, fill, stroke))
	default:
		if sc, ok := p.shape(v, g, radii, fill, border, size.W, size.H); ok {
			p.add(v, &Item{Kind: KindShape, Shape: sc})
		}
	}

	if text {
		p.containerText(v, g)
		return true
	}
	return false
}

// textClip reports whether a background is clipped to the glyphs, which
// leaves nothing to paint behind them.
func textClip(st *visual.Style) bool {
	return st.BackgroundClip == "text" || st.WebkitBackgroundClip == "text"
}

// outline draws the border over an image-filled box.
func (p *pass) outline(v visit, g Geometry, radii style.Radii, border style.Border, w, h float64) {
	switch border.Kind {
	case style.BorderUniform:
		if sc, ok := p.shape(v, g, radii, style.Color{}, border, w, h); ok {
			sc.Shadow = nil
			p.add(v, &Item{Kind: KindShape, Shape: sc})
		}
	case style.BorderComposite:
		p.svgItem(v, g, vecfx.CompositeBorder(w, h, radii, border.Sides, style.Color{}))
	}
}

// shape builds a native shape for the box, or reports false when there is
// nothing to draw.
func (p *pass) shape(v visit, g Geometry, radii style.Radii, fill style.Color, border style.Border, w, h float64) (*ShapeCommand, bool) {
	shadow := p.shadow(v)
	if !fill.Visible() && border.Kind != style.BorderUniform && shadow == nil {
		return nil, false
	}
	sc := &ShapeCommand{Type: "rect", Geometry: g, Shadow: shadow}
	if fill.Visible() {
		sc.Fill = &Fill{Color: fill.Hex, Transparency: fill.Transparency()}
	}
	if border.Kind == style.BorderUniform {
		l := border.Line(p.layout.Scale)
		sc.Line = &l
	}
	if !radii.Zero() && radii.Uniform() {
		r := radii.Legalize(w, h).TL
		if r >= w/2-0.5 && r >= h/2-0.5 && math.Abs(w-h) <= 1 {
			sc.Type = "ellipse"
		} else {
			sc.Type = "roundRect"
			sc.Radius = p.layout.Pt(r)
		}
	}
	return sc, true
}

func (p *pass) shadow(v visit) *Shadow {
	s, ok := style.ParseShadow(v.node.Style.BoxShadow, p.src)
	if !ok {
		return nil
	}
	c := s.Color.WithAlpha(v.opacity)
	typ := "outer"
	if s.Inset {
		typ = "inner"
	}
	return &Shadow{
		Type:    typ,
		Angle:   round2(s.Angle),
		Blur:    p.layout.Pt(s.Blur),
		Offset:  p.layout.Pt(s.Distance),
		Color:   c.Hex,
		Opacity: round2(c.Alpha),
	}
}
