// Package vecfx synthesizes small self-contained SVG documents for effects a
// slide shape cannot express: partially rounded rectangles, borders that
// differ per side, linear gradients and blurred fills. It also normalises
// captured SVG markup and rasterises SVG to PNG.
//
// All lengths are source pixels. Generated documents carry xmlns, viewBox
// and explicit width/height so they can be embedded as images.
package vecfx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hazyhaar/domdeck/style"
)

// MIME is the media type of every document produced here.
const MIME = "image/svg+xml"

// Stroke is a single-style outline drawn inside the shape.
type Stroke struct {
	Width float64
	Color style.Color
	Dash  string // solid, dash, sysDot
}

func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type doc struct {
	sb   strings.Builder
	w, h float64
}

func newDoc(w, h float64) *doc {
	d := &doc{w: w, h: h}
	fmt.Fprintf(&d.sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(w), num(h), num(w), num(h))
	return d
}

func (d *doc) printf(format string, args ...any) { fmt.Fprintf(&d.sb, format, args...) }

func (d *doc) bytes() []byte {
	d.sb.WriteString("</svg>")
	return []byte(d.sb.String())
}

// paint writes fill (or stroke) color attributes; opacity is omitted when 1.
func paint(attr string, c style.Color) string {
	if !c.Visible() {
		return attr + `="none"`
	}
	s := fmt.Sprintf(`%s="%s"`, attr, c.CSS())
	if c.Alpha < 1 {
		s += fmt.Sprintf(` %s-opacity="%s"`, attr, num(c.Alpha))
	}
	return s
}

// RoundedPath returns SVG path data for an x,y,w,h rectangle whose corners
// use the legalised radii r.
func RoundedPath(x, y, w, h float64, r style.Radii) string {
	r = r.Legalize(w, h)
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%s %s", num(x+r.TL), num(y))
	fmt.Fprintf(&sb, "H%s", num(x+w-r.TR))
	if r.TR > 0 {
		fmt.Fprintf(&sb, "A%s %s 0 0 1 %s %s", num(r.TR), num(r.TR), num(x+w), num(y+r.TR))
	}
	fmt.Fprintf(&sb, "V%s", num(y+h-r.BR))
	if r.BR > 0 {
		fmt.Fprintf(&sb, "A%s %s 0 0 1 %s %s", num(r.BR), num(r.BR), num(x+w-r.BR), num(y+h))
	}
	fmt.Fprintf(&sb, "H%s", num(x+r.BL))
	if r.BL > 0 {
		fmt.Fprintf(&sb, "A%s %s 0 0 1 %s %s", num(r.BL), num(r.BL), num(x), num(y+h-r.BL))
	}
	fmt.Fprintf(&sb, "V%s", num(y+r.TL))
	if r.TL > 0 {
		fmt.Fprintf(&sb, "A%s %s 0 0 1 %s %s", num(r.TL), num(r.TL), num(x+r.TL), num(y))
	}
	sb.WriteString("Z")
	return sb.String()
}

func dashArray(s Stroke) string {
	switch s.Dash {
	case "dash":
		return fmt.Sprintf(` stroke-dasharray="%s %s"`, num(s.Width*3), num(s.Width))
	case "sysDot":
		return fmt.Sprintf(` stroke-dasharray="%s %s"`, num(s.Width), num(s.Width))
	}
	return ""
}

// RoundedRect draws a w x h box with per-corner radii and a solid fill. A
// non-nil stroke is drawn inside the edge.
func RoundedRect(w, h float64, r style.Radii, fill style.Color, stroke *Stroke) []byte {
	d := newDoc(w, h)
	d.printf(`<path d="%s" %s/>`, RoundedPath(0, 0, w, h, r), paint("fill", fill))
	if stroke != nil && stroke.Width > 0 && stroke.Color.Visible() {
		half := stroke.Width / 2
		inner := style.Radii{
			TL: max(r.TL-half, 0), TR: max(r.TR-half, 0),
			BR: max(r.BR-half, 0), BL: max(r.BL-half, 0),
		}
		d.printf(`<path d="%s" fill="none" %s stroke-width="%s"%s/>`,
			RoundedPath(half, half, w-stroke.Width, h-stroke.Width, inner),
			paint("stroke", stroke.Color), num(stroke.Width), dashArray(*stroke))
	}
	return d.bytes()
}

// CompositeBorder draws each visible border side as a filled rectangle,
// clipped to the element's rounded outline. fill paints the box beneath the
// border; pass the zero Color for none.
func CompositeBorder(w, h float64, r style.Radii, sides [4]style.Side, fill style.Color) []byte {
	d := newDoc(w, h)
	outline := RoundedPath(0, 0, w, h, r)
	d.printf(`<defs><clipPath id="c"><path d="%s"/></clipPath></defs>`, outline)
	if fill.Visible() {
		d.printf(`<path d="%s" %s/>`, outline, paint("fill", fill))
	}
	d.printf(`<g clip-path="url(#c)">`)
	for i, s := range sides {
		if s.Width <= 0 || !s.Color.Visible() || s.Style == "none" || s.Style == "hidden" {
			continue
		}
		var x, y, rw, rh float64
		switch i {
		case style.Top:
			x, y, rw, rh = 0, 0, w, s.Width
		case style.Right:
			x, y, rw, rh = w-s.Width, 0, s.Width, h
		case style.Bottom:
			x, y, rw, rh = 0, h-s.Width, w, s.Width
		case style.Left:
			x, y, rw, rh = 0, 0, s.Width, h
		}
		d.printf(`<rect x="%s" y="%s" width="%s" height="%s" %s/>`, num(x), num(y), num(rw), num(rh), paint("fill", s.Color))
	}
	d.printf(`</g>`)
	return d.bytes()
}

// LinearGradient fills the rounded box with g.
func LinearGradient(w, h float64, r style.Radii, g style.Gradient) []byte {
	d := newDoc(w, h)
	x1, y1, x2, y2 := g.Vector()
	d.printf(`<defs><linearGradient id="g" x1="%s%%" y1="%s%%" x2="%s%%" y2="%s%%">`, num(x1), num(y1), num(x2), num(y2))
	for _, s := range g.Stops {
		color, opacity := "#000000", 0.0
		if s.Color.Visible() {
			color, opacity = s.Color.CSS(), s.Color.Alpha
		}
		d.printf(`<stop offset="%s%%" stop-color="%s" stop-opacity="%s"/>`, num(s.Offset*100), color, num(opacity))
	}
	d.printf(`</linearGradient></defs>`)
	d.printf(`<path d="%s" fill="url(#g)"/>`, RoundedPath(0, 0, w, h, r))
	return d.bytes()
}

// Blur draws a gaussian-blurred rounded box. The document is padded by three
// times the blur radius on every side so the blur is not clipped; the
// padding is returned so callers can grow the placement box by it.
func Blur(w, h float64, r style.Radii, fill style.Color, radius float64) ([]byte, float64) {
	pad := 3 * radius
	d := newDoc(w+2*pad, h+2*pad)
	d.printf(`<defs><filter id="b" filterUnits="userSpaceOnUse" x="0" y="0" width="%s" height="%s">`, num(d.w), num(d.h))
	d.printf(`<feGaussianBlur stdDeviation="%s"/></filter></defs>`, num(radius))
	d.printf(`<path d="%s" %s filter="url(#b)"/>`, RoundedPath(pad, pad, w, h, r), paint("fill", fill))
	return d.bytes(), pad
}
