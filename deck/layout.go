package deck

import (
	"math"

	"github.com/hazyhaar/domdeck/visual"
)

// pxToIn converts CSS pixels to inches.
const pxToIn = 1.0 / 96

// Layout maps source pixels onto the page. It is computed once per pass
// from the root's box and fits the content inside the page with a single
// uniform scale, centred on both axes.
type Layout struct {
	OriginX, OriginY float64 // root position, px
	Scale            float64
	OffsetX, OffsetY float64 // inches
}

// NewLayout fits root into a pageW x pageH inch page.
func NewLayout(root visual.Rect, pageW, pageH float64) Layout {
	l := Layout{OriginX: root.X, OriginY: root.Y, Scale: 1}
	wIn, hIn := root.W*pxToIn, root.H*pxToIn
	if wIn > 0 && hIn > 0 {
		l.Scale = math.Min(pageW/wIn, pageH/hIn)
	}
	l.OffsetX = (pageW - wIn*l.Scale) / 2
	l.OffsetY = (pageH - hIn*l.Scale) / 2
	return l
}

// X converts a source x coordinate to inches from the page's left edge.
func (l Layout) X(px float64) float64 { return l.OffsetX + (px-l.OriginX)*pxToIn*l.Scale }

// Y converts a source y coordinate to inches from the page's top edge.
func (l Layout) Y(px float64) float64 { return l.OffsetY + (px-l.OriginY)*pxToIn*l.Scale }

// Len converts a source length to inches.
func (l Layout) Len(px float64) float64 { return px * pxToIn * l.Scale }

// Pt converts a source length to points (font sizes, line widths, margins).
func (l Layout) Pt(px float64) float64 { return round2(px * 0.75 * l.Scale) }

// Rect converts a source box to page geometry.
func (l Layout) Rect(r visual.Rect) Geometry {
	return Geometry{X: l.X(r.X), Y: l.Y(r.Y), W: l.Len(r.W), H: l.Len(r.H)}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
