package style

import (
	"math"

	"github.com/hazyhaar/domdeck/visual"
)

// Radii are the four corner radii of a box, in source pixels.
type Radii struct {
	TL, TR, BR, BL float64
}

// ParseRadii reads the corner radii of st for a box of size w x h. Elliptical
// radii keep their horizontal component; percentages resolve against w.
func ParseRadii(st *visual.Style, w, h float64) Radii {
	return Radii{
		TL: cornerPx(st.BorderTopLeftRadius, w),
		TR: cornerPx(st.BorderTopRightRadius, w),
		BR: cornerPx(st.BorderBottomRightRadius, w),
		BL: cornerPx(st.BorderBottomLeftRadius, w),
	}
}

func cornerPx(v string, w float64) float64 {
	comps := components(v)
	if len(comps) == 0 {
		return 0
	}
	n, unit, ok := comps[0].number()
	if !ok || n < 0 {
		return 0
	}
	switch unit {
	case "%":
		return n / 100 * w
	case "", "px":
		return n
	}
	return 0
}

// Zero reports whether no corner is rounded.
func (r Radii) Zero() bool {
	return r.TL <= 0 && r.TR <= 0 && r.BR <= 0 && r.BL <= 0
}

// Uniform reports whether all four corners share one radius.
func (r Radii) Uniform() bool {
	const eps = 0.01
	return math.Abs(r.TL-r.TR) < eps && math.Abs(r.TL-r.BR) < eps && math.Abs(r.TL-r.BL) < eps
}

// Max returns the largest corner radius.
func (r Radii) Max() float64 {
	return math.Max(math.Max(r.TL, r.TR), math.Max(r.BR, r.BL))
}

// Scale multiplies every corner by f.
func (r Radii) Scale(f float64) Radii {
	return Radii{r.TL * f, r.TR * f, r.BR * f, r.BL * f}
}

// Legalize applies the overlap rule from CSS Backgrounds §5.5: when adjacent
// radii on any side add up to more than that side's length, all radii are
// reduced by the same factor.
func (r Radii) Legalize(w, h float64) Radii {
	f := math.Min(
		math.Min(ratio(w, r.TL+r.TR), ratio(h, r.TR+r.BR)),
		math.Min(ratio(w, r.BR+r.BL), ratio(h, r.BL+r.TL)),
	)
	if f < 1 {
		return r.Scale(f)
	}
	return r
}

func ratio(side, sum float64) float64 {
	if sum <= 0 {
		return math.Inf(1)
	}
	return side / sum
}
