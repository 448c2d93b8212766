package style

import (
	"math"

	"github.com/hazyhaar/domdeck/visual"
)

// Shadow is a box shadow in polar form. Lengths are in source pixels; Angle
// is in degrees, clockwise from the positive x axis, in [0, 360).
type Shadow struct {
	Angle    float64
	Distance float64
	Blur     float64
	Spread   float64
	Color    Color
	Inset    bool
}

// ParseShadow reads a box-shadow value and returns its first visible layer.
// Later layers are ignored.
func ParseShadow(value string, probe visual.ColorProbe) (Shadow, bool) {
	if value == "" || value == "none" {
		return Shadow{}, false
	}
	for _, layer := range layers(value) {
		var (
			lengths []float64
			col     = Color{Hex: "000000", Alpha: 1}
			inset   bool
		)
		for _, c := range layer {
			switch {
			case c.isIdent("inset"):
				inset = true
			case c.numeric():
				n, unit, _ := c.number()
				if unit != "" && unit != "px" {
					continue
				}
				lengths = append(lengths, n)
			case looksLikeColor(c):
				col = colorFrom(c, probe)
			}
		}
		if len(lengths) < 2 || !col.Visible() {
			continue
		}
		s := Shadow{Color: col, Inset: inset}
		dx, dy := lengths[0], lengths[1]
		if len(lengths) > 2 {
			s.Blur = lengths[2]
		}
		if len(lengths) > 3 {
			s.Spread = lengths[3]
		}
		s.Distance, s.Angle = polar(dx, dy)
		return s, true
	}
	return Shadow{}, false
}

func polar(dx, dy float64) (distance, angle float64) {
	distance = math.Hypot(dx, dy)
	angle = math.Atan2(dy, dx) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return distance, angle
}
