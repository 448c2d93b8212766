package style

import (
	"math"
)

// BlurRadius extracts the radius of a blur() filter function in pixels, or 0.
func BlurRadius(filter string) float64 {
	if filter == "" || filter == "none" {
		return 0
	}
	for _, c := range components(filter) {
		if !c.isFunc("blur") || len(c.args) == 0 || len(c.args[0]) == 0 {
			continue
		}
		n, unit, ok := c.args[0][0].number()
		if !ok || (unit != "px" && unit != "") {
			return 0
		}
		return math.Max(n, 0)
	}
	return 0
}

// Rotation returns the rotation encoded by a computed transform in degrees,
// normalised to [0, 360). Engines report transforms as matrix() or
// matrix3d(); rotate() is accepted as well.
func Rotation(transform string) float64 {
	if transform == "" || transform == "none" {
		return 0
	}
	var deg float64
	for _, c := range components(transform) {
		switch {
		case c.isFunc("matrix", "matrix3d"):
			if len(c.args) < 2 {
				continue
			}
			a, _, okA := first(c.args[0]).number()
			b, _, okB := first(c.args[1]).number()
			if okA && okB {
				deg += math.Atan2(b, a) * 180 / math.Pi
			}
		case c.isFunc("rotate", "rotatez"):
			if len(c.args) > 0 {
				if a, ok := parseAngle(first(c.args[0])); ok {
					deg += a
				}
			}
		}
	}
	deg = math.Mod(math.Round(deg*100)/100, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func first(cs []component) component {
	if len(cs) == 0 {
		return component{}
	}
	return cs[0]
}
