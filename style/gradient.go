package style

import (
	"math"
	"strings"

	"github.com/hazyhaar/domdeck/visual"
)

// Stop is a gradient color stop; Offset is in [0, 1].
type Stop struct {
	Color  Color
	Offset float64
}

// Gradient is a parsed CSS linear gradient. Angle follows CSS: 0 points up,
// 90 points right. Keyword is set when the direction used "to ..." syntax.
type Gradient struct {
	Angle   float64
	Keyword string
	Stops   []Stop
}

var keywordAngles = map[string]float64{
	"to top":          0,
	"to right":        90,
	"to bottom":       180,
	"to left":         270,
	"to top right":    45,
	"to bottom right": 135,
	"to bottom left":  225,
	"to top left":     315,
}

// keywordVectors are the SVG gradient vectors, in percent of the bounding
// box, for keyword directions.
var keywordVectors = map[string][4]float64{
	"to top":          {0, 100, 0, 0},
	"to right":        {0, 0, 100, 0},
	"to bottom":       {0, 0, 0, 100},
	"to left":         {100, 0, 0, 0},
	"to top right":    {0, 100, 100, 0},
	"to bottom right": {0, 0, 100, 100},
	"to bottom left":  {100, 0, 0, 100},
	"to top left":     {100, 100, 0, 0},
}

// ParseLinearGradient finds the first linear-gradient() layer of a
// background-image value. w and h size the box and are used to resolve stop
// positions given in pixels; pass 0 when unknown. Repeating and radial
// gradients are reported as unsupported.
func ParseLinearGradient(value string, w, h float64, probe visual.ColorProbe) (Gradient, bool) {
	if !strings.Contains(value, "linear-gradient") {
		return Gradient{}, false
	}
	for _, layer := range layers(value) {
		if len(layer) == 0 || !layer[0].isFunc("linear-gradient") {
			continue
		}
		return parseLinear(layer[0].args, w, h, probe)
	}
	return Gradient{}, false
}

func parseLinear(args [][]component, w, h float64, probe visual.ColorProbe) (Gradient, bool) {
	g := Gradient{Angle: 180, Keyword: "to bottom"}
	if len(args) == 0 {
		return g, false
	}
	first := args[0]
	if len(first) > 0 && first[0].isIdent("to") {
		words := []string{"to"}
		for _, c := range first[1:] {
			words = append(words, strings.ToLower(c.value))
		}
		kw := normalizeKeyword(words)
		angle, ok := keywordAngles[kw]
		if !ok {
			return g, false
		}
		g.Keyword, g.Angle = kw, angle
		args = args[1:]
	} else if len(first) == 1 {
		if a, ok := parseAngle(first[0]); ok {
			g.Keyword, g.Angle = "", a
			args = args[1:]
		}
	}

	length := gradientLength(g.Angle, w, h)
	type rawStop struct {
		color Color
		pos   float64
		set   bool
	}
	var raw []rawStop
	for _, arg := range args {
		if len(arg) == 0 {
			continue
		}
		if !looksLikeColor(arg[0]) {
			// interpolation hints and unknown syntax
			continue
		}
		col := colorFrom(arg[0], probe)
		var positions []float64
		for _, c := range arg[1:] {
			n, unit, ok := c.number()
			if !ok {
				continue
			}
			switch {
			case unit == "%":
				positions = append(positions, n/100)
			case (unit == "px" || unit == "") && length > 0:
				positions = append(positions, n/length)
			}
		}
		if len(positions) == 0 {
			raw = append(raw, rawStop{color: col})
		}
		for _, p := range positions {
			raw = append(raw, rawStop{color: col, pos: p, set: true})
		}
	}
	if len(raw) < 2 {
		return g, false
	}

	if !raw[0].set {
		raw[0].pos, raw[0].set = 0, true
	}
	last := len(raw) - 1
	if !raw[last].set {
		raw[last].pos, raw[last].set = 1, true
	}
	// Positions never go backwards.
	maxSoFar := raw[0].pos
	for i := range raw {
		if raw[i].set {
			if raw[i].pos < maxSoFar {
				raw[i].pos = maxSoFar
			}
			maxSoFar = raw[i].pos
		}
	}
	// Unset runs are spread evenly between their set neighbours.
	for i := 1; i < len(raw); i++ {
		if raw[i].set {
			continue
		}
		j := i
		for !raw[j].set {
			j++
		}
		start, end := raw[i-1].pos, raw[j].pos
		n := float64(j - i + 1)
		for k := i; k < j; k++ {
			raw[k].pos = start + (end-start)*float64(k-i+1)/n
			raw[k].set = true
		}
	}

	for _, r := range raw {
		g.Stops = append(g.Stops, Stop{Color: r.color, Offset: r.pos})
	}
	return g, true
}

func normalizeKeyword(words []string) string {
	if len(words) == 3 && (words[1] == "left" || words[1] == "right") {
		// "to right bottom" is the same direction as "to bottom right"
		words[1], words[2] = words[2], words[1]
	}
	return strings.Join(words, " ")
}

func parseAngle(c component) (float64, bool) {
	n, unit, ok := c.number()
	if !ok {
		return 0, false
	}
	switch unit {
	case "deg":
		return n, true
	case "rad":
		return n * 180 / math.Pi, true
	case "turn":
		return n * 360, true
	case "grad":
		return n * 0.9, true
	case "":
		if n == 0 {
			return 0, true
		}
	}
	return 0, false
}

// gradientLength is the length of the CSS gradient line for a w x h box.
func gradientLength(angle, w, h float64) float64 {
	rad := angle * math.Pi / 180
	return math.Abs(w*math.Sin(rad)) + math.Abs(h*math.Cos(rad))
}

// Vector returns the SVG gradient vector (x1, y1, x2, y2) in percent of the
// bounding box.
func (g Gradient) Vector() (x1, y1, x2, y2 float64) {
	if v, ok := keywordVectors[g.Keyword]; ok {
		return v[0], v[1], v[2], v[3]
	}
	rad := (g.Angle - 90) * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return round2(50 - 50*cos), round2(50 - 50*sin), round2(50 + 50*cos), round2(50 + 50*sin)
}

func round2(v float64) float64 {
	v = math.Round(v*100) / 100
	if v == 0 {
		return 0 // drop negative zero
	}
	return v
}
