package deck

import (
	"math"
	"strings"

	"github.com/hazyhaar/domdeck/media"
	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/vecfx"
	"github.com/hazyhaar/domdeck/visual"
)

// rule is one step of the classifier cascade. apply reports whether the
// node's subtree has been consumed.
type rule struct {
	name  string
	match func(p *pass, v visit) bool
	apply func(p *pass, v visit) bool
}

// mediaRules handle nodes that need deferred work. Tables reuse them for
// media found inside cells.
var mediaRules = []rule{
	{"canvas", func(_ *pass, v visit) bool { return v.node.Is("canvas") }, (*pass).canvas},
	{"svg", func(_ *pass, v visit) bool { return v.node.Is("svg") }, (*pass).svg},
	{"img", func(_ *pass, v visit) bool { return v.node.Is("img") }, (*pass).img},
	{"icon", func(_ *pass, v visit) bool { return isIcon(v.node) }, (*pass).capture},
}

// rules is the full cascade; the first match wins.
var rules = concat(
	[]rule{
		{"table", func(_ *pass, v visit) bool { return v.node.Kind == visual.KindTable || v.node.Is("table") }, (*pass).table},
		{"list", func(_ *pass, v visit) bool { return v.node.Is("ul", "ol") && !complexList(v.node) }, (*pass).list},
	},
	mediaRules,
	[]rule{
		{"rounded-leaf", (*pass).isRoundedLeaf, (*pass).roundedLeaf},
		{"clipped-leaf", (*pass).isClippedLeaf, (*pass).capture},
		{"generic", func(_ *pass, v visit) bool { return !v.node.IsText() }, (*pass).generic},
		{"text", func(_ *pass, v visit) bool { return v.node.IsText() }, (*pass).bareText},
	},
)

func concat(groups ...[]rule) []rule {
	var out []rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// classify runs the cascade for one node and reports whether recursion
// should stop.
func (p *pass) classify(v visit) bool {
	for _, r := range rules {
		if r.match(p, v) {
			return r.apply(p, v)
		}
	}
	return false
}

var iconTags = []string{"ion-icon", "iconify-icon", "lucide-icon"}

// isIcon reports whether n is an icon-font glyph or a custom icon element.
func isIcon(n *visual.Node) bool {
	if n.IsText() {
		return false
	}
	if n.Kind == visual.KindIcon || n.Is(iconTags...) {
		return true
	}
	if !n.Is("i", "span") {
		return false
	}
	for _, c := range n.Classes {
		switch {
		case c == "fa", c == "fas", c == "far", c == "fab", c == "bi", c == "glyphicon", c == "icon", c == "ti":
			return true
		case strings.HasPrefix(c, "fa-"), strings.HasPrefix(c, "bi-"), strings.HasPrefix(c, "ti-"),
			strings.HasPrefix(c, "material-icons"), strings.HasPrefix(c, "material-symbols-"):
			return true
		}
	}
	return false
}

func isMedia(n *visual.Node) bool {
	return n.Kind == visual.KindMedia || n.Is("img", "svg", "canvas", "video", "picture") || isIcon(n)
}

// complexList reports whether a list must be handled element by element:
// some item is a flex or grid container, or the list holds media.
func complexList(n *visual.Node) bool {
	return n.Any(func(d *visual.Node) bool {
		return (d.Is("li") && d.Style.FlexOrGrid()) || isMedia(d)
	})
}

// leaf reports whether n has neither element children nor text.
func leaf(n *visual.Node) bool {
	for _, c := range n.Children {
		if !c.IsText() || strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}

func (p *pass) imageItem(v visit, g Geometry) *Item {
	return p.add(v, &Item{Kind: KindImage, Image: &ImageCommand{Geometry: g}})
}

func (p *pass) svgItem(v visit, g Geometry, doc []byte) {
	p.add(v, &Item{Kind: KindImage, Image: &ImageCommand{Geometry: g, Data: doc, MIME: vecfx.MIME}})
}

// capture queues a snapshot of the node's rendered subtree.
func (p *pass) capture(v visit) bool {
	it := p.imageItem(v, p.geometry(v.node))
	p.queue(it, captureTask{capturer: p.src, node: v.node})
	return true
}

func (p *pass) canvas(v visit) bool {
	if len(v.node.Chart) > 0 && p.charts {
		p.add(v, &Item{Kind: KindChart, Chart: &ChartCommand{Geometry: p.geometry(v.node), Descriptor: v.node.Chart}})
		return true
	}
	return p.capture(v)
}

func (p *pass) svg(v visit) bool {
	n := v.node
	size := n.BoxSize()
	pw, ph := p.pixels(size.W, size.H)
	it := p.imageItem(v, p.geometry(n))
	p.queue(it, vectorTask{
		markup:       n.Markup,
		w:            size.W,
		h:            size.H,
		currentColor: style.TextColor(&n.Style, p.src).CSS(),
		vector:       p.cfg.SVGAsVector,
		pw:           pw,
		ph:           ph,
	})
	return true
}

func (p *pass) img(v visit) bool {
	n := v.node
	src := n.Attr("currentSrc")
	if src == "" {
		src = n.Attr("src")
	}
	if src == "" {
		return true
	}
	size := n.BoxSize()
	radii := style.ParseRadii(&n.Style, size.W, size.H)
	if radii.Zero() {
		radii = inheritedRadii(n, size)
	}
	pw, ph := p.pixels(size.W, size.H)
	it := p.imageItem(v, p.geometry(n))
	p.queue(it, imageTask{
		fetcher: p.cfg.Fetcher,
		src:     src,
		placement: media.Placement{
			W:        pw,
			H:        ph,
			Scale:    p.cfg.ImageScale,
			Fit:      n.Style.ObjectFit,
			Position: n.Style.ObjectPosition,
			Radii:    radii.Scale(p.cfg.ImageScale),
		},
	})
	return true
}

// inheritedRadii finds the nearest clipping ancestor with rounded corners
// and a box within a pixel of the image's own.
func inheritedRadii(n *visual.Node, size visual.Size) style.Radii {
	var radii style.Radii
	n.Closest(func(a *visual.Node) bool {
		if !a.Style.Clips() {
			return false
		}
		as := a.BoxSize()
		r := style.ParseRadii(&a.Style, as.W, as.H)
		if r.Zero() || math.Abs(as.W-size.W) > 1 || math.Abs(as.H-size.H) > 1 {
			return false
		}
		radii = r
		return true
	}, nil)
	return radii
}

func nonUniform(r style.Radii) bool { return !r.Zero() && !r.Uniform() }

func (p *pass) isRoundedLeaf(v visit) bool {
	n := v.node
	if n.IsText() || !leaf(n) {
		return false
	}
	size := n.BoxSize()
	if !nonUniform(style.ParseRadii(&n.Style, size.W, size.H)) {
		return false
	}
	if _, ok := style.ParseLinearGradient(n.Style.BackgroundImage, size.W, size.H, p.src); ok {
		return false
	}
	return p.color(n.Style.BackgroundColor, v).Visible()
}

// roundedLeaf draws a partially rounded box as SVG, with a uniform border
// stroked inside its edge.
func (p *pass) roundedLeaf(v visit) bool {
	n := v.node
	size := n.BoxSize()
	radii := style.ParseRadii(&n.Style, size.W, size.H)
	fill := p.color(n.Style.BackgroundColor, v)
	border := p.border(v)

	var doc []byte
	switch border.Kind {
	case style.BorderComposite:
		doc = vecfx.CompositeBorder(size.W, size.H, radii, border.Sides, fill)
	case style.BorderUniform:
		s := border.Sides[style.Top]
		doc = vecfx.RoundedRect(size.W, size.H, radii, fill, &vecfx.Stroke{Width: s.Width, Color: s.Color, Dash: style.DashType(s.Style)})
	default:
		doc = vecfx.RoundedRect(size.W, size.H, radii, fill, nil)
	}
	p.svgItem(v, p.geometry(n), doc)
	return true
}

// isClippedLeaf matches empty painted boxes whose corners are cut by a
// rounded ancestor that clips its overflow.
func (p *pass) isClippedLeaf(v visit) bool {
	n := v.node
	if n.IsText() || !leaf(n) || n.Is("br", "hr") {
		return false
	}
	size := n.BoxSize()
	_, grad := style.ParseLinearGradient(n.Style.BackgroundImage, size.W, size.H, p.src)
	if !grad && !p.color(n.Style.BackgroundColor, v).Visible() {
		return false
	}
	return clippedCorner(n)
}

func clippedCorner(n *visual.Node) bool {
	hit := false
	n.Closest(func(a *visual.Node) bool {
		if !a.Style.Clips() {
			return false
		}
		as := a.BoxSize()
		r := style.ParseRadii(&a.Style, as.W, as.H).Legalize(as.W, as.H)
		if r.Zero() {
			return false
		}
		ar, nr := a.Rect, n.Rect
		left, top := nr.X < ar.X+math.Max(r.TL, r.BL), nr.Y < ar.Y+math.Max(r.TL, r.TR)
		right, bottom := nr.X+nr.W > ar.X+ar.W-math.Max(r.TR, r.BR), nr.Y+nr.H > ar.Y+ar.H-math.Max(r.BL, r.BR)
		hit = (r.TL > 0 && left && top) || (r.TR > 0 && right && top) ||
			(r.BR > 0 && right && bottom) || (r.BL > 0 && left && bottom)
		return true
	}, nil)
	return hit
}

// border classifies the node's border with the accumulated opacity applied.
func (p *pass) border(v visit) style.Border {
	b := style.ClassifyBorder(&v.node.Style, p.src)
	for i := range b.Sides {
		b.Sides[i].Color = b.Sides[i].Color.WithAlpha(v.opacity)
	}
	return b
}
