package deck

import (
	"math"
	"strconv"
	"strings"

	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/visual"
)

// bulletChars cycle by nesting depth for unordered lists without an
// explicit marker type.
var bulletChars = []string{"•", "○", "■"}

var markerChars = map[string]string{
	"disc":   "•",
	"circle": "○",
	"square": "■",
}

var numberStyles = map[string]string{
	"decimal":     "arabicPeriod",
	"lower-alpha": "alphaLcPeriod",
	"lower-latin": "alphaLcPeriod",
	"upper-alpha": "alphaUcPeriod",
	"upper-latin": "alphaUcPeriod",
	"lower-roman": "romanLcPeriod",
	"upper-roman": "romanUcPeriod",
}

// list turns a simple ul/ol, nested lists included, into one text box with
// a bulleted paragraph per item.
func (p *pass) list(v visit) bool {
	n := v.node
	size := n.BoxSize()
	g := p.geometry(n)
	radii := style.ParseRadii(&n.Style, size.W, size.H)
	if sc, ok := p.shape(v, g, radii, p.color(n.Style.BackgroundColor, v), p.border(v), size.W, size.H); ok {
		p.add(v, &Item{Kind: KindShape, Shape: sc})
	}

	runs := p.listRuns(n, 0, v.opacity)
	if len(runs) == 0 {
		return true
	}
	runs[len(runs)-1].Options.Break = false
	margin := p.insets(n)
	margin[style.Left] = 0
	p.add(v, &Item{Kind: KindText, Text: &TextCommand{
		Geometry: g,
		Runs:     runs,
		Options: TextOptions{
			Align:  style.Align(&n.Style),
			VAlign: "top",
			Margin: margin,
			Wrap:   true,
		},
	}})
	return true
}

func isList(n *visual.Node) bool { return n.Is("ul", "ol") }

// listRuns collects the paragraphs of list and its nested lists. Every
// item ends with a break.
func (p *pass) listRuns(list *visual.Node, depth int, opacity float64) []TextRun {
	var out []TextRun
	number := 0
	for _, li := range list.Elements() {
		if !li.Is("li") || pruned(li) {
			continue
		}
		op := opacity * opacityOf(&li.Style)
		runs := p.collectRuns(li, op, isList)
		if len(runs) > 0 {
			first := p.paragraphOptions(li, runs[0].Options, true)
			first.IndentLevel = depth
			first.Bullet = p.bullet(list, li, depth, number, first)
			p.listSpacing(&first)
			runs[0].Options = first
			runs[len(runs)-1].Options.Break = true
			out = append(out, runs...)
			number++
		}
		for _, c := range li.Elements() {
			if isList(c) && !pruned(c) {
				out = append(out, p.listRuns(c, depth+1, op*opacityOf(&c.Style))...)
			}
		}
	}
	return out
}

func (p *pass) listSpacing(o *RunOptions) {
	if s := p.cfg.List.SpaceBefore; s > 0 {
		o.SpaceBefore = s
	}
	if s := p.cfg.List.SpaceAfter; s > 0 {
		o.SpaceAfter = s
	}
}

// bullet resolves the marker of one item. It returns nil for
// list-style-type none.
func (p *pass) bullet(list, li *visual.Node, depth, number int, run RunOptions) *Bullet {
	kind := li.Style.ListStyleType
	if kind == "" {
		kind = list.Style.ListStyleType
	}
	if kind == "none" {
		return nil
	}

	b := &Bullet{Type: "bullet"}
	if list.Is("ol") {
		b.Type = "number"
		b.NumberStyle = numberStyles[kind]
		if b.NumberStyle == "" {
			b.NumberStyle = "arabicPeriod"
		}
		if number == 0 {
			if s, err := strconv.Atoi(list.Attr("start")); err == nil && s != 1 {
				b.StartAt = s
			}
		}
	} else if c, ok := markerChars[kind]; ok {
		b.Char = c
	} else {
		b.Char = bulletChars[depth%len(bulletChars)]
	}

	switch {
	case p.cfg.List.BulletColor != "":
		b.Color = style.ParseColor("#"+strings.TrimPrefix(p.cfg.List.BulletColor, "#"), nil).Hex
	case li.Marker != nil:
		if c := style.TextColor(li.Marker, p.src); c.Visible() && c.Hex != run.Color {
			b.Color = c.Hex
		}
	}

	switch {
	case p.cfg.List.BulletSize > 0:
		b.Size = p.cfg.List.BulletSize
	case li.Marker != nil && li.Marker.FontSize != "":
		ratio := style.ResolveFont(li.Marker).SizePx / style.ResolveFont(&li.Style).SizePx
		if pct := int(math.Round(ratio * 100)); pct != 100 {
			b.Size = pct
		}
	}

	if p.cfg.List.Indent > 0 {
		b.Indent = p.cfg.List.Indent
	} else if d := li.Rect.X - list.Rect.X; d > 0 {
		b.Indent = p.layout.Pt(d)
	}
	return b
}
