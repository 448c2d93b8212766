package deck

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/visual"
)

// pass holds the state of one conversion. The walk is single-threaded;
// jobs queued here run only after it returns.
type pass struct {
	id     string
	cfg    *Config
	src    visual.Source
	layout Layout
	charts bool
	logger *slog.Logger
	index  int
	items  []*Item
	jobs   []Job
}

// visit is the context a node is classified in.
type visit struct {
	node    *visual.Node
	stack   int
	index   float64
	opacity float64 // accumulated from ancestors, in (0, 1]
}

func (p *pass) add(v visit, it *Item) *Item {
	it.Stack, it.Index, it.NodeID = v.stack, v.index, v.node.ID
	p.items = append(p.items, it)
	return it
}

func (p *pass) queue(it *Item, t Task) {
	p.jobs = append(p.jobs, Job{Item: it, Task: t})
}

// walk visits n and its subtree in pre-order.
func (p *pass) walk(n *visual.Node, stack int, opacity float64) {
	if pruned(n) {
		return
	}
	p.index++
	v := visit{node: n, stack: stack, index: float64(p.index), opacity: opacity}
	if !n.IsText() {
		if z, ok := zIndex(n.Style.ZIndex); ok {
			v.stack = z
		}
		v.opacity *= opacityOf(&n.Style)
	}
	if p.classify(v) {
		return
	}
	for _, c := range n.Children {
		p.walk(c, v.stack, v.opacity)
	}
}

// pruned reports whether n and its subtree are invisible.
func pruned(n *visual.Node) bool {
	if n.Rect.Empty() {
		return true
	}
	if n.IsText() {
		return strings.TrimSpace(n.Text) == ""
	}
	return n.Style.Hidden()
}

// zIndex parses an explicit integer z-index; "auto" and empty mean inherit.
func zIndex(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "auto" {
		return 0, false
	}
	z, err := strconv.Atoi(v)
	return z, err == nil
}

func opacityOf(st *visual.Style) float64 {
	if st.Opacity == "" {
		return 1
	}
	op, err := strconv.ParseFloat(strings.TrimSpace(st.Opacity), 64)
	if err != nil || op > 1 {
		return 1
	}
	return math.Max(op, 0)
}

// geometry places n on the page. Rotated elements keep their untransformed
// size, centred on their bounding box.
func (p *pass) geometry(n *visual.Node) Geometry {
	if n.IsText() {
		return p.layout.Rect(n.Rect)
	}
	rot := style.Rotation(n.Style.Transform)
	if rot == 0 {
		return p.layout.Rect(n.Rect)
	}
	size := n.BoxSize()
	cx, cy := n.Rect.X+n.Rect.W/2, n.Rect.Y+n.Rect.H/2
	g := p.layout.Rect(visual.Rect{X: cx - size.W/2, Y: cy - size.H/2, W: size.W, H: size.H})
	g.Rotate = rot
	return g
}

// expand grows g by pad source pixels on every side.
func (p *pass) expand(g Geometry, pad float64) Geometry {
	d := p.layout.Len(pad)
	g.X -= d
	g.Y -= d
	g.W += 2 * d
	g.H += 2 * d
	return g
}

// pixels returns the raster size for a source box at the configured
// oversampling.
func (p *pass) pixels(w, h float64) (int, int) {
	s := p.cfg.ImageScale
	return max(int(math.Round(w*s)), 1), max(int(math.Round(h*s)), 1)
}

func (p *pass) color(css string, v visit) style.Color {
	return style.ParseColor(css, p.src).WithAlpha(v.opacity)
}
