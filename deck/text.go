package deck

import (
	"strings"
	"unicode"

	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/visual"
)

// isTextContainer reports whether n holds visible text and nothing but
// text and inline elements, so its whole content can become one text box.
func isTextContainer(n *visual.Node) bool {
	if n.IsText() || n.Is("svg", "canvas", "img", "table", "ul", "ol") {
		return false
	}
	hasText := false
	ok := true
	for _, c := range n.Children {
		if !inlineOnly(c, &hasText) {
			ok = false
			break
		}
	}
	return ok && hasText
}

func inlineOnly(n *visual.Node, hasText *bool) bool {
	if n.IsText() {
		if strings.TrimSpace(n.Text) != "" {
			*hasText = true
		}
		return true
	}
	if n.Style.Hidden() || n.Is("br") {
		return true
	}
	if !n.Style.Inline() || isMedia(n) {
		return false
	}
	for _, c := range n.Children {
		if !inlineOnly(c, hasText) {
			return false
		}
	}
	return true
}

// runOptions resolves the character formatting of text styled by el.
func (p *pass) runOptions(el *visual.Node, opacity float64) RunOptions {
	st := &el.Style
	f := style.ResolveFont(st)
	c := style.TextColor(st, p.src).WithAlpha(opacity)
	o := RunOptions{
		Font:         f.Face,
		Size:         p.layout.Pt(f.SizePx),
		Bold:         f.Bold,
		Italic:       f.Italic,
		Underline:    f.Underline,
		Strike:       f.Strike,
		Color:        c.Hex,
		Transparency: c.Transparency(),
		CharSpacing:  p.layout.Pt(f.LetterSpacing),
	}
	if el.Is("a") {
		o.Link = el.Attr("href")
	}
	return o
}

// paragraphOptions copies block-level formatting of el into o. Vertical
// margins become paragraph spacing only where the paragraph's box includes
// them (list items); a text box is already placed inside its margins.
func (p *pass) paragraphOptions(el *visual.Node, o RunOptions, spacing bool) RunOptions {
	o.Align = style.Align(&el.Style)
	o.LineHeight = p.layout.Pt(style.LineHeight(&el.Style))
	if spacing {
		sp := style.ParagraphSpacing(&el.Style)
		o.SpaceBefore = p.layout.Pt(sp.Before)
		o.SpaceAfter = p.layout.Pt(sp.After)
	}
	return o
}

// collectRuns flattens the inline content of el into runs. Inline children
// with their own background become highlighted runs; the container's own
// fill is painted by its shape and is never repeated as a highlight.
func (p *pass) collectRuns(el *visual.Node, opacity float64, skip func(*visual.Node) bool) []TextRun {
	var runs []TextRun
	var rec func(n *visual.Node, base RunOptions, ws string, font style.Font)
	rec = func(n *visual.Node, base RunOptions, ws string, font style.Font) {
		for _, c := range n.Children {
			if c.IsText() && c.Rect.Empty() || !c.IsText() && pruned(c) && !c.Is("br") {
				continue
			}
			if skip != nil && skip(c) {
				continue
			}
			switch {
			case c.IsText():
				for i, line := range splitPre(c.Text, ws) {
					if i > 0 {
						runs = markBreak(runs, base)
					}
					if line != "" {
						runs = append(runs, TextRun{Text: font.Apply(line), Options: base})
					}
				}
			case c.Is("br"):
				runs = markBreak(runs, base)
			default:
				o := p.runOptions(c, opacity)
				if bg := style.ParseColor(c.Style.BackgroundColor, p.src); bg.Visible() {
					o.Highlight = bg.Hex
				} else {
					o.Highlight = base.Highlight
				}
				if o.Link == "" {
					o.Link = base.Link
				}
				cws := c.Style.WhiteSpace
				if cws == "" {
					cws = ws
				}
				rec(c, o, cws, style.ResolveFont(&c.Style))
			}
		}
	}
	rec(el, p.runOptions(el, opacity), el.Style.WhiteSpace, style.ResolveFont(&el.Style))
	return trimRuns(runs, preserves(el.Style.WhiteSpace))
}

func markBreak(runs []TextRun, base RunOptions) []TextRun {
	if len(runs) == 0 || runs[len(runs)-1].Options.Break {
		o := base
		o.Break = true
		return append(runs, TextRun{Options: o})
	}
	runs[len(runs)-1].Options.Break = true
	return runs
}

func preserves(ws string) bool {
	switch ws {
	case "pre", "pre-wrap", "pre-line", "break-spaces":
		return true
	}
	return false
}

// splitPre collapses whitespace per the white-space mode and splits
// preserved newlines into separate lines.
func splitPre(s, ws string) []string {
	if !preserves(ws) {
		return []string{collapse(s)}
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if ws == "pre-line" {
		for i, l := range lines {
			lines[i] = collapse(l)
		}
	}
	return lines
}

func collapse(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) && r != '\u00a0' {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// trimRuns removes whitespace at paragraph edges, merges double spaces
// across run boundaries and drops runs left empty.
func trimRuns(runs []TextRun, keep bool) []TextRun {
	if keep {
		return runs
	}
	out := runs[:0]
	atStart := true
	for i, r := range runs {
		if atStart || (len(out) > 0 && strings.HasSuffix(out[len(out)-1].Text, " ")) {
			r.Text = strings.TrimLeft(r.Text, " ")
		}
		if r.Options.Break || i == len(runs)-1 {
			r.Text = strings.TrimRight(r.Text, " ")
		}
		if r.Text == "" && !r.Options.Break {
			continue
		}
		out = append(out, r)
		atStart = r.Options.Break
	}
	// trailing spaces before a break carried by an earlier run
	for i := range out {
		if i+1 < len(out) && out[i+1].Options.Break && out[i+1].Text == "" {
			out[i].Text = strings.TrimRight(out[i].Text, " ")
		}
	}
	return out
}

// textBox builds the text command for a container.
func (p *pass) textBox(v visit, g Geometry, runs []TextRun) *TextCommand {
	st := &v.node.Style
	for i := range runs {
		if i == 0 || runs[i-1].Options.Break {
			runs[i].Options = p.paragraphOptions(v.node, runs[i].Options, false)
		}
	}
	return &TextCommand{
		Geometry: g,
		Runs:     runs,
		Options: TextOptions{
			Align:  style.Align(st),
			VAlign: style.VerticalAlign(st),
			Margin: p.insets(v.node),
			Wrap:   st.WhiteSpace != "nowrap" && st.WhiteSpace != "pre",
		},
	}
}

// insets returns padding plus border width per side, in points.
func (p *pass) insets(n *visual.Node) [4]float64 {
	pad := style.Padding(&n.Style)
	b := style.ClassifyBorder(&n.Style, nil)
	var m [4]float64
	for i := range m {
		w := b.Sides[i].Width
		if s := b.Sides[i].Style; s == "none" || s == "hidden" {
			w = 0
		}
		m[i] = p.layout.Pt(pad[i] + w)
	}
	return m
}

// containerText emits the text of a text container; it reports whether any
// text was produced.
func (p *pass) containerText(v visit, g Geometry) bool {
	runs := p.collectRuns(v.node, v.opacity, nil)
	if len(runs) == 0 {
		return false
	}
	p.add(v, &Item{Kind: KindText, Text: p.textBox(v, g, runs)})
	return true
}

// bareText emits a text node that no container claimed, at its own
// measured extent, styled by its parent element.
func (p *pass) bareText(v visit) bool {
	n := v.node
	parent := n.Parent
	if parent == nil {
		return true
	}
	text := strings.TrimSpace(n.Text)
	if !preserves(parent.Style.WhiteSpace) {
		text = strings.TrimSpace(collapse(text))
	}
	if text == "" {
		return true
	}
	o := p.paragraphOptions(parent, p.runOptions(parent, v.opacity), false)
	font := style.ResolveFont(&parent.Style)
	p.add(v, &Item{Kind: KindText, Text: &TextCommand{
		Geometry: p.layout.Rect(n.Rect),
		Runs:     []TextRun{{Text: font.Apply(text), Options: o}},
		Options: TextOptions{
			Align:  style.Align(&parent.Style),
			VAlign: "top",
			Wrap:   true,
		},
	}})
	return true
}
