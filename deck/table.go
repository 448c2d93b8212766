package deck

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/visual"
)

// table converts a table element into a native table. Media found inside
// cells is classified separately and stacked just above the table.
func (p *pass) table(v visit) bool {
	t := v.node
	var (
		rows [][]TableCell
		colW []float64
		rowH []float64
	)
	for _, tr := range tableRows(t) {
		var row []TableCell
		for _, td := range tr.Elements() {
			if !td.Is("td", "th") || td.Style.Hidden() {
				continue
			}
			cell := p.cell(v, t, tr, td)
			row = append(row, cell)
			if len(rows) == 0 {
				span := max(cell.Options.ColSpan, 1)
				w := p.layout.Len(td.Rect.W) / float64(span)
				for range span {
					colW = append(colW, w)
				}
			}
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
		rowH = append(rowH, p.layout.Len(tr.Rect.H))
	}
	if len(rows) > 0 {
		p.add(v, &Item{Kind: KindTable, Table: &TableCommand{
			Geometry: p.geometry(t),
			Rows:     rows,
			ColW:     colW,
			RowH:     rowH,
		}})
	}
	p.cellMedia(v)
	return true
}

// tableRows returns the rows of t in document order, excluding rows of
// nested tables.
func tableRows(t *visual.Node) []*visual.Node {
	var rows []*visual.Node
	for _, c := range t.Children {
		c.Walk(func(n *visual.Node) bool {
			if n.IsText() || n.Is("table") || pruned(n) {
				return false
			}
			if n.Is("tr") {
				rows = append(rows, n)
				return false
			}
			return true
		})
	}
	return rows
}

func (p *pass) cell(v visit, t, tr, td *visual.Node) TableCell {
	src := textSource(td)
	f := style.ResolveFont(&src.Style)
	c := style.TextColor(&src.Style, p.src).WithAlpha(v.opacity)
	pad := style.Padding(&td.Style)
	o := CellOptions{
		Color:     c.Hex,
		Font:      f.Face,
		Size:      p.layout.Pt(f.SizePx),
		Bold:      f.Bold || (td.Is("th") && td.Style.FontWeight == ""),
		Italic:    f.Italic,
		Underline: f.Underline,
		Align:     style.Align(&td.Style),
		VAlign:    style.VerticalAlign(&td.Style),
		ColSpan:   span(td.Attr("colspan")),
		RowSpan:   span(td.Attr("rowspan")),
	}
	for i := range pad {
		o.Margin[i] = p.layout.Pt(pad[i])
	}
	if fill := p.cellFill(v, t, td); fill.Visible() {
		o.Fill = &Fill{Color: fill.Hex, Transparency: fill.Transparency()}
	}
	cb := p.border(visit{node: td, opacity: v.opacity})
	rb := p.border(visit{node: tr, opacity: v.opacity})
	for i := range o.Border {
		if l, ok := p.sideLine(cb.Sides[i]); ok {
			o.Border[i] = l
		} else if l, ok := p.sideLine(rb.Sides[i]); ok {
			o.Border[i] = l
		}
	}
	return TableCell{Text: f.Apply(cellText(td)), Options: o}
}

// textSource prefers the style of an inner link or span that carries the
// cell's text, since it overrides the cell's own in the cascade.
func textSource(td *visual.Node) *visual.Node {
	var found *visual.Node
	td.Walk(func(n *visual.Node) bool {
		if found != nil {
			return false
		}
		if n != td && n.Is("a", "span") && strings.TrimSpace(nodeText(n)) != "" {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return td
	}
	return found
}

// cellFill returns the first visible background from the cell up to the
// table itself.
func (p *pass) cellFill(v visit, t, td *visual.Node) style.Color {
	for n := td; n != nil; n = n.Parent {
		if c := p.color(n.Style.BackgroundColor, v); c.Visible() {
			return c
		}
		if n == t {
			break
		}
	}
	return style.Color{}
}

func (p *pass) sideLine(s style.Side) (*style.Line, bool) {
	if s.Width <= 0 || s.Style == "" || s.Style == "none" || s.Style == "hidden" || !s.Color.Visible() {
		return nil, false
	}
	return &style.Line{
		Width:        p.layout.Pt(s.Width),
		Color:        s.Color.Hex,
		Transparency: s.Color.Transparency(),
		Dash:         style.DashType(s.Style),
	}, true
}

func span(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 1 {
		return 0
	}
	return n
}

// cellText flattens the visible text of a cell; br becomes a newline.
func cellText(td *visual.Node) string {
	lines := strings.Split(nodeText(td), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(collapse(l))
	}
	return strings.Join(lines, "\n")
}

func nodeText(n *visual.Node) string {
	var sb strings.Builder
	n.Walk(func(d *visual.Node) bool {
		switch {
		case d.IsText():
			sb.WriteString(d.Text)
		case d.Is("br"):
			sb.WriteByte('\n')
		case d != n && (d.Style.Hidden() || isMedia(d)):
			return false
		}
		return true
	})
	return sb.String()
}

// cellMedia classifies media nested in the table's cells. Their indexes
// fall between the table's own index and the next node's, so they draw
// above the table and below whatever follows it.
func (p *pass) cellMedia(v visit) {
	var found []*visual.Node
	for _, c := range v.node.Children {
		c.Walk(func(n *visual.Node) bool {
			if pruned(n) {
				return false
			}
			for _, r := range mediaRules {
				if r.match(p, visit{node: n}) {
					found = append(found, n)
					return false
				}
			}
			return true
		})
	}
	for k, n := range found {
		mv := visit{
			node:    n,
			stack:   v.stack,
			index:   v.index + float64(k+1)/float64(len(found)+1),
			opacity: v.opacity,
		}
		for _, r := range mediaRules {
			if r.match(p, mv) {
				r.apply(p, mv)
				break
			}
		}
	}
}
