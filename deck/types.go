package deck

import (
	"encoding/json"

	"github.com/hazyhaar/domdeck/style"
)

// ItemKind is the kind of draw command an Item becomes.
type ItemKind string

const (
	KindShape ItemKind = "shape"
	KindImage ItemKind = "image"
	KindText  ItemKind = "text"
	KindTable ItemKind = "table"
	KindChart ItemKind = "chart"
)

// Geometry places a command on the page. Lengths are inches, Rotate is
// degrees clockwise.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Rotate float64 `json:"rotate,omitempty"`
}

// Fill is a solid color fill. Transparency is 0-100.
type Fill struct {
	Color        string  `json:"color"`
	Transparency float64 `json:"transparency,omitempty"`
}

// Shadow is a shape shadow in target units (points, degrees).
type Shadow struct {
	Type    string  `json:"type"` // outer, inner
	Angle   float64 `json:"angle"`
	Blur    float64 `json:"blur"`
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// ShapeCommand draws a rectangle, rounded rectangle or ellipse.
type ShapeCommand struct {
	Type     string      `json:"type"` // rect, roundRect, ellipse
	Geometry Geometry    `json:"geometry"`
	Fill     *Fill       `json:"fill,omitempty"`
	Line     *style.Line `json:"line,omitempty"`
	Shadow   *Shadow     `json:"shadow,omitempty"`
	Radius   float64     `json:"radius,omitempty"` // points, roundRect only
}

// ImageCommand places an encoded image.
type ImageCommand struct {
	Geometry Geometry `json:"geometry"`
	Data     []byte   `json:"data"`
	MIME     string   `json:"mime"`
}

// Bullet is the list marker of a paragraph.
type Bullet struct {
	Type        string  `json:"type"`                  // bullet, number
	Char        string  `json:"char,omitempty"`        // bullet glyph
	NumberStyle string  `json:"numberStyle,omitempty"` // arabicPeriod, alphaLcPeriod, ...
	StartAt     int     `json:"startAt,omitempty"`
	Color       string  `json:"color,omitempty"`
	Size        int     `json:"size,omitempty"` // percent of text size
	Indent      float64 `json:"indent,omitempty"`
}

// RunOptions style one text run. Sizes are points. Paragraph-level fields
// (Align, Bullet, IndentLevel, spacing) are read from the first run of each
// paragraph.
type RunOptions struct {
	Font         string  `json:"font,omitempty"`
	Size         float64 `json:"size,omitempty"`
	Bold         bool    `json:"bold,omitempty"`
	Italic       bool    `json:"italic,omitempty"`
	Underline    bool    `json:"underline,omitempty"`
	Strike       bool    `json:"strike,omitempty"`
	Color        string  `json:"color,omitempty"`
	Transparency float64 `json:"transparency,omitempty"`
	CharSpacing  float64 `json:"charSpacing,omitempty"`
	Highlight    string  `json:"highlight,omitempty"`
	Link         string  `json:"link,omitempty"`

	Align       string  `json:"align,omitempty"`
	Bullet      *Bullet `json:"bullet,omitempty"`
	IndentLevel int     `json:"indentLevel,omitempty"`
	SpaceBefore float64 `json:"spaceBefore,omitempty"`
	SpaceAfter  float64 `json:"spaceAfter,omitempty"`
	LineHeight  float64 `json:"lineHeight,omitempty"`

	// Break ends the paragraph after this run.
	Break bool `json:"break,omitempty"`
}

// TextRun is a span of uniformly styled text.
type TextRun struct {
	Text    string     `json:"text"`
	Options RunOptions `json:"options"`
}

// TextOptions apply to a whole text box.
type TextOptions struct {
	Align  string     `json:"align,omitempty"`
	VAlign string     `json:"valign,omitempty"`
	Margin [4]float64 `json:"margin"` // points, top right bottom left
	Wrap   bool       `json:"wrap"`
}

// TextCommand draws a text box.
type TextCommand struct {
	Geometry Geometry    `json:"geometry"`
	Runs     []TextRun   `json:"runs"`
	Options  TextOptions `json:"options"`
}

// Paragraphs splits runs at breaks.
func Paragraphs(runs []TextRun) [][]TextRun {
	var out [][]TextRun
	var cur []TextRun
	for _, r := range runs {
		cur = append(cur, r)
		if r.Options.Break {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// CellOptions style one table cell.
type CellOptions struct {
	Fill      *Fill          `json:"fill,omitempty"`
	Color     string         `json:"color,omitempty"`
	Font      string         `json:"font,omitempty"`
	Size      float64        `json:"size,omitempty"`
	Bold      bool           `json:"bold,omitempty"`
	Italic    bool           `json:"italic,omitempty"`
	Underline bool           `json:"underline,omitempty"`
	Align     string         `json:"align,omitempty"`
	VAlign    string         `json:"valign,omitempty"`
	Margin    [4]float64     `json:"margin"`
	ColSpan   int            `json:"colspan,omitempty"`
	RowSpan   int            `json:"rowspan,omitempty"`
	Border    [4]*style.Line `json:"border"`
}

// TableCell is one cell of a table row.
type TableCell struct {
	Text    string      `json:"text"`
	Options CellOptions `json:"options"`
}

// TableCommand draws a native table. ColW and RowH are inches.
type TableCommand struct {
	Geometry Geometry      `json:"geometry"`
	Rows     [][]TableCell `json:"rows"`
	ColW     []float64     `json:"colW"`
	RowH     []float64     `json:"rowH"`
}

// ChartCommand hands a chart descriptor to a chart-capable builder.
type ChartCommand struct {
	Geometry   Geometry        `json:"geometry"`
	Descriptor json.RawMessage `json:"descriptor"`
}

// Item is one queued draw command. Items are ordered by (Stack, Index);
// Index is the traversal index of the node that produced the item and is
// fractional for items synthesised from a node's descendants.
type Item struct {
	Kind   ItemKind
	Stack  int
	Index  float64
	NodeID int

	Shape *ShapeCommand
	Image *ImageCommand
	Text  *TextCommand
	Table *TableCommand
	Chart *ChartCommand

	// Failed is set by a deferred job that could not produce data.
	Failed bool
}

// ready reports whether the item can be emitted.
func (it *Item) ready() bool {
	if it.Failed {
		return false
	}
	switch it.Kind {
	case KindShape:
		return it.Shape != nil
	case KindImage:
		return it.Image != nil && len(it.Image.Data) > 0
	case KindText:
		return it.Text != nil && len(it.Text.Runs) > 0
	case KindTable:
		return it.Table != nil && len(it.Table.Rows) > 0
	case KindChart:
		return it.Chart != nil
	}
	return false
}
