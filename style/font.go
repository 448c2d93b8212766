package style

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hazyhaar/domdeck/visual"
)

// Font is the resolved typography of one text run. Sizes are source pixels.
type Font struct {
	Face          string
	SizePx        float64
	Bold          bool
	Italic        bool
	Underline     bool
	Strike        bool
	LetterSpacing float64
	Transform     string
}

// ResolveFont reads the typography properties of st.
func ResolveFont(st *visual.Style) Font {
	f := Font{
		Face:          FontFace(st.FontFamily),
		SizePx:        Px(st.FontSize),
		Bold:          Bold(st.FontWeight),
		Italic:        st.FontStyle == "italic" || strings.HasPrefix(st.FontStyle, "oblique"),
		Underline:     strings.Contains(st.TextDecorationLine, "underline"),
		Strike:        strings.Contains(st.TextDecorationLine, "line-through"),
		LetterSpacing: Px(st.LetterSpacing),
		Transform:     st.TextTransform,
	}
	if f.SizePx <= 0 {
		f.SizePx = 16
	}
	return f
}

// FontFace returns the first family of a font stack without quotes.
func FontFace(family string) string {
	face, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(face), `"'`)
}

// Bold reports whether a computed font-weight renders as bold.
func Bold(weight string) bool {
	switch weight {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(strings.TrimSpace(weight))
	return err == nil && n >= 600
}

// Apply performs the text-transform of f on s.
func (f Font) Apply(s string) string {
	switch f.Transform {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	case "capitalize":
		prev := ' '
		return strings.Map(func(r rune) rune {
			out := r
			if unicode.IsSpace(prev) || prev == '-' {
				out = unicode.ToTitle(r)
			}
			prev = r
			return out
		}, s)
	}
	return s
}

// Align maps text-align onto left, center, right or justify.
func Align(st *visual.Style) string {
	switch st.TextAlign {
	case "center", "-webkit-center":
		return "center"
	case "right", "end", "-webkit-right":
		return "right"
	case "justify":
		return "justify"
	}
	return "left"
}

// VerticalAlign infers how content sits vertically inside its box: top,
// middle or bottom. Flex and grid containers use their alignment properties;
// table cells use vertical-align.
func VerticalAlign(st *visual.Style) string {
	prop := ""
	switch {
	case st.FlexOrGrid():
		prop = st.AlignItems
		isFlex := st.Display == "flex" || st.Display == "inline-flex"
		if isFlex && strings.HasPrefix(st.FlexDirection, "column") {
			prop = st.JustifyContent
		}
	case st.Display == "table-cell":
		switch st.VerticalAlign {
		case "middle":
			return "middle"
		case "bottom":
			return "bottom"
		}
		return "top"
	}
	switch prop {
	case "center":
		return "middle"
	case "flex-end", "end":
		return "bottom"
	}
	return "top"
}

// Box holds per-side pixel lengths, clockwise from the top.
type Box [4]float64

// Padding returns the element's padding.
func Padding(st *visual.Style) Box {
	return Box{Px(st.PaddingTop), Px(st.PaddingRight), Px(st.PaddingBottom), Px(st.PaddingLeft)}
}

// Spacing is the space before and after a paragraph in pixels.
type Spacing struct {
	Before, After float64
}

// ParagraphSpacing derives paragraph spacing from vertical margins.
func ParagraphSpacing(st *visual.Style) Spacing {
	return Spacing{Before: max(Px(st.MarginTop), 0), After: max(Px(st.MarginBottom), 0)}
}

// LineHeight returns an explicit line height in pixels, or 0 for "normal".
func LineHeight(st *visual.Style) float64 {
	return Px(st.LineHeight)
}
