package visual

import (
	"strconv"
	"strings"
)

// Style is a computed style record. Values are kept exactly as the rendering
// engine reports them (e.g. "rgb(0, 0, 0)", "12px", "none"); interpretation is
// the job of package style. JSON keys match the engine's property names.
type Style struct {
	Display    string `json:"display,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	Opacity    string `json:"opacity,omitempty"`
	Position   string `json:"position,omitempty"`
	ZIndex     string `json:"zIndex,omitempty"`
	Overflow   string `json:"overflow,omitempty"`
	Transform  string `json:"transform,omitempty"`
	Filter     string `json:"filter,omitempty"`

	Color                string `json:"color,omitempty"`
	BackgroundColor      string `json:"backgroundColor,omitempty"`
	BackgroundImage      string `json:"backgroundImage,omitempty"`
	BackgroundClip       string `json:"backgroundClip,omitempty"`
	WebkitBackgroundClip string `json:"webkitBackgroundClip,omitempty"`
	BoxShadow            string `json:"boxShadow,omitempty"`

	BorderTopWidth    string `json:"borderTopWidth,omitempty"`
	BorderTopStyle    string `json:"borderTopStyle,omitempty"`
	BorderTopColor    string `json:"borderTopColor,omitempty"`
	BorderRightWidth  string `json:"borderRightWidth,omitempty"`
	BorderRightStyle  string `json:"borderRightStyle,omitempty"`
	BorderRightColor  string `json:"borderRightColor,omitempty"`
	BorderBottomWidth string `json:"borderBottomWidth,omitempty"`
	BorderBottomStyle string `json:"borderBottomStyle,omitempty"`
	BorderBottomColor string `json:"borderBottomColor,omitempty"`
	BorderLeftWidth   string `json:"borderLeftWidth,omitempty"`
	BorderLeftStyle   string `json:"borderLeftStyle,omitempty"`
	BorderLeftColor   string `json:"borderLeftColor,omitempty"`

	BorderTopLeftRadius     string `json:"borderTopLeftRadius,omitempty"`
	BorderTopRightRadius    string `json:"borderTopRightRadius,omitempty"`
	BorderBottomRightRadius string `json:"borderBottomRightRadius,omitempty"`
	BorderBottomLeftRadius  string `json:"borderBottomLeftRadius,omitempty"`

	FontFamily         string `json:"fontFamily,omitempty"`
	FontSize           string `json:"fontSize,omitempty"`
	FontWeight         string `json:"fontWeight,omitempty"`
	FontStyle          string `json:"fontStyle,omitempty"`
	TextDecorationLine string `json:"textDecorationLine,omitempty"`
	TextTransform      string `json:"textTransform,omitempty"`
	LetterSpacing      string `json:"letterSpacing,omitempty"`
	LineHeight         string `json:"lineHeight,omitempty"`
	TextAlign          string `json:"textAlign,omitempty"`
	VerticalAlign      string `json:"verticalAlign,omitempty"`
	WhiteSpace         string `json:"whiteSpace,omitempty"`

	PaddingTop    string `json:"paddingTop,omitempty"`
	PaddingRight  string `json:"paddingRight,omitempty"`
	PaddingBottom string `json:"paddingBottom,omitempty"`
	PaddingLeft   string `json:"paddingLeft,omitempty"`
	MarginTop     string `json:"marginTop,omitempty"`
	MarginBottom  string `json:"marginBottom,omitempty"`

	AlignItems     string `json:"alignItems,omitempty"`
	JustifyContent string `json:"justifyContent,omitempty"`
	FlexDirection  string `json:"flexDirection,omitempty"`

	ListStyleType  string `json:"listStyleType,omitempty"`
	ObjectFit      string `json:"objectFit,omitempty"`
	ObjectPosition string `json:"objectPosition,omitempty"`
}

// Hidden reports whether the style removes the element from rendering:
// display none, visibility hidden/collapse, or zero opacity.
func (s *Style) Hidden() bool {
	if s.Display == "none" {
		return true
	}
	if s.Visibility == "hidden" || s.Visibility == "collapse" {
		return true
	}
	if s.Opacity != "" {
		if op, err := strconv.ParseFloat(strings.TrimSpace(s.Opacity), 64); err == nil && op <= 0 {
			return true
		}
	}
	return false
}

// Clips reports whether the element clips its overflow.
func (s *Style) Clips() bool {
	switch s.Overflow {
	case "", "visible":
		return false
	}
	return true
}

// FlexOrGrid reports whether the element lays out its children as a flex or
// grid container.
func (s *Style) FlexOrGrid() bool {
	switch s.Display {
	case "flex", "inline-flex", "grid", "inline-grid":
		return true
	}
	return false
}

// Inline reports whether the element participates in inline formatting.
func (s *Style) Inline() bool {
	return s.Display == "" || s.Display == "inline" || s.Display == "contents"
}
