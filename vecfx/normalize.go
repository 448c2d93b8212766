package vecfx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	svgNS   = "http://www.w3.org/2000/svg"
	xlinkNS = "http://www.w3.org/1999/xlink"
)

// ErrNotSVG is returned when markup has no <svg> root element.
var ErrNotSVG = errors.New("vecfx: markup has no svg root")

// Normalize re-serialises the outer markup of an inline svg element as a
// standalone document: the svg namespace is declared, width and height are
// set to w x h pixels (the original size becomes the viewBox when none is
// given) and the currentColor keyword is replaced by the given color.
func Normalize(markup string, w, h float64, currentColor string) ([]byte, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 0
	seenRoot := false
	usesXlink := strings.Contains(markup, "xlink:")

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vecfx: normalize: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := flatten(t)
			for i, a := range el.Attr {
				if currentColor != "" && strings.Contains(a.Value, "currentColor") {
					el.Attr[i].Value = strings.ReplaceAll(a.Value, "currentColor", currentColor)
				}
			}
			if depth == 0 {
				if seenRoot {
					continue
				}
				if el.Name.Local != "svg" {
					return nil, ErrNotSVG
				}
				seenRoot = true
				el = sizeRoot(el, w, h, usesXlink)
			}
			depth++
			if err := enc.EncodeToken(el); err != nil {
				return nil, fmt.Errorf("vecfx: normalize: %w", err)
			}
		case xml.EndElement:
			if depth == 0 {
				continue
			}
			depth--
			if err := enc.EncodeToken(xml.EndElement{Name: flatName(t.Name)}); err != nil {
				return nil, fmt.Errorf("vecfx: normalize: %w", err)
			}
		case xml.CharData:
			if depth > 0 {
				if err := enc.EncodeToken(t.Copy()); err != nil {
					return nil, fmt.Errorf("vecfx: normalize: %w", err)
				}
			}
		}
	}
	if !seenRoot {
		return nil, ErrNotSVG
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("vecfx: normalize: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten keeps namespace prefixes as part of local names so the encoder
// writes them back verbatim instead of inventing namespace declarations.
func flatten(t xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: flatName(t.Name)}
	for _, a := range t.Attr {
		out.Attr = append(out.Attr, xml.Attr{Name: flatName(a.Name), Value: a.Value})
	}
	return out
}

func flatName(n xml.Name) xml.Name {
	if n.Space == "" {
		return xml.Name{Local: n.Local}
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

func sizeRoot(el xml.StartElement, w, h float64, xlink bool) xml.StartElement {
	var (
		attrs           []xml.Attr
		origW, origH    string
		hasNS, hasXlink bool
		hasViewBox      bool
	)
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "width":
			origW = a.Value
			continue
		case "height":
			origH = a.Value
			continue
		case "xmlns":
			hasNS = true
			a.Value = svgNS
		case "xmlns:xlink":
			hasXlink = true
		case "viewBox":
			hasViewBox = true
		}
		attrs = append(attrs, a)
	}
	if !hasNS {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: svgNS})
	}
	if xlink && !hasXlink {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns:xlink"}, Value: xlinkNS})
	}
	if !hasViewBox {
		vw, vh := lengthOr(origW, w), lengthOr(origH, h)
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "viewBox"}, Value: "0 0 " + num(vw) + " " + num(vh)})
	}
	attrs = append(attrs,
		xml.Attr{Name: xml.Name{Local: "width"}, Value: num(w)},
		xml.Attr{Name: xml.Name{Local: "height"}, Value: num(h)},
	)
	el.Attr = attrs
	return el
}

// lengthOr parses an absolute svg length attribute, falling back to def for
// percentages and missing values.
func lengthOr(v string, def float64) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	var n float64
	if _, err := fmt.Sscanf(v, "%g", &n); err != nil || n <= 0 || strings.HasSuffix(v, "%") {
		return def
	}
	return n
}
