// Package visual holds the captured form of a rendered page: a tree of nodes,
// each with its resolved geometry and computed style, plus the interfaces the
// conversion pipeline uses to call back into the rendering engine.
//
// Nodes are produced by a rendering collaborator (see package capture) and are
// read-only afterwards. The pipeline never recomputes layout.
package visual

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"
)

// Kind classifies a captured node.
type Kind string

const (
	KindRoot    Kind = "root"
	KindElement Kind = "element"
	KindText    Kind = "text"
	KindTable   Kind = "table"
	KindList    Kind = "list"
	KindMedia   Kind = "media"
	KindIcon    Kind = "icon"
)

// Rect is an axis-aligned box in source pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the box has no visual extent.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Size is the untransformed layout size of an element. It differs from the
// bounding Rect only for transformed (e.g. rotated) elements.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Node is one captured element or text run.
type Node struct {
	ID      int               `json:"id"`
	Kind    Kind              `json:"kind"`
	Tag     string            `json:"tag,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Rect    Rect              `json:"rect"`
	Size    Size              `json:"size,omitzero"`
	Style   Style             `json:"style"`
	Marker  *Style            `json:"marker,omitempty"`
	Text    string            `json:"text,omitempty"`
	Markup  string            `json:"markup,omitempty"`
	Chart   json.RawMessage   `json:"chart,omitempty"`

	Children []*Node `json:"children,omitempty"`
	Parent   *Node   `json:"-"`
}

// IsText reports whether n is a text run rather than an element.
func (n *Node) IsText() bool { return n.Kind == KindText }

// Attr returns the named attribute or "".
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// HasClass reports whether the element carries the given class.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Is reports whether n is an element with one of the given tag names.
func (n *Node) Is(tags ...string) bool {
	if n.IsText() {
		return false
	}
	for _, t := range tags {
		if strings.EqualFold(n.Tag, t) {
			return true
		}
	}
	return false
}

// Elements returns the element children of n, skipping text runs.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// BoxSize returns the untransformed size, falling back to the bounding box.
func (n *Node) BoxSize() Size {
	if n.Size.W > 0 && n.Size.H > 0 {
		return n.Size
	}
	return Size{W: n.Rect.W, H: n.Rect.H}
}

// Closest walks up from n's parent and returns the first ancestor matching
// pred. The search ends without a match at the first ancestor for which stop
// returns true; a nil stop searches to the root.
func (n *Node) Closest(pred, stop func(*Node) bool) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if pred(p) {
			return p
		}
		if stop != nil && stop(p) {
			return nil
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Any reports whether some strict descendant of n satisfies pred.
func (n *Node) Any(pred func(*Node) bool) bool {
	found := false
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if found {
				return false
			}
			if pred(d) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// Link sets Parent pointers throughout the tree rooted at n.
func Link(n *Node) *Node {
	for _, c := range n.Children {
		c.Parent = n
		Link(c)
	}
	return n
}

// Decode parses a captured tree from its JSON form and links parents.
func Decode(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("visual: decode tree: %w", err)
	}
	return Link(&root), nil
}

// ColorProbe normalises arbitrary CSS color syntax by asking the rendering
// engine to paint it and reading the pixel back.
type ColorProbe interface {
	ResolveColor(css string) (color.NRGBA, bool)
}

// Capturer produces a PNG snapshot of a node's rendered subtree.
type Capturer interface {
	Capture(ctx context.Context, n *Node) ([]byte, error)
}

// Source is everything the pipeline needs from the rendering collaborator for
// one page.
type Source interface {
	Root() *Node
	ColorProbe
	Capturer
}
