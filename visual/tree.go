package visual

import (
	"context"
	"errors"
	"image/color"
)

// ErrNoRenderer is returned by Tree.Capture: a detached tree has no
// rendering engine to snapshot from.
var ErrNoRenderer = errors.New("visual: no renderer attached")

// Tree is a Source over a tree captured earlier, e.g. loaded from JSON.
// Colors answers color probes; unknown colors stay unresolved.
type Tree struct {
	Node   *Node
	Colors map[string]color.NRGBA
}

func (t *Tree) Root() *Node { return t.Node }

func (t *Tree) ResolveColor(css string) (color.NRGBA, bool) {
	c, ok := t.Colors[css]
	return c, ok
}

func (t *Tree) Capture(context.Context, *Node) ([]byte, error) {
	return nil, ErrNoRenderer
}
