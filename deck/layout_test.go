package deck

import (
	"math"
	"testing"

	"github.com/hazyhaar/domdeck/visual"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name              string
		root              visual.Rect
		scale, offX, offY float64
	}{
		{"exact fit", visual.Rect{W: 960, H: 540}, 1, 0, 0},
		{"double size", visual.Rect{W: 1920, H: 1080}, 0.5, 0, 0},
		{"square", visual.Rect{W: 960, H: 960}, 0.5625, 2.1875, 0},
		{"tall strip", visual.Rect{W: 480, H: 1080}, 0.5, 3.75, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout(tt.root, 10, 5.625)
			if !near(l.Scale, tt.scale) || !near(l.OffsetX, tt.offX) || !near(l.OffsetY, tt.offY) {
				t.Errorf("got scale=%v off=(%v,%v), want %v (%v,%v)", l.Scale, l.OffsetX, l.OffsetY, tt.scale, tt.offX, tt.offY)
			}
		})
	}
}

func TestLayoutConversions(t *testing.T) {
	l := NewLayout(visual.Rect{X: 100, Y: 50, W: 960, H: 540}, 10, 5.625)
	g := l.Rect(visual.Rect{X: 196, Y: 146, W: 96, H: 48})
	if !near(g.X, 1) || !near(g.Y, 1) || !near(g.W, 1) || !near(g.H, 0.5) {
		t.Errorf("Rect: got %+v", g)
	}
	if got := l.Pt(16); got != 12 {
		t.Errorf("Pt(16): got %v, want 12", got)
	}
	half := NewLayout(visual.Rect{W: 1920, H: 1080}, 10, 5.625)
	if got := half.Pt(13); got != 4.88 {
		t.Errorf("Pt(13) at half scale: got %v, want 4.88", got)
	}
}

func TestZIndex(t *testing.T) {
	tests := []struct {
		in string
		z  int
		ok bool
	}{
		{"", 0, false},
		{"auto", 0, false},
		{"5", 5, true},
		{"-1", -1, true},
		{"0", 0, true},
	}
	for _, tt := range tests {
		z, ok := zIndex(tt.in)
		if z != tt.z || ok != tt.ok {
			t.Errorf("zIndex(%q): got %d %v, want %d %v", tt.in, z, ok, tt.z, tt.ok)
		}
	}
}

func TestFinalizeOrder(t *testing.T) {
	shape := &ShapeCommand{}
	items := []*Item{
		{Kind: KindShape, Stack: 1, Index: 1, Shape: shape, NodeID: 1},
		{Kind: KindShape, Stack: 0, Index: 3, Shape: shape, NodeID: 2},
		{Kind: KindShape, Stack: 0, Index: 2.5, Shape: shape, NodeID: 3},
		{Kind: KindImage, Stack: 0, Index: 2, Image: &ImageCommand{}, NodeID: 4},
		{Kind: KindShape, Stack: -1, Index: 9, Shape: shape, NodeID: 5, Failed: true},
		{Kind: KindShape, Stack: 0, Index: 2.5, Shape: shape, NodeID: 6},
	}
	got := finalize(items)
	want := []int{3, 6, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].NodeID != id {
			t.Errorf("position %d: got node %d, want %d", i, got[i].NodeID, id)
		}
	}
}
