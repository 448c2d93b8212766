package visual

import "testing"

const sampleTree = `{
  "id": 1, "kind": "root", "tag": "div", "rect": {"x": 0, "y": 0, "w": 960, "h": 540},
  "style": {"display": "block"},
  "children": [
    {"id": 2, "kind": "table", "tag": "table", "rect": {"x": 10, "y": 10, "w": 200, "h": 40},
     "style": {"backgroundColor": "rgb(255, 0, 0)"},
     "children": [
       {"id": 3, "kind": "element", "tag": "tr", "rect": {"x": 10, "y": 10, "w": 200, "h": 40}, "style": {},
        "children": [
          {"id": 4, "kind": "element", "tag": "td", "rect": {"x": 10, "y": 10, "w": 100, "h": 40}, "style": {},
           "children": [{"id": 5, "kind": "text", "text": "cell", "rect": {"x": 12, "y": 12, "w": 20, "h": 10}, "style": {}}]}
        ]}
     ]}
  ]
}`

func TestDecodeLinksParents(t *testing.T) {
	root, err := Decode([]byte(sampleTree))
	if err != nil {
		t.Fatal(err)
	}
	table := root.Children[0]
	if table.Parent != root {
		t.Fatal("table parent not linked")
	}
	text := table.Children[0].Children[0].Children[0]
	if !text.IsText() || text.Text != "cell" {
		t.Fatalf("got %+v, want text node 'cell'", text)
	}
	if text.Parent.Tag != "td" {
		t.Fatalf("text parent = %q, want td", text.Parent.Tag)
	}
}

func TestClosestStopsAtBoundary(t *testing.T) {
	root, err := Decode([]byte(sampleTree))
	if err != nil {
		t.Fatal(err)
	}
	td := root.Children[0].Children[0].Children[0]

	isTable := func(n *Node) bool { return n.Is("table") }
	hasBg := func(n *Node) bool { return n.Style.BackgroundColor != "" }

	if got := td.Closest(hasBg, isTable); got == nil || got.ID != 2 {
		t.Fatalf("Closest(hasBg) = %v, want table", got)
	}
	isRoot := func(n *Node) bool { return n.Kind == KindRoot }
	if got := td.Closest(isRoot, isTable); got != nil {
		t.Fatalf("Closest crossed the stop node: got %d", got.ID)
	}
}

func TestStyleHidden(t *testing.T) {
	tests := []struct {
		style Style
		want  bool
	}{
		{Style{Display: "none"}, true},
		{Style{Visibility: "hidden"}, true},
		{Style{Opacity: "0"}, true},
		{Style{Opacity: "0.5"}, false},
		{Style{Display: "block", Visibility: "visible", Opacity: "1"}, false},
	}
	for _, tt := range tests {
		if got := tt.style.Hidden(); got != tt.want {
			t.Errorf("Hidden(%+v) = %v, want %v", tt.style, got, tt.want)
		}
	}
}

func TestAnyFindsDeepDescendant(t *testing.T) {
	root, err := Decode([]byte(sampleTree))
	if err != nil {
		t.Fatal(err)
	}
	if !root.Any(func(n *Node) bool { return n.IsText() }) {
		t.Fatal("expected a text descendant")
	}
	if root.Any(func(n *Node) bool { return n.Is("img") }) {
		t.Fatal("unexpected img descendant")
	}
}
