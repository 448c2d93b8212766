package capture

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestShouldBlock(t *testing.T) {
	set := map[string]bool{"images": true, "fonts": true, "xhr": true}
	tests := []struct {
		resType string
		want    bool
	}{
		{"Image", true},
		{"Font", true},
		{"Stylesheet", false},
		{"Media", false},
		{"XHR", true},
		{"Document", false},
	}
	for _, tt := range tests {
		if got := shouldBlock(set, tt.resType); got != tt.want {
			t.Errorf("shouldBlock(%q): got %v, want %v", tt.resType, got, tt.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.ViewportWidth != 1280 || c.ViewportHeight != 720 {
		t.Errorf("viewport: got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.DeviceScale != 2 || c.Selector != "body" || c.NavTimeout != 30*time.Second {
		t.Errorf("defaults: %+v", c)
	}
	if c.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestClosedManager(t *testing.T) {
	m := NewManager(Config{})
	m.Close()
	if _, err := m.Open(context.Background(), "about:blank"); err == nil {
		t.Fatal("expected error from closed manager")
	}
}

// fakeLaunch replaces Chrome with generations that have no process.
func fakeLaunch(m *Manager) *atomic.Int32 {
	var n atomic.Int32
	m.launchFn = func(context.Context) (*generation, error) {
		n.Add(1)
		return newGeneration(nil, nil), nil
	}
	return &n
}

func TestRecycleDoesNotWaitForOpenTabs(t *testing.T) {
	m := NewManager(Config{RecycleInterval: time.Millisecond})
	launches := fakeLaunch(m)
	defer m.Close()

	old, err := m.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	got := make(chan *generation, 1)
	go func() {
		g, err := m.acquire(context.Background())
		if err != nil {
			t.Error(err)
		}
		got <- g
	}()
	var cur *generation
	select {
	case cur = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("acquire blocked on a tab of the stale process")
	}
	if cur == old || launches.Load() != 2 {
		t.Fatalf("expected a fresh process, launches=%d", launches.Load())
	}

	select {
	case <-old.done:
		t.Fatal("stale process closed while a tab was open")
	default:
	}
	old.pages.Done()
	select {
	case <-old.done:
	case <-time.After(2 * time.Second):
		t.Fatal("stale process not closed after its last tab")
	}
	cur.pages.Done()
}

func TestCloseStopsRetiredProcesses(t *testing.T) {
	m := NewManager(Config{RecycleInterval: time.Millisecond})
	fakeLaunch(m)

	old, err := m.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	cur, err := m.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	m.Close()
	for i, g := range []*generation{old, cur} {
		select {
		case <-g.done:
		default:
			t.Errorf("generation %d still running after Close", i)
		}
	}
	old.pages.Done()
	cur.pages.Done()
}

const testPage = `<!doctype html><html><body style="margin:0">
<div id="slide" style="width:960px;height:540px;background:#102030">
  <h1 style="color:rebeccapurple;font-size:32px">Title <b>bold</b></h1>
  <ul><li>one</li><li>two</li></ul>
  <svg width="20" height="20"><rect width="20" height="20" fill="currentColor"/></svg>
</div></body></html>`

// TestSnapshot needs a local Chrome; set DOMDECK_CHROME=1 to run it.
func TestSnapshot(t *testing.T) {
	if os.Getenv("DOMDECK_CHROME") == "" {
		t.Skip("set DOMDECK_CHROME=1 to run browser tests")
	}
	m := NewManager(Config{Stealth: LevelPlain})
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	p, err := m.OpenHTML(ctx, testPage)
	if err != nil {
		t.Fatalf("OpenHTML: %v", err)
	}
	defer p.Close()

	root, err := p.Snapshot(ctx, "#slide")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if root.Kind != "root" || root.Rect.W != 960 || root.Rect.H != 540 {
		t.Errorf("root: kind=%s rect=%+v", root.Kind, root.Rect)
	}
	if len(root.Elements()) != 3 {
		t.Fatalf("elements: got %d, want 3", len(root.Elements()))
	}
	svg := root.Elements()[2]
	if svg.Markup == "" {
		t.Error("svg markup not captured")
	}

	c, ok := p.ResolveColor("rebeccapurple")
	if !ok || c.R != 0x66 || c.G != 0x33 || c.B != 0x99 || c.A != 255 {
		t.Errorf("ResolveColor: got %v ok=%v", c, ok)
	}

	data, err := p.Capture(ctx, svg)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("Capture did not return a PNG")
	}

	// The heading paints only its glyphs; the slide background behind it
	// must not end up in the capture.
	h1 := root.Elements()[0]
	data, err = p.Capture(ctx, h1)
	if err != nil {
		t.Fatalf("Capture h1: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if _, _, _, a := img.At(b.Max.X-1, b.Max.Y-1).RGBA(); a != 0 {
		t.Errorf("corner pixel alpha %d, want transparent", a)
	}

	// The page is restored after a capture.
	res, err := p.page.Eval(`() => document.getElementById('slide').style.visibility`)
	if err != nil {
		t.Fatal(err)
	}
	if v := res.Value.Str(); v != "" {
		t.Errorf("slide visibility left as %q", v)
	}
}
