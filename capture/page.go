package capture

import (
	"context"
	_ "embed"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/domdeck/visual"
)

//go:embed snapshot.js
var snapshotJS string

//go:embed isolate.js
var isolateJS string

const restoreJS = `() => {
	const saved = window.__domdeckRestore || [];
	for (let i = saved.length - 1; i >= 0; i--) {
		const [el, prop, value, priority] = saved[i];
		if (value) el.style.setProperty(prop, value, priority);
		else el.style.removeProperty(prop);
	}
	window.__domdeckRestore = null;
}`

const probeJS = `(css) => {
	const c = document.createElement('canvas');
	c.width = c.height = 1;
	const x = c.getContext('2d', { willReadFrequently: true });
	x.fillStyle = 'rgba(0, 0, 0, 0)';
	x.fillStyle = css;
	x.fillRect(0, 0, 1, 1);
	return Array.from(x.getImageData(0, 0, 1, 1).data);
}`

// Page is one rendered page. After Snapshot it satisfies visual.Source.
type Page struct {
	mgr    *Manager
	gen    *generation
	page   *rod.Page
	router *rod.HijackRouter
	root   *visual.Node

	// shots serialises screenshots; the probe cache has its own lock.
	shots  sync.Mutex
	mu     sync.Mutex
	colors map[string]probed
}

type probed struct {
	c  color.NRGBA
	ok bool
}

var _ visual.Source = (*Page)(nil)

// Open navigates a new tab to pageURL and waits for load and web fonts.
func (m *Manager) Open(ctx context.Context, pageURL string) (*Page, error) {
	p, err := m.newPage(ctx)
	if err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	if err := p.page.Context(navCtx).Navigate(pageURL); err != nil {
		p.Close()
		return nil, fmt.Errorf("capture: navigate %s: %w", pageURL, err)
	}
	p.settle(navCtx, pageURL)
	return p, nil
}

// OpenHTML loads an HTML document into a new tab.
func (m *Manager) OpenHTML(ctx context.Context, html string) (*Page, error) {
	p, err := m.newPage(ctx)
	if err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	if err := p.page.Context(navCtx).SetDocumentContent(html); err != nil {
		p.Close()
		return nil, fmt.Errorf("capture: set content: %w", err)
	}
	p.settle(navCtx, "about:blank")
	return p, nil
}

func (m *Manager) newPage(ctx context.Context) (*Page, error) {
	g, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	var page *rod.Page
	if m.cfg.Stealth >= LevelHeadless {
		page, err = stealth.Page(g.browser)
	} else {
		page, err = g.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		g.pages.Done()
		return nil, fmt.Errorf("capture: create tab: %w", err)
	}

	p := &Page{mgr: m, gen: g, page: page, colors: make(map[string]probed)}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: m.cfg.DeviceScale,
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("capture: viewport: %w", err)
	}
	transparent := 0.0
	err = proto.EmulationSetDefaultBackgroundColorOverride{Color: &proto.DOMRGBA{A: &transparent}}.Call(page)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("capture: background: %w", err)
	}
	if len(m.cfg.ResourceBlocking) > 0 {
		p.router = blockResources(page, m.cfg.ResourceBlocking)
	}
	return p, nil
}

func (p *Page) settle(ctx context.Context, pageURL string) {
	log := p.mgr.cfg.Logger
	pg := p.page.Context(ctx)
	if err := pg.WaitLoad(); err != nil {
		log.Warn("capture: wait load timeout", "url", pageURL, "error", err)
	}
	if _, err := pg.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		log.Debug("capture: fonts not ready", "url", pageURL, "error", err)
	}
}

// Snapshot walks the rendered tree under selector ("" for the configured
// default) and stores it as the page root.
func (p *Page) Snapshot(ctx context.Context, selector string) (*visual.Node, error) {
	if selector == "" {
		selector = p.mgr.cfg.Selector
	}
	start := time.Now()
	res, err := p.page.Context(ctx).Eval(snapshotJS, selector)
	if err != nil {
		return nil, fmt.Errorf("capture: snapshot: %w", err)
	}
	root, err := visual.Decode([]byte(res.Value.Str()))
	if err != nil {
		return nil, fmt.Errorf("capture: snapshot: %w", err)
	}
	p.root = root
	p.mgr.cfg.Logger.Debug("capture: snapshot", "selector", selector, "duration", time.Since(start))
	return root, nil
}

// Root returns the tree captured by the last Snapshot.
func (p *Page) Root() *visual.Node { return p.root }

// ResolveColor paints css onto a 1x1 canvas and reads the pixel back.
// Results are memoised per page.
func (p *Page) ResolveColor(css string) (color.NRGBA, bool) {
	p.mu.Lock()
	if r, ok := p.colors[css]; ok {
		p.mu.Unlock()
		return r.c, r.ok
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var r probed
	res, err := p.page.Context(ctx).Eval(probeJS, css)
	if err == nil {
		if px := res.Value.Arr(); len(px) == 4 {
			r = probed{c: color.NRGBA{
				R: uint8(px[0].Int()), G: uint8(px[1].Int()), B: uint8(px[2].Int()), A: uint8(px[3].Int()),
			}, ok: true}
		}
	} else {
		p.mgr.cfg.Logger.Debug("capture: color probe", "css", css, "error", err)
	}

	p.mu.Lock()
	p.colors[css] = r
	p.mu.Unlock()
	return r.c, r.ok
}

// Capture screenshots the area of n at the configured device scale with
// everything outside n's subtree hidden, so the PNG holds only the pixels n
// and its descendants paint. Clipping by ancestors still applies.
func (p *Page) Capture(ctx context.Context, n *visual.Node) ([]byte, error) {
	if n.Rect.Empty() {
		return nil, fmt.Errorf("capture: node %d has no extent", n.ID)
	}
	p.shots.Lock()
	defer p.shots.Unlock()

	pg := p.page.Context(ctx)
	if _, err := pg.Eval(isolateJS, n.ID); err != nil {
		return nil, fmt.Errorf("capture: isolate node %d: %w", n.ID, err)
	}
	defer func() {
		// restore even when ctx has ended
		if _, err := p.page.Eval(restoreJS); err != nil {
			p.mgr.cfg.Logger.Warn("capture: restore page", "node", n.ID, "error", err)
		}
	}()

	data, err := pg.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      n.Rect.X,
			Y:      n.Rect.Y,
			Width:  n.Rect.W,
			Height: n.Rect.H,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("capture: screenshot node %d: %w", n.ID, err)
	}
	return data, nil
}

// Close closes the tab.
func (p *Page) Close() error {
	if p.router != nil {
		p.router.Stop()
		p.router = nil
	}
	if p.page == nil {
		return nil
	}
	err := p.page.Close()
	p.page = nil
	p.gen.pages.Done()
	return err
}
