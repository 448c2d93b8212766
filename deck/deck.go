// Package deck converts a captured, rendered HTML tree into the ordered draw
// commands of one slide: native shapes, text boxes, tables and charts where
// the slide format can express the element, images otherwise.
//
// A conversion pass walks the tree once, classifying each node and queuing
// items. Work that needs the network or the browser (image fetches,
// element snapshots, SVG rasterising) runs concurrently after the walk and
// fills its own item. Items are then sorted by stacking context and
// document order and handed to a Builder.
//
// Usage:
//
//	conv, err := deck.New(deck.Config{})
//	defer conv.Close()
//	err = conv.Convert(ctx, page, deck.NewJSONSink(os.Stdout, "slides.pptx"))
package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/domdeck/assetcache"
	"github.com/hazyhaar/domdeck/capture"
	"github.com/hazyhaar/domdeck/visual"
)

// ErrNoRoot is returned when the source has no captured tree.
var ErrNoRoot = errors.New("deck: source has no root node")

// Converter runs conversion passes. It is safe for concurrent use; each
// Convert call is an independent pass.
type Converter struct {
	cfg    Config
	cache  Cache
	closer func() error
	logger *slog.Logger

	browserOnce sync.Once
	browser     *capture.Manager
}

// New creates a Converter. When CachePath is set and no Cache is given, an
// SQLite asset cache is opened at that path.
func New(cfg Config) (*Converter, error) {
	cfg.defaults()
	c := &Converter{cfg: cfg, cache: cfg.Cache, logger: cfg.Logger}
	if c.cache == nil && cfg.CachePath != "" {
		ac, err := assetcache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("deck: %w", err)
		}
		c.cache = ac
		c.closer = ac.Close
	}
	return c, nil
}

// Close releases the asset cache and the browser, if any were opened.
func (c *Converter) Close() error {
	var errs []error
	if c.browser != nil {
		errs = append(errs, c.browser.Close())
	}
	if c.closer != nil {
		errs = append(errs, c.closer())
	}
	return errors.Join(errs...)
}

// Convert runs one pass over src and emits the resulting commands to b.
// Deferred jobs that fail drop their own item only; Convert fails only when
// the source has no tree, the context ends, or b rejects a command.
func (c *Converter) Convert(ctx context.Context, src visual.Source, b Builder) error {
	root := src.Root()
	if root == nil {
		return ErrNoRoot
	}
	_, charts := b.(ChartBuilder)
	p := &pass{
		id:     c.cfg.IDs(),
		cfg:    &c.cfg,
		src:    src,
		layout: NewLayout(root.Rect, c.cfg.PageWidth, c.cfg.PageHeight),
		charts: charts,
		logger: c.logger,
	}
	if pa, ok := b.(passAware); ok {
		pa.SetPass(p.id)
	}
	start := time.Now()
	c.logger.Debug("deck: pass started", "pass", p.id, "file", c.cfg.FileName, "scale", p.layout.Scale)

	p.walk(root, 0, 1)
	c.runJobs(ctx, p)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deck: pass %s: %w", p.id, err)
	}

	items := finalize(p.items)
	for _, it := range items {
		if err := emit(b, it); err != nil {
			return fmt.Errorf("deck: pass %s: emit node %d: %w", p.id, it.NodeID, err)
		}
	}
	c.logger.Info("deck: pass done", "pass", p.id,
		"nodes", p.index, "items", len(items), "dropped", len(p.items)-len(items),
		"duration", time.Since(start))
	return nil
}

// ConvertURL renders pageURL in headless Chrome and converts it.
func (c *Converter) ConvertURL(ctx context.Context, pageURL string, b Builder) error {
	page, err := c.manager().Open(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	defer page.Close()
	return c.convertPage(ctx, page, b)
}

// ConvertHTML renders an HTML document in headless Chrome and converts it.
func (c *Converter) ConvertHTML(ctx context.Context, html string, b Builder) error {
	page, err := c.manager().OpenHTML(ctx, html)
	if err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	defer page.Close()
	return c.convertPage(ctx, page, b)
}

func (c *Converter) convertPage(ctx context.Context, page *capture.Page, b Builder) error {
	if _, err := page.Snapshot(ctx, ""); err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	return c.Convert(ctx, page, b)
}

func (c *Converter) manager() *capture.Manager {
	c.browserOnce.Do(func() {
		bc := c.cfg.Browser
		if bc.Logger == nil {
			bc.Logger = c.logger
		}
		c.browser = capture.NewManager(bc)
	})
	return c.browser
}
