package deck

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/domdeck/assetcache"
	"github.com/hazyhaar/domdeck/media"
	"github.com/hazyhaar/domdeck/vecfx"
	"github.com/hazyhaar/domdeck/visual"
)

// Task produces the image data of one item.
type Task interface {
	Run(ctx context.Context) (media.Asset, error)
}

// keyedTask is implemented by tasks whose result depends only on their
// inputs and may be cached.
type keyedTask interface {
	Task
	Key() string
}

// Job binds a deferred task to the item it fills. A job touches nothing but
// its own item.
type Job struct {
	Item *Item
	Task Task
}

// captureTask snapshots a node's rendered subtree.
type captureTask struct {
	capturer visual.Capturer
	node     *visual.Node
}

func (t captureTask) Run(ctx context.Context) (media.Asset, error) {
	data, err := t.capturer.Capture(ctx, t.node)
	if err != nil {
		return media.Asset{}, fmt.Errorf("capture node %d: %w", t.node.ID, err)
	}
	return media.Asset{Data: data, MIME: "image/png"}, nil
}

// imageTask fetches an image and lays it into its box.
type imageTask struct {
	fetcher   *media.Fetcher
	src       string
	placement media.Placement
}

func (t imageTask) Run(ctx context.Context) (media.Asset, error) {
	a, err := t.fetcher.Fetch(ctx, t.src)
	if err != nil {
		return media.Asset{}, err
	}
	return media.Prepare(a, t.placement)
}

func (t imageTask) Key() string {
	p := t.placement
	return assetcache.Key("image", t.src,
		fmt.Sprintf("%dx%d@%g", p.W, p.H, p.Scale), p.Fit, p.Position,
		fmt.Sprintf("%g,%g,%g,%g", p.Radii.TL, p.Radii.TR, p.Radii.BR, p.Radii.BL))
}

// vectorTask turns captured svg markup into a standalone SVG or a PNG.
type vectorTask struct {
	markup       string
	w, h         float64 // source px
	currentColor string
	vector       bool
	pw, ph       int // raster size
}

func (t vectorTask) Run(context.Context) (media.Asset, error) {
	doc, err := vecfx.Normalize(t.markup, t.w, t.h, t.currentColor)
	if err != nil {
		return media.Asset{}, err
	}
	if t.vector {
		return media.Asset{Data: doc, MIME: vecfx.MIME}, nil
	}
	png, err := vecfx.Rasterize(doc, t.pw, t.ph)
	if err != nil {
		return media.Asset{}, err
	}
	return media.Asset{Data: png, MIME: "image/png"}, nil
}

func (t vectorTask) Key() string {
	mode := "vector"
	if !t.vector {
		mode = fmt.Sprintf("png %dx%d", t.pw, t.ph)
	}
	return assetcache.Key("svg", t.markup, fmt.Sprintf("%gx%g", t.w, t.h), t.currentColor, mode)
}

// runJobs runs every queued job concurrently and waits for all of them.
// A failed job marks its item; it never cancels the others.
func (c *Converter) runJobs(ctx context.Context, p *pass) {
	if len(p.jobs) == 0 {
		return
	}
	var g errgroup.Group
	if c.cfg.MaxConcurrency > 0 {
		g.SetLimit(c.cfg.MaxConcurrency)
	}
	var failed, size atomic.Int64
	for _, j := range p.jobs {
		g.Go(func() error {
			a, err := c.runJob(ctx, j.Task)
			if err == nil && a.Empty() {
				err = fmt.Errorf("empty result")
			}
			if err != nil {
				j.Item.Failed = true
				failed.Add(1)
				p.logger.Debug("deck: job failed", "pass", p.id, "node", j.Item.NodeID, "error", err)
				return nil
			}
			j.Item.Image.Data, j.Item.Image.MIME = a.Data, a.MIME
			size.Add(int64(len(a.Data)))
			return nil
		})
	}
	_ = g.Wait()
	p.logger.Debug("deck: jobs done", "pass", p.id,
		"jobs", len(p.jobs), "failed", failed.Load(),
		"assets", humanize.Bytes(uint64(size.Load())))
}

func (c *Converter) runJob(ctx context.Context, t Task) (media.Asset, error) {
	kt, ok := t.(keyedTask)
	if !ok || c.cache == nil {
		return t.Run(ctx)
	}
	key := kt.Key()
	if a, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		return a, nil
	} else if err != nil {
		c.logger.Debug("deck: cache get", "error", err)
	}
	a, err := t.Run(ctx)
	if err != nil {
		return a, err
	}
	if err := c.cache.Put(ctx, key, a); err != nil {
		c.logger.Debug("deck: cache put", "error", err)
	}
	return a, nil
}

// finalize drops items without data and orders the rest by stacking
// order, then traversal index.
func finalize(items []*Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.ready() {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b *Item) int {
		if c := cmp.Compare(a.Stack, b.Stack); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}
