package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hazyhaar/domdeck/style"
	"github.com/hazyhaar/domdeck/vecfx"
)

// ErrUnsupported is returned for formats no registered decoder handles.
var ErrUnsupported = errors.New("media: unsupported image format")

// Decode decodes a raster asset. SVG assets are rasterised at w x h.
func Decode(a Asset, w, h int) (image.Image, error) {
	if a.MIME == vecfx.MIME || sniffSVG(a.Data) {
		data, err := vecfx.Rasterize(a.Data, w, h)
		if err != nil {
			return nil, err
		}
		a = Asset{Data: data, MIME: "image/png"}
	}
	img, format, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%w (%s)", ErrUnsupported, a.MIME)
		}
		return nil, fmt.Errorf("media: decode %s: %w", format, err)
	}
	return img, nil
}

// Placement describes how an image is laid into its box. W and H are the
// output size in pixels; Scale converts CSS pixels (intrinsic sizes,
// object-position offsets) to output pixels.
type Placement struct {
	W, H     int
	Scale    float64
	Fit      string // fill, contain, cover, none, scale-down
	Position string // computed object-position, e.g. "50% 50%"
	Radii    style.Radii
}

// Fit lays src into a transparent W x H canvas following CSS object-fit and
// object-position.
func Fit(src image.Image, p Placement) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, p.W, p.H))
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw == 0 || sh == 0 || p.W == 0 || p.H == 0 {
		return dst
	}
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := float64(p.W), float64(p.H)

	var dw, dh float64
	switch p.Fit {
	case "contain":
		s := math.Min(w/sw, h/sh)
		dw, dh = sw*s, sh*s
	case "cover":
		s := math.Max(w/sw, h/sh)
		dw, dh = sw*s, sh*s
	case "none":
		dw, dh = sw*scale, sh*scale
	case "scale-down":
		s := math.Min(math.Min(w/sw, h/sh), scale)
		dw, dh = sw*s, sh*s
	default:
		dw, dh = w, h
	}

	ox, oy := position(p.Position, w-dw, h-dh, scale)
	r := image.Rect(
		int(math.Round(ox)), int(math.Round(oy)),
		int(math.Round(ox+dw)), int(math.Round(oy+dh)),
	)
	draw.CatmullRom.Scale(dst, r, src, sb, draw.Over, nil)
	return dst
}

// position resolves an object-position value against the free space on
// each axis. Percentages place proportionally; lengths are offsets.
func position(v string, freeX, freeY, scale float64) (float64, float64) {
	fields := strings.Fields(v)
	x, y := freeX/2, freeY/2
	axis := func(tok string, free float64, lowKw, highKw string) float64 {
		switch tok {
		case lowKw:
			return 0
		case highKw:
			return free
		case "center":
			return free / 2
		}
		if pct, ok := strings.CutSuffix(tok, "%"); ok {
			var n float64
			if _, err := fmt.Sscanf(pct, "%g", &n); err == nil {
				return free * n / 100
			}
		}
		return style.Px(tok) * scale
	}
	if len(fields) > 0 {
		x = axis(fields[0], freeX, "left", "right")
	}
	if len(fields) > 1 {
		y = axis(fields[1], freeY, "top", "bottom")
	}
	return x, y
}

// RoundMask clears the pixels of img outside the rounded outline given by r
// (in output pixels). img is modified in place.
func RoundMask(img *image.NRGBA, r style.Radii) {
	if r.Zero() {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	r = r.Legalize(float64(w), float64(h))

	mask := image.NewAlpha(b)
	filler := rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, mask, b))
	filler.SetColor(color.Alpha{A: 255})
	roundedOutline(filler, float64(w), float64(h), r)
	filler.Draw()

	out := image.NewNRGBA(b)
	draw.DrawMask(out, b, img, b.Min, mask, b.Min, draw.Src)
	copy(img.Pix, out.Pix)
}

// kappa approximates a quarter circle with one cubic bezier.
const kappa = 0.5522847498

func roundedOutline(f *rasterx.Filler, w, h float64, r style.Radii) {
	pt := rasterx.ToFixedP
	f.Start(pt(r.TL, 0))
	f.Line(pt(w-r.TR, 0))
	if r.TR > 0 {
		f.CubeBezier(pt(w-r.TR+r.TR*kappa, 0), pt(w, r.TR-r.TR*kappa), pt(w, r.TR))
	}
	f.Line(pt(w, h-r.BR))
	if r.BR > 0 {
		f.CubeBezier(pt(w, h-r.BR+r.BR*kappa), pt(w-r.BR+r.BR*kappa, h), pt(w-r.BR, h))
	}
	f.Line(pt(r.BL, h))
	if r.BL > 0 {
		f.CubeBezier(pt(r.BL-r.BL*kappa, h), pt(0, h-r.BL+r.BL*kappa), pt(0, h-r.BL))
	}
	f.Line(pt(0, r.TL))
	if r.TL > 0 {
		f.CubeBezier(pt(0, r.TL-r.TL*kappa), pt(r.TL-r.TL*kappa, 0), pt(r.TL, 0))
	}
	f.Stop(true)
}

// EncodePNG encodes img as a PNG asset.
func EncodePNG(img image.Image) (Asset, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return Asset{}, fmt.Errorf("media: encode png: %w", err)
	}
	return Asset{Data: buf.Bytes(), MIME: "image/png"}, nil
}

// Prepare decodes a, lays it out per p and applies the corner mask.
func Prepare(a Asset, p Placement) (Asset, error) {
	if p.W <= 0 || p.H <= 0 {
		return Asset{}, fmt.Errorf("media: prepare: invalid size %dx%d", p.W, p.H)
	}
	src, err := Decode(a, p.W, p.H)
	if err != nil {
		return Asset{}, err
	}
	img := Fit(src, p)
	RoundMask(img, p.Radii)
	return EncodePNG(img)
}
