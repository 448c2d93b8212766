package vecfx

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/hazyhaar/domdeck/style"
)

func red() style.Color  { return style.Color{Hex: "FF0000", Alpha: 1} }
func blue() style.Color { return style.Color{Hex: "0000FF", Alpha: 0.5} }

func wellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("malformed svg %s: %v", doc, err)
		}
	}
}

func TestRoundedPathLegalisesRadii(t *testing.T) {
	got := RoundedPath(0, 0, 100, 40, style.Radii{TL: 60, TR: 60, BR: 60, BL: 60})
	want := "M20 0H80A20 20 0 0 1 100 20V20A20 20 0 0 1 80 40H20A20 20 0 0 1 0 20V20A20 20 0 0 1 20 0Z"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRoundedPathSquareCorners(t *testing.T) {
	got := RoundedPath(0, 0, 10, 10, style.Radii{})
	if got != "M0 0H10V10H0V0Z" {
		t.Fatalf("got %s", got)
	}
}

func TestRoundedRect(t *testing.T) {
	doc := RoundedRect(120, 60, style.Radii{TL: 20, BR: 10}, red(), &Stroke{Width: 2, Color: blue(), Dash: "dash"})
	wellFormed(t, doc)
	s := string(doc)
	for _, want := range []string{
		`xmlns="http://www.w3.org/2000/svg"`,
		`viewBox="0 0 120 60"`,
		`fill="#FF0000"`,
		`stroke="#0000FF" stroke-opacity="0.5"`,
		`stroke-dasharray="6 2"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %s", want, s)
		}
	}
}

func TestCompositeBorderHasFourSides(t *testing.T) {
	var sides [4]style.Side
	for i := range sides {
		sides[i] = style.Side{Width: float64(i + 1), Style: "solid", Color: red()}
	}
	doc := CompositeBorder(50, 30, style.Radii{TL: 5}, sides, style.Color{})
	wellFormed(t, doc)
	if n := strings.Count(string(doc), "<rect "); n != 4 {
		t.Fatalf("got %d side rects, want 4", n)
	}
	if !strings.Contains(string(doc), `clip-path="url(#c)"`) {
		t.Fatal("sides are not clipped")
	}

	sides[style.Left] = style.Side{}
	doc = CompositeBorder(50, 30, style.Radii{}, sides, blue())
	if n := strings.Count(string(doc), "<rect "); n != 3 {
		t.Fatalf("got %d side rects, want 3", n)
	}
}

func TestLinearGradientDocument(t *testing.T) {
	g, ok := style.ParseLinearGradient("linear-gradient(to right, rgb(255, 0, 0), rgba(0, 0, 255, 0.5))", 100, 50, nil)
	if !ok {
		t.Fatal("gradient not parsed")
	}
	doc := LinearGradient(100, 50, style.Radii{}, g)
	wellFormed(t, doc)
	s := string(doc)
	for _, want := range []string{
		`x1="0%" y1="0%" x2="100%" y2="0%"`,
		`<stop offset="0%" stop-color="#FF0000" stop-opacity="1"/>`,
		`<stop offset="100%" stop-color="#0000FF" stop-opacity="0.5"/>`,
		`fill="url(#g)"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %s", want, s)
		}
	}
}

func TestBlurPadding(t *testing.T) {
	doc, pad := Blur(40, 20, style.Radii{}, red(), 4)
	if pad != 12 {
		t.Fatalf("pad = %v, want 12", pad)
	}
	wellFormed(t, doc)
	s := string(doc)
	if !strings.Contains(s, `width="64" height="44"`) {
		t.Errorf("document not padded: %s", s)
	}
	if !strings.Contains(s, `stdDeviation="4"`) {
		t.Errorf("missing blur: %s", s)
	}
}

func TestNormalize(t *testing.T) {
	markup := `<svg width="24" height="24" class="x"><path fill="currentColor" d="M0 0h24v24z"/><use xlink:href="#a"/></svg>`
	doc, err := Normalize(markup, 48, 48, "#336699")
	if err != nil {
		t.Fatal(err)
	}
	wellFormed(t, doc)
	s := string(doc)
	for _, want := range []string{
		`xmlns="http://www.w3.org/2000/svg"`,
		`xmlns:xlink="http://www.w3.org/1999/xlink"`,
		`viewBox="0 0 24 24"`,
		`width="48" height="48"`,
		`fill="#336699"`,
		`xlink:href="#a"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %s", want, s)
		}
	}
	if strings.Contains(s, "currentColor") {
		t.Errorf("currentColor left in %s", s)
	}
}

func TestNormalizeKeepsViewBox(t *testing.T) {
	doc, err := Normalize(`<svg viewBox="0 0 10 5" width="100%"><rect width="10" height="5"/></svg>`, 200, 100, "")
	if err != nil {
		t.Fatal(err)
	}
	s := string(doc)
	if !strings.Contains(s, `viewBox="0 0 10 5"`) || strings.Contains(s, `100%`) {
		t.Fatalf("got %s", s)
	}
}

func TestNormalizeRejectsNonSVG(t *testing.T) {
	if _, err := Normalize(`<div>nope</div>`, 10, 10, ""); err != ErrNotSVG {
		t.Fatalf("got %v, want ErrNotSVG", err)
	}
}

func TestRasterize(t *testing.T) {
	data, err := Rasterize(RoundedRect(20, 10, style.Radii{}, red(), nil), 40, 20)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, want 40x20", b)
	}
	r, g, _, a := img.At(20, 10).RGBA()
	if r>>8 != 255 || g != 0 || a>>8 != 255 {
		t.Fatalf("center pixel = %d,%d,%d, want opaque red", r>>8, g>>8, a>>8)
	}

	if _, err := Rasterize([]byte("<svg/>"), 0, 10); err == nil {
		t.Fatal("zero size accepted")
	}
}
