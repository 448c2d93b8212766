package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/domdeck/horosafe"
	"github.com/hazyhaar/domdeck/style"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeDataURI(t *testing.T) {
	raw := solidPNG(t, 2, 2, color.White)
	a, err := DecodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatal(err)
	}
	if a.MIME != "image/png" || !bytes.Equal(a.Data, raw) {
		t.Fatalf("got mime %q, %d bytes", a.MIME, len(a.Data))
	}

	svg, err := DecodeDataURI("data:image/svg+xml;charset=utf-8,%3Csvg%20xmlns%3D%22http%3A%2F%2Fwww.w3.org%2F2000%2Fsvg%22%2F%3E")
	if err != nil {
		t.Fatal(err)
	}
	if svg.MIME != "image/svg+xml" || string(svg.Data) != `<svg xmlns="http://www.w3.org/2000/svg"/>` {
		t.Fatalf("got %q %q", svg.MIME, svg.Data)
	}

	sniffed, err := DecodeDataURI("data:;base64," + base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatal(err)
	}
	if sniffed.MIME != "image/png" {
		t.Fatalf("sniffed mime = %q, want image/png", sniffed.MIME)
	}

	for _, bad := range []string{"http://x", "data:image/png;base64", "data:image/png;base64,!!!"} {
		if _, err := DecodeDataURI(bad); err == nil {
			t.Errorf("DecodeDataURI(%q): expected error", bad)
		}
	}
}

func TestFetchRejectsPrivateHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	_, err := NewFetcher().Fetch(context.Background(), srv.URL+"/a.png")
	if !errors.Is(err, horosafe.ErrSSRF) {
		t.Fatalf("got %v, want ErrSSRF", err)
	}
}

func TestFetchAllowedPrivateHost(t *testing.T) {
	raw := solidPNG(t, 3, 3, color.Black)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(raw)
		case "/big":
			w.Write(bytes.Repeat([]byte("x"), 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(WithPrivateHosts(true), WithMaxBytes(32))
	a, err := NewFetcher(WithPrivateHosts(true)).Fetch(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatal(err)
	}
	if a.MIME != "image/png" || len(a.Data) != len(raw) {
		t.Fatalf("got mime %q, %d bytes", a.MIME, len(a.Data))
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing"); !errors.Is(err, ErrStatus) {
		t.Fatalf("got %v, want ErrStatus", err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/big"); !errors.Is(err, horosafe.ErrTooLarge) {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}
	if _, err := f.Fetch(context.Background(), "file:///etc/passwd"); !errors.Is(err, horosafe.ErrUnsafeScheme) {
		t.Fatalf("got %v, want ErrUnsafeScheme", err)
	}
}

func opaqueBounds(img *image.NRGBA) image.Rectangle {
	var r image.Rectangle
	first := true
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			p := image.Rect(x, y, x+1, y+1)
			if first {
				r, first = p, false
			} else {
				r = r.Union(p)
			}
		}
	}
	return r
}

func TestFit(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	tests := []struct {
		fit, pos string
		want     image.Rectangle
	}{
		{"fill", "50% 50%", image.Rect(0, 0, 40, 40)},
		{"contain", "50% 50%", image.Rect(0, 10, 40, 30)},
		{"contain", "0% 0%", image.Rect(0, 0, 40, 20)},
		{"contain", "left bottom", image.Rect(0, 20, 40, 40)},
		{"cover", "50% 50%", image.Rect(0, 0, 40, 40)},
		{"none", "0px 5px", image.Rect(0, 5, 20, 15)},
		{"scale-down", "50% 50%", image.Rect(10, 15, 30, 25)},
	}
	for _, tt := range tests {
		got := opaqueBounds(Fit(src, Placement{W: 40, H: 40, Scale: 1, Fit: tt.fit, Position: tt.pos}))
		if got != tt.want {
			t.Errorf("Fit(%s, %s): opaque area %v, want %v", tt.fit, tt.pos, got, tt.want)
		}
	}
}

func TestRoundMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	RoundMask(img, style.Radii{TL: 20, TR: 20, BR: 20, BL: 20})
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if a := img.NRGBAAt(39, 39).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if c := img.NRGBAAt(20, 20); c.A != 255 || c.R != 255 {
		t.Errorf("center = %v, want opaque white", c)
	}

	square := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	square.Pix[3] = 255
	RoundMask(square, style.Radii{})
	if square.Pix[3] != 255 {
		t.Error("zero radii changed the image")
	}
}

func TestPrepare(t *testing.T) {
	a := Asset{Data: solidPNG(t, 10, 10, color.NRGBA{R: 255, A: 255}), MIME: "image/png"}
	out, err := Prepare(a, Placement{W: 30, H: 20, Scale: 2, Fit: "cover", Position: "50% 50%", Radii: style.Radii{TL: 8}})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, want 30x20", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("masked corner alpha = %d, want 0", a)
	}

	svg := Asset{Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4"><rect width="4" height="4" fill="#00ff00"/></svg>`), MIME: "image/svg+xml"}
	if _, err := Prepare(svg, Placement{W: 8, H: 8}); err != nil {
		t.Fatalf("svg: %v", err)
	}

	if _, err := Prepare(Asset{Data: []byte("garbage"), MIME: "image/png"}, Placement{W: 1, H: 1}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("got %v, want ErrUnsupported", err)
	}
	if _, err := Prepare(a, Placement{}); err == nil {
		t.Fatal("zero size accepted")
	}
}
