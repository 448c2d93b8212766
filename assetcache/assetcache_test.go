package assetcache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/domdeck/dbopen"
	"github.com/hazyhaar/domdeck/media"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	return New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema)))
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		same bool
	}{
		{"identical", []string{"img", "a.png"}, []string{"img", "a.png"}, true},
		{"different part", []string{"img", "a.png"}, []string{"img", "b.png"}, false},
		{"boundary shift", []string{"ab", "c"}, []string{"a", "bc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := Key(tt.a...), Key(tt.b...)
			if len(ka) != 64 {
				t.Fatalf("key length: got %d, want 64", len(ka))
			}
			if (ka == kb) != tt.same {
				t.Errorf("Key(%v) == Key(%v): got %v, want %v", tt.a, tt.b, ka == kb, tt.same)
			}
		})
	}
}

func TestGetPut(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get missing: hit=%v err=%v", hit, err)
	}

	a := media.Asset{Data: []byte("png-bytes"), MIME: "image/png"}
	if err := c.Put(ctx, "k", a); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if got.MIME != a.MIME || !bytes.Equal(got.Data, a.Data) {
		t.Errorf("Get: got %+v, want %+v", got, a)
	}

	// Overwrite.
	b := media.Asset{Data: []byte("<svg/>"), MIME: "image/svg+xml"}
	if err := c.Put(ctx, "k", b); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, _, _ = c.Get(ctx, "k")
	if got.MIME != b.MIME {
		t.Errorf("MIME after overwrite: got %q, want %q", got.MIME, b.MIME)
	}

	if n, size, err := c.Stats(ctx); err != nil || n != 1 || size != int64(len(b.Data)) {
		t.Errorf("Stats: got %d entries %d bytes err=%v", n, size, err)
	}
}

func TestPutRejectsEmpty(t *testing.T) {
	c := testCache(t)
	if err := c.Put(context.Background(), "k", media.Asset{MIME: "image/png"}); err == nil {
		t.Fatal("expected error for empty asset")
	}
}

func TestPrune(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	if err := c.Put(ctx, "old", media.Asset{Data: []byte{1}, MIME: "image/png"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.DB.Exec(`UPDATE assets SET created_at = ? WHERE key = 'old'`,
		time.Now().Add(-48*time.Hour).UnixMilli()); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, "new", media.Asset{Data: []byte{2}, MIME: "image/png"}); err != nil {
		t.Fatal(err)
	}

	n, err := c.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned: got %d, want 1", n)
	}
	if _, hit, _ := c.Get(ctx, "new"); !hit {
		t.Error("recent entry was pruned")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "assets.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if err := c.Put(context.Background(), "k", media.Asset{Data: []byte{1}, MIME: "image/png"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
}
