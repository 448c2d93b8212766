// Package media loads and prepares raster images for image items: fetching
// (http, https and data URIs), decoding, object-fit/object-position
// placement, corner-radius masking and PNG encoding.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hazyhaar/domdeck/horosafe"
)

// Asset is an encoded image (or other resource) with its media type.
type Asset struct {
	Data []byte
	MIME string
}

// Empty reports whether the asset carries no data.
func (a Asset) Empty() bool { return len(a.Data) == 0 }

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("media: unexpected status")

// Fetcher retrieves image resources referenced by the page.
type Fetcher struct {
	client       *http.Client
	ua           string
	maxBytes     int64
	allowPrivate bool
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client. The client's transport is used as
// is, so private-address protection at dial time is lost.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.ua = ua }
}

// WithMaxBytes caps the size of a fetched resource.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithPrivateHosts allows fetching from loopback and private addresses,
// which is needed when converting pages served locally.
func WithPrivateHosts(allow bool) Option {
	return func(f *Fetcher) { f.allowPrivate = allow }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher with a 30 second timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		ua:       "Mozilla/5.0 (compatible; domdeck/1.0)",
		maxBytes: horosafe.MaxAssetBytes,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	if f.client == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if !f.allowPrivate {
			tr.DialContext = horosafe.SafeDialer(10 * time.Second).DialContext
		}
		f.client = &http.Client{Timeout: 30 * time.Second, Transport: tr}
	}
	return f
}

// Fetch resolves src, an absolute http(s) URL or a data URI.
func (f *Fetcher) Fetch(ctx context.Context, src string) (Asset, error) {
	if strings.HasPrefix(src, "data:") {
		return DecodeDataURI(src)
	}
	if !f.allowPrivate {
		if err := horosafe.ValidateURL(ctx, src); err != nil {
			return Asset{}, fmt.Errorf("media: fetch: %w", err)
		}
	} else if u, err := url.Parse(src); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Asset{}, fmt.Errorf("media: fetch: %w", horosafe.ErrUnsafeScheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("media: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.ua)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/svg+xml,image/*;q=0.8,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("media: do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Asset{}, fmt.Errorf("%w %d for %s", ErrStatus, resp.StatusCode, src)
	}

	body, err := horosafe.LimitedReadAll(resp.Body, f.maxBytes)
	if err != nil {
		return Asset{}, fmt.Errorf("media: read body: %w", err)
	}
	a := Asset{Data: body, MIME: contentType(resp.Header.Get("Content-Type"), body)}

	f.logger.Debug("media: fetched",
		"url", src, "status", resp.StatusCode,
		"mime", a.MIME, "size", humanize.Bytes(uint64(len(body))))
	return a, nil
}

func contentType(header string, body []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if sniffSVG(body) {
		return "image/svg+xml"
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	return mt
}

func sniffSVG(b []byte) bool {
	head := strings.TrimSpace(string(b[:min(len(b), 512)]))
	return strings.HasPrefix(head, "<svg") ||
		(strings.HasPrefix(head, "<?xml") && strings.Contains(head, "<svg"))
}

// DecodeDataURI decodes an RFC 2397 data URI.
func DecodeDataURI(uri string) (Asset, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Asset{}, fmt.Errorf("media: not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Asset{}, fmt.Errorf("media: data URI without payload")
	}
	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mt := "text/plain"
	if meta != "" {
		if parsed, _, err := mime.ParseMediaType(meta); err == nil {
			mt = parsed
		}
	}

	var data []byte
	if isBase64 {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		var err error
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return Asset{}, fmt.Errorf("media: data URI: %w", err)
		}
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return Asset{}, fmt.Errorf("media: data URI: %w", err)
		}
		data = []byte(s)
	}
	if mt == "text/plain" || mt == "application/octet-stream" {
		mt = contentType("", data)
	}
	return Asset{Data: data, MIME: mt}, nil
}
