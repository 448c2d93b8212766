package deck

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/domdeck/capture"
	"github.com/hazyhaar/domdeck/idgen"
	"github.com/hazyhaar/domdeck/media"
)

// Config configures a Converter.
type Config struct {
	// PageWidth and PageHeight size the output page in inches (default: 10 x 5.625).
	PageWidth  float64 `yaml:"page_width"`
	PageHeight float64 `yaml:"page_height"`

	// SVGAsVector keeps svg elements as vector images instead of rasterising them.
	SVGAsVector bool `yaml:"svg_as_vector"`

	// List overrides bullet styling for every list. Zero values keep the
	// page's own styling.
	List ListConfig `yaml:"list"`

	// FileName is passed through to sinks.
	FileName string `yaml:"file_name"`

	// ImageScale oversamples rasterised assets (default: 2).
	ImageScale float64 `yaml:"image_scale"`

	// MaxConcurrency bounds concurrent deferred jobs; 0 means unbounded.
	MaxConcurrency int `yaml:"max_concurrency"`

	// AllowPrivateHosts permits image fetches from loopback and private addresses.
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`

	// CachePath, when set, caches deferred-job results in an SQLite file.
	CachePath string `yaml:"cache_path"`

	// Browser configures the headless Chrome used by ConvertURL.
	Browser capture.Config `yaml:"browser"`

	Logger  *slog.Logger    `yaml:"-"`
	Fetcher *media.Fetcher  `yaml:"-"` // default: media.NewFetcher honouring AllowPrivateHosts
	Cache   Cache           `yaml:"-"` // overrides CachePath
	IDs     idgen.Generator `yaml:"-"` // pass IDs, default idgen.Pass
}

// ListConfig holds global list overrides.
type ListConfig struct {
	BulletColor string  `yaml:"bullet_color"` // hex, with or without '#'
	BulletSize  int     `yaml:"bullet_size"`  // percent of text size
	Indent      float64 `yaml:"indent"`       // points
	SpaceBefore float64 `yaml:"space_before"` // points
	SpaceAfter  float64 `yaml:"space_after"`  // points
}

// Cache stores deferred-job results by key.
type Cache interface {
	Get(ctx context.Context, key string) (media.Asset, bool, error)
	Put(ctx context.Context, key string, a media.Asset) error
}

func (c *Config) defaults() {
	if c.PageWidth <= 0 {
		c.PageWidth = 10
	}
	if c.PageHeight <= 0 {
		c.PageHeight = 5.625
	}
	if c.ImageScale <= 0 {
		c.ImageScale = 2
	}
	if c.MaxConcurrency < 0 {
		c.MaxConcurrency = 0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.IDs == nil {
		c.IDs = idgen.Pass
	}
	if c.Fetcher == nil {
		c.Fetcher = media.NewFetcher(
			media.WithPrivateHosts(c.AllowPrivateHosts),
			media.WithLogger(c.Logger),
		)
	}
}

// LoadConfigFile reads a YAML configuration file. Defaults are applied by New.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("deck: parse config %s: %w", path, err)
	}
	return &cfg, nil
}
