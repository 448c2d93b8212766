// Package capture renders pages in headless Chrome and exposes them to the
// conversion pipeline as a visual.Source: a snapshot of the rendered tree,
// a color probe backed by the page's canvas and element screenshots.
package capture

import (
	"log/slog"
	"time"
)

// StealthLevel controls the browser automation mode.
type StealthLevel int

const (
	LevelPlain    StealthLevel = 0 // headless, no evasions
	LevelHeadless StealthLevel = 1 // headless + stealth
	LevelHeadful  StealthLevel = 2 // headful under Xvfb + stealth
)

// Config configures the browser Manager and the pages it opens.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string `yaml:"remote_url"`

	// Bin overrides the Chrome binary used by the launcher.
	Bin string `yaml:"bin"`

	// Stealth sets the automation mode. Default: LevelPlain.
	Stealth StealthLevel `yaml:"stealth"`

	// XvfbDisplay for headful mode. Default: ":99".
	XvfbDisplay string `yaml:"xvfb_display"`

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string `yaml:"resource_blocking"`

	// ViewportWidth and ViewportHeight size the layout viewport in CSS
	// pixels. Default: 1280 x 720.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// DeviceScale is the device pixel ratio of element screenshots. Default: 2.
	DeviceScale float64 `yaml:"device_scale"`

	// Selector picks the element converted as the page root. Default: "body".
	Selector string `yaml:"selector"`

	// NavTimeout bounds navigation and load. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// RecycleInterval is the maximum lifetime of a Chrome process; an
	// older process is replaced before the next page opens. Default: 4h.
	RecycleInterval time.Duration `yaml:"recycle_interval"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.XvfbDisplay == "" {
		c.XvfbDisplay = ":99"
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 720
	}
	if c.DeviceScale <= 0 {
		c.DeviceScale = 2
	}
	if c.Selector == "" {
		c.Selector = "body"
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.RecycleInterval <= 0 {
		c.RecycleInterval = 4 * time.Hour
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
