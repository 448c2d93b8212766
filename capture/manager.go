package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Manager owns the Chrome process: launch or remote connect, lazy start,
// and replacement once the process outlives RecycleInterval.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	cur     *generation
	retired map[*generation]struct{}
	xvfb    *exec.Cmd
	closed  bool

	// launchFn starts a new Chrome generation; replaced in tests.
	launchFn func(ctx context.Context) (*generation, error)
}

// generation is one Chrome process and the tabs opened on it. A retired
// generation is closed once its last tab is.
type generation struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	startAt time.Time
	pages   sync.WaitGroup
	once    sync.Once
	done    chan struct{}
}

func newGeneration(b *rod.Browser, l *launcher.Launcher) *generation {
	return &generation{browser: b, lnch: l, startAt: time.Now(), done: make(chan struct{})}
}

func (g *generation) close() {
	g.once.Do(func() {
		if g.browser != nil {
			g.browser.Close()
		}
		if g.lnch != nil {
			g.lnch.Cleanup()
		}
		close(g.done)
	})
}

// NewManager creates a browser Manager. Chrome starts on first use.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	m := &Manager{cfg: cfg, retired: make(map[*generation]struct{})}
	m.launchFn = m.launch
	return m
}

// acquire returns the current generation with one tab registered on it,
// launching Chrome or replacing a stale process as needed. The caller
// must call g.pages.Done when its tab is closed.
func (m *Manager) acquire(ctx context.Context) (*generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("capture: manager is closed")
	}
	if g := m.cur; g != nil && time.Since(g.startAt) > m.cfg.RecycleInterval {
		m.cfg.Logger.Info("capture: recycling chrome", "uptime", time.Since(g.startAt))
		m.cur = nil
		m.retired[g] = struct{}{}
		go m.retire(g)
	}
	if m.cur == nil {
		g, err := m.launchFn(ctx)
		if err != nil {
			return nil, err
		}
		m.cur = g
	}
	m.cur.pages.Add(1)
	return m.cur, nil
}

// retire waits for the tabs still open on g, then closes it. Nothing adds
// tabs to a generation once it is retired.
func (m *Manager) retire(g *generation) {
	g.pages.Wait()
	g.close()
	m.mu.Lock()
	delete(m.retired, g)
	m.mu.Unlock()
	m.cfg.Logger.Debug("capture: retired chrome", "uptime", time.Since(g.startAt))
}

// Close shuts down every Chrome process and Xvfb, including processes
// still waiting for their tabs.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.cur != nil {
		m.cur.close()
		m.cur = nil
	}
	for g := range m.retired {
		g.close()
	}
	m.stopXvfb()
	return nil
}

func (m *Manager) launch(ctx context.Context) (*generation, error) {
	log := m.cfg.Logger

	if m.cfg.Stealth == LevelHeadful {
		if err := m.startXvfb(); err != nil {
			return nil, fmt.Errorf("capture: xvfb: %w", err)
		}
	}

	var l *launcher.Launcher
	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.Info("capture: connecting to remote", "url", wsURL)
	} else {
		l = launcher.New().Context(ctx)
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		if m.cfg.Stealth == LevelHeadful {
			l = l.Headless(false).Env(append(os.Environ(), "DISPLAY="+m.cfg.XvfbDisplay)...)
		} else {
			l = l.Headless(true)
		}
		l = l.Set("disable-blink-features", "AutomationControlled").
			Set("font-render-hinting", "none")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("capture: launch: %w", err)
		}
		wsURL = u
		log.Info("capture: launched local chrome", "url", wsURL, "stealth", m.cfg.Stealth)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Cleanup()
		}
		return nil, fmt.Errorf("capture: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("capture: ignore cert errors failed", "error", err)
	}
	return newGeneration(b, l), nil
}
