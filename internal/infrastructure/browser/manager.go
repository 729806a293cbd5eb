// Package browser drives a headless Chrome through Rod to read search results
// of the content site.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
)

type ManagerConfig struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local Chrome found on PATH.
	RemoteURL string
	Headless  bool
	Logger    *logger.Logger
}

// Manager owns one Chrome process, started on first use and shared by all
// fetches until Close.
type Manager struct {
	cfg     ManagerConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Manager{cfg: cfg}
}

// Browser returns the shared browser, launching it if needed. Failures to
// obtain one wrap ports.ErrFetcherUnavailable.
func (m *Manager) Browser(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("%w: browser manager is closed", ports.ErrFetcherUnavailable)
	}
	if m.browser != nil {
		return m.browser, nil
	}

	b, err := m.launch(ctx)
	if err != nil {
		m.cfg.Logger.Warnw("browser_launch_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ports.ErrFetcherUnavailable, err)
	}
	m.browser = b
	return b, nil
}

// Reset drops the current browser so the next fetch starts a fresh one.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanup()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cleanup()
	return nil
}

func (m *Manager) launch(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Infow("browser_connecting_remote", "url", wsURL)
	} else {
		bin, found := launcher.LookPath()
		if !found {
			return nil, fmt.Errorf("no chrome binary found on PATH")
		}

		l := launcher.New().
			Bin(bin).
			Headless(m.cfg.Headless).
			NoSandbox(true).
			Set("disable-blink-features", "AutomationControlled").
			Set("disable-dev-shm-usage").
			Set("window-size", "1920,1080")

		// The process outlives any one task, so it is not bound to ctx.
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Infow("browser_launched_local", "bin", bin, "headless", m.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if m.lnch != nil {
			m.lnch.Cleanup()
			m.lnch = nil
		}
		return nil, fmt.Errorf("connect: %w", err)
	}
	return b, nil
}

func (m *Manager) cleanup() {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.cfg.Logger.Debugw("browser_close_failed", "error", err)
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
}
