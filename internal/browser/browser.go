// Package browser manages the headless Chrome the acquisition strategies
// run against. It launches Chrome via rod, hands out stealth pages one at a
// time, and hides rod behind small Page/Frame interfaces so strategies and
// tests never touch the browser directly.
package browser

import (
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config configures the browser.
type Config struct {
	// UserAgent overrides the page user agent. Default: a desktop Chrome UA.
	UserAgent string

	// Logger for launch and navigation diagnostics.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser owns a headless Chrome process.
type Browser struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// Launch starts a headless Chrome configured to tolerate the sloppy TLS and
// mixed content common on small vendor sites.
func Launch(cfg Config) (*Browser, error) {
	cfg.defaults()

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("ignore-certificate-errors").
		Set("allow-running-insecure-content").
		Set("disable-web-security")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching chrome: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connecting to chrome: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		cfg.Logger.Warn("ignore cert errors failed", "error", err)
	}

	cfg.Logger.Debug("chrome launched", "control_url", u)
	return &Browser{cfg: cfg, browser: b, lnch: l}, nil
}

// NewPage opens a fresh stealth page. Callers own the page and must close
// it when the source is done, on success and failure paths both.
func (b *Browser) NewPage() (Page, error) {
	p, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
		b.cfg.Logger.Warn("setting user agent failed", "error", err)
	}
	return &rodPage{page: p, log: b.cfg.Logger}, nil
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	err := b.browser.Close()
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
	return err
}
