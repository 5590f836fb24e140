// Package browser probes web elements with a headless Chrome instance so UI
// tests are only generated for elements that actually exist on the page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"testforge/internal/generator"
)

// Config holds browser configuration.
type Config struct {
	Headless            bool
	BaseURL             string
	NavigationTimeoutMs int
}

// NavigationTimeout returns the navigation timeout as a duration.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// Prober locates elements on a live page. The browser is launched lazily on
// the first probe and reused afterwards.
type Prober struct {
	cfg Config

	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
}

// NewProber creates a Prober. Close must be called when done.
func NewProber(cfg Config) *Prober {
	return &Prober{cfg: cfg}
}

func (p *Prober) ensureStarted(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page != nil {
		return nil
	}
	if p.cfg.BaseURL == "" {
		return errors.New("browser: base URL not configured")
	}

	url, err := launcher.New().Headless(p.cfg.Headless).Launch()
	if err != nil {
		return fmt.Errorf("browser: launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("browser: connect to chrome: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return fmt.Errorf("browser: open page: %w", err)
	}
	if err := page.Timeout(p.cfg.NavigationTimeout()).Navigate(p.cfg.BaseURL); err != nil {
		browser.Close()
		return fmt.Errorf("browser: navigate to %s: %w", p.cfg.BaseURL, err)
	}
	p.browser = browser
	p.page = page
	return nil
}

// Probe looks the element up by id, then xpath, then name, and returns an
// error when none of the locators match anything on the page.
func (p *Prober) Probe(ctx context.Context, el generator.UIElement) error {
	if err := p.ensureStarted(ctx); err != nil {
		return err
	}
	page := p.page.Context(ctx).Timeout(p.cfg.NavigationTimeout())

	var errs []error
	if el.ID != "" {
		if _, err := page.ElementX(fmt.Sprintf("//*[@id=%q]", el.ID)); err == nil {
			return nil
		} else {
			errs = append(errs, fmt.Errorf("by id %q: %w", el.ID, err))
		}
	}
	if el.XPath != "" {
		if _, err := page.ElementX(el.XPath); err == nil {
			return nil
		} else {
			errs = append(errs, fmt.Errorf("by xpath %q: %w", el.XPath, err))
		}
	}
	if el.Name != "" {
		sel := fmt.Sprintf("[name=%q]", el.Name)
		if _, err := page.Element(sel); err == nil {
			return nil
		} else {
			errs = append(errs, fmt.Errorf("by name %q: %w", el.Name, err))
		}
	}
	if len(errs) == 0 {
		return errors.New("browser: element has no locators")
	}
	return fmt.Errorf("browser: element not found: %w", errors.Join(errs...))
}

// Close shuts the browser down.
func (p *Prober) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.browser = nil
	p.page = nil
	return err
}
