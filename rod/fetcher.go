// Package rod fetches JavaScript-rendered pages through a headless Chrome
// driven by go-rod.
package rod

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docgraph"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Ensure Fetcher implements docgraph.Fetcher at compile time.
var _ docgraph.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page load, navigation included.
const DefaultFetchTimeout = docgraph.MainPageTimeout

// serializeJS returns the rendered document including open shadow roots,
// which outerHTML leaves out. Browsers without getHTML fall back to
// outerHTML.
const serializeJS = `() => {
	const roots = [];
	const walk = (node) => {
		node.querySelectorAll('*').forEach((el) => {
			if (el.shadowRoot) {
				roots.push(el.shadowRoot);
				walk(el.shadowRoot);
			}
		});
	};
	walk(document);
	const root = document.documentElement;
	if (typeof root.getHTML !== 'function') {
		return root.outerHTML;
	}
	return '<!DOCTYPE html><html>' + root.getHTML({shadowRoots: roots}) + '</html>';
}`

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	stealth bool
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout  time.Duration
	stealth  bool
	maxPages int64
	logger   *slog.Logger
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithStealth toggles the evasion scripts injected into every page.
// Stealth is on by default; video platforms serve reduced pages to
// detectable headless browsers.
func WithStealth(enabled bool) Option {
	return func(c *fetcherConfig) {
		c.stealth = enabled
	}
}

// WithPageLimit sets how many pages are rendered before the browser is
// recycled. See WithMaxPages.
func WithPageLimit(n int64) Option {
	return func(c *fetcherConfig) {
		c.maxPages = n
	}
}

// WithLogger sets the logger handed to the browser manager.
func WithLogger(l *slog.Logger) Option {
	return func(c *fetcherConfig) {
		c.logger = l
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		timeout:  DefaultFetchTimeout,
		stealth:  true,
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(WithMaxPages(cfg.maxPages), WithManagerLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		manager: manager,
		timeout: cfg.timeout,
		stealth: cfg.stealth,
	}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", docgraph.Errorf(docgraph.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.newPage()
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", contextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", contextErr(ctx, err)
	}

	res, err := page.Eval(serializeJS)
	if err != nil {
		return "", contextErr(ctx, err)
	}
	f.manager.IncrementPageCount()

	return res.Value.Str(), nil
}

func (f *Fetcher) newPage() (*rod.Page, error) {
	browser := f.manager.Browser()
	if browser == nil {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "no active browser")
	}
	if f.stealth {
		return stealth.Page(browser)
	}
	return browser.Page(proto.TargetCreateTarget{})
}

// contextErr prefers the context error so callers can match
// context.DeadlineExceeded and context.Canceled with errors.Is.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
