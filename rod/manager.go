package rod

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of rendered pages after which the Chrome
// process is replaced.
const DefaultMaxPages = 75

// chromeFlags keep background tabs rendering at full speed inside
// containers with a small /dev/shm.
var chromeFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// session is one running Chrome process and the connection to it.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func startSession() (*session, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, flag := range chromeFlags {
		l = l.Set(flag)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &session{browser: browser, launcher: l}, nil
}

func (s *session) stop() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// BrowserManager owns the Chrome process behind a Fetcher and replaces it
// once maxPages pages have been rendered, which bounds Chrome's memory
// during long deep crawls.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	current  *session
	rendered atomic.Int64
	maxPages int64
	closed   atomic.Bool
	logger   *slog.Logger
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages overrides DefaultMaxPages.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithManagerLogger sets the logger that reports browser restarts.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = l
	}
}

// NewBrowserManager launches headless Chrome. The caller must Close the
// manager to stop the process.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(bm)
	}

	s, err := startSession()
	if err != nil {
		return nil, err
	}
	bm.current = s
	return bm, nil
}

// Browser returns the running browser, restarting Chrome first when the
// page budget is spent. Report each rendered page with IncrementPageCount.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.current == nil {
		return nil
	}
	if bm.maxPages > 0 && bm.rendered.Load() >= bm.maxPages {
		bm.restart()
	}
	return bm.current.browser
}

// IncrementPageCount records one rendered page.
func (bm *BrowserManager) IncrementPageCount() {
	bm.rendered.Add(1)
}

// Close stops Chrome. Calls after the first are no-ops.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.current == nil {
		return nil
	}
	err := bm.current.stop()
	bm.current = nil
	return err
}

// restart swaps in a fresh Chrome process. When the new process cannot be
// started the old one stays in service. Callers hold mu.
func (bm *BrowserManager) restart() {
	next, err := startSession()
	if err != nil {
		bm.logger.Warn("browser restart failed, reusing current browser", "pages", bm.rendered.Load(), "error", err)
		return
	}

	_ = bm.current.stop()
	bm.current = next
	bm.logger.Debug("browser recycled", "pages", bm.rendered.Swap(0))
}

// LauncherPID returns the Chrome process ID, or 0 once closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil {
		return 0
	}
	return bm.current.launcher.PID()
}
