package mock

import (
	"context"

	"github.com/fwojciec/docgraph"
)

// Doubles for the small single-purpose adapters used by the scrapers and
// the pipeline.

var (
	_ docgraph.Fetcher       = (*Fetcher)(nil)
	_ docgraph.Converter     = (*Converter)(nil)
	_ docgraph.TokenCounter  = (*TokenCounter)(nil)
	_ docgraph.URLFrontier   = (*URLFrontier)(nil)
	_ docgraph.DomainLimiter = (*DomainLimiter)(nil)
)

type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

// Close succeeds when CloseFn is unset.
func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

type URLFrontier struct {
	PushFn func(link docgraph.DiscoveredLink) bool
	PopFn  func() (docgraph.DiscoveredLink, bool)
	LenFn  func() int
	SeenFn func(url string) bool
}

func (f *URLFrontier) Push(link docgraph.DiscoveredLink) bool { return f.PushFn(link) }

func (f *URLFrontier) Pop() (docgraph.DiscoveredLink, bool) { return f.PopFn() }

func (f *URLFrontier) Len() int { return f.LenFn() }

func (f *URLFrontier) Seen(url string) bool { return f.SeenFn(url) }

type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
