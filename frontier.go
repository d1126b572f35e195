package docgraph

import "context"

// URLFrontier is the queue of discovered sub-page candidates. It hands out
// the best-scoring link first and never queues the same URL twice.
type URLFrontier interface {
	// Push queues link and reports false when its URL was queued before.
	Push(link DiscoveredLink) bool

	// Pop removes the best-scoring link, ties going to the earliest push.
	// ok is false on an empty frontier.
	Pop() (link DiscoveredLink, ok bool)

	// Len is the number of links still queued.
	Len() int

	// Seen reports whether url was ever pushed.
	Seen(url string) bool
}

// DomainLimiter spaces out requests to one host.
type DomainLimiter interface {
	// Wait returns once a request to domain may proceed, or with ctx's
	// error when ctx ends first.
	Wait(ctx context.Context, domain string) error
}
