package docgraph

import "context"

// Fetcher retrieves the HTML of a web page.
// Implementations range from plain HTTP clients to browser automation for
// JavaScript-rendered pages.
type Fetcher interface {
	// Fetch returns the decoded HTML body of the page at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
