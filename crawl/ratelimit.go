package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/docgraph"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-host rate used for sub-page fetches.
const DefaultRequestsPerSecond = 2.0

var _ docgraph.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter keeps one token bucket per host, without bursts. Hosts that
// differ only by case or a leading "www." share a bucket. A rate of zero or
// less disables limiting.
type DomainLimiter struct {
	limit rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewDomainLimiter allows rps requests per second to each host.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{limit: limit, buckets: make(map[string]*rate.Limiter)}
}

// Wait blocks until domain has a free token or ctx ends.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.bucket(domain).Wait(ctx)
}

func (d *DomainLimiter) bucket(domain string) *rate.Limiter {
	key := strings.TrimPrefix(strings.ToLower(domain), "www.")

	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[key]
	if !ok {
		b = rate.NewLimiter(d.limit, 1)
		d.buckets[key] = b
	}
	return b
}

// WaitURL waits on limiter for the host of rawURL.
func WaitURL(ctx context.Context, limiter docgraph.DomainLimiter, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return docgraph.Errorf(docgraph.EINVALID, "invalid URL %q", rawURL)
	}
	return limiter.Wait(ctx, u.Host)
}
