package crawl

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// DefaultRobotsAgent is the user agent matched against robots.txt groups.
const DefaultRobotsAgent = "docgraph"

// RobotsPolicy answers whether robots.txt allows fetching a URL. Rules are
// fetched once per host. Hosts whose robots.txt cannot be loaded allow
// everything.
type RobotsPolicy struct {
	client *http.Client
	agent  string

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

// NewRobotsPolicy returns a policy matching the given user agent. If client
// is nil, a client with a 10 second timeout is used.
func NewRobotsPolicy(client *http.Client, agent string) *RobotsPolicy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if agent == "" {
		agent = DefaultRobotsAgent
	}
	return &RobotsPolicy{
		client: client,
		agent:  agent,
		groups: make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether rawURL may be fetched.
func (p *RobotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	group := p.group(ctx, u)
	if group == nil {
		return true
	}

	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return group.Test(target)
}

func (p *RobotsPolicy) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	p.mu.Lock()
	group, ok := p.groups[key]
	p.mu.Unlock()
	if ok {
		return group
	}

	group = p.load(ctx, key+"/robots.txt")

	p.mu.Lock()
	p.groups[key] = group
	p.mu.Unlock()
	return group
}

func (p *RobotsPolicy) load(ctx context.Context, robotsURL string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(p.agent)
}
