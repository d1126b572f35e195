// Package http provides the HTTP side of docgraph: a page fetcher for
// static sites and video platforms, the YouTube transcript client and the
// JSON API server.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docgraph"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies requests as a desktop browser; several video
// platforms serve stripped pages to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure Fetcher implements docgraph.Fetcher at compile time.
var _ docgraph.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for static sites only.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	header  http.Header
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHeader adds a request header sent with every fetch.
func WithHeader(key, value string) Option {
	return func(f *Fetcher) {
		f.header.Set(key, value)
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return WithHeader("User-Agent", ua)
}

// WithClient sends requests through a copy of c carrying the configured
// timeout. c itself is not modified.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		header:  http.Header{},
	}
	f.header.Set("User-Agent", DefaultUserAgent)
	f.header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	f.header.Set("Accept-Encoding", "gzip")
	for _, opt := range opts {
		opt(f)
	}

	client := http.Client{}
	if f.client != nil {
		client = *f.client
	}
	client.Timeout = f.timeout
	f.client = &client

	return f
}

// Fetch retrieves the page at url and returns its body decoded to UTF-8.
// Gzip bodies are decompressed here because an explicit Accept-Encoding
// disables the transport's transparent decompression.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", docgraph.Errorf(docgraph.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header = f.header.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", docgraph.Errorf(docgraph.ENOTFOUND, "HTTP 404 for %s", url)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	body := raw
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		if decompressed, err := gunzip(raw); err == nil && looksLikeMarkup(decompressed) {
			body = decompressed
		}
	}

	return decodeCharset(body, resp.Header.Get("Content-Type")), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// looksLikeMarkup reports whether decompressed data starts like an HTML or
// XML document rather than binary noise.
func looksLikeMarkup(data []byte) bool {
	head := strings.TrimSpace(string(data[:min(len(data), 100)]))
	return strings.HasPrefix(head, "<") || strings.Contains(strings.ToLower(head), "html")
}

// decodeCharset converts body to UTF-8 using the Content-Type charset or a
// sniffed meta tag. Undecodable bodies are returned with invalid bytes
// replaced.
func decodeCharset(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return docgraph.DecodeText(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return docgraph.DecodeText(body)
	}
	return docgraph.DecodeText(decoded)
}
