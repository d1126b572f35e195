// Package readability is the alternative main-content extractor for
// sub-pages, based on the Firefox Reader View algorithm.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/docgraph"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements docgraph.Extractor at compile time.
var _ docgraph.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct {
	pageURL *url.URL
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPageURL resolves relative links in the article against u.
func WithPageURL(u *url.URL) Option {
	return func(e *Extractor) {
		e.pageURL = u
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content. Articles with a
// title but no readable body yield an empty ContentHTML.
func (e *Extractor) Extract(rawHTML string) (*docgraph.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docgraph.Errorf(docgraph.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, err
	}

	content := article.Content
	if strings.TrimSpace(article.TextContent) == "" {
		content = ""
	}

	return &docgraph.ExtractResult{
		Title:       article.Title,
		ContentHTML: content,
	}, nil
}
