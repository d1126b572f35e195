package goquery

import "github.com/fwojciec/docgraph"

var _ docgraph.PageReader = (*PageReader)(nil)

// PageReader strips page chrome and reads the remaining text.
type PageReader struct {
	chrome    []string
	selectors []string
}

// ReaderOption configures a PageReader.
type ReaderOption func(*PageReader)

// ForSubpages removes sidebars as well and looks for a main content area.
func ForSubpages() ReaderOption {
	return func(r *PageReader) {
		r.chrome = SubpageChrome
		r.selectors = ContentSelectors
	}
}

// WithContentSelectors overrides the selectors tried for the main content
// area.
func WithContentSelectors(selectors ...string) ReaderOption {
	return func(r *PageReader) {
		r.selectors = selectors
	}
}

// NewPageReader returns a reader for main pages unless configured
// otherwise.
func NewPageReader(opts ...ReaderOption) *PageReader {
	r := &PageReader{chrome: PageChrome}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadPage parses html and returns its title and text.
func (r *PageReader) ReadPage(html, pageURL string) (*docgraph.PageText, error) {
	p, err := ParsePage(html, pageURL)
	if err != nil {
		return nil, err
	}

	title := p.Title()
	p.Strip(r.chrome...)

	out := &docgraph.PageText{
		Title: title,
		Text:  p.Text(),
		HTML:  p.HTML(),
	}
	if len(r.selectors) > 0 {
		out.Main = p.MainContent(r.selectors)
	}
	return out, nil
}
