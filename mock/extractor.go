package mock

import "github.com/fwojciec/docgraph"

var _ docgraph.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docgraph.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docgraph.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docgraph.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ docgraph.PageReader = (*PageReader)(nil)

// PageReader is a mock implementation of docgraph.PageReader.
type PageReader struct {
	ReadPageFn func(html, pageURL string) (*docgraph.PageText, error)
}

func (r *PageReader) ReadPage(html, pageURL string) (*docgraph.PageText, error) {
	return r.ReadPageFn(html, pageURL)
}
