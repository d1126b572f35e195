package mock

import "github.com/fwojciec/docgraph"

var _ docgraph.LinkSelector = (*LinkSelector)(nil)

// LinkSelector is a mock implementation of docgraph.LinkSelector.
type LinkSelector struct {
	ExtractLinksFn func(html string, baseURL string) ([]docgraph.DiscoveredLink, error)
	NameFn         func() string
}

func (s *LinkSelector) ExtractLinks(html string, baseURL string) ([]docgraph.DiscoveredLink, error) {
	return s.ExtractLinksFn(html, baseURL)
}

func (s *LinkSelector) Name() string {
	return s.NameFn()
}
