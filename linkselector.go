package docgraph

import "regexp"

// DiscoveredLink is a same-site link scored for its likely importance.
type DiscoveredLink struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`

	// Score is the importance score; links scoring zero are never returned.
	Score int `json:"score"`

	// Keywords lists the importance keywords that matched.
	Keywords []string `json:"keywords,omitempty"`
}

// LinkSelector discovers important sub-pages of a page.
type LinkSelector interface {
	// ExtractLinks parses HTML and returns scored links, highest first.
	// The baseURL is used to resolve relative URLs and filter other hosts.
	ExtractLinks(html string, baseURL string) ([]DiscoveredLink, error)

	// Name returns the selector's identifier.
	Name() string
}

// URLFilter specifies patterns for including and excluding sub-page URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 && !matchAny(f.Include, url) {
		return false
	}
	return !matchAny(f.Exclude, url)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
