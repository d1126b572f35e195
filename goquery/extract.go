package goquery

import (
	"net/url"
	"strings"
)

// skippedHrefs mark anchors that never lead to a fetchable page.
var skippedHrefs = []string{"javascript:", "mailto:", "tel:", "ftp:", "data:", "#top", "#bottom", "void(0)"}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed or if the resolved URL
// is self-referential (same as base URL after stripping fragment).
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isSkippedHref reports whether an href is a fragment-only anchor or uses a
// scheme that cannot be fetched.
func isSkippedHref(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	if strings.HasPrefix(href, "#") {
		return true
	}
	for _, skip := range skippedHrefs {
		if strings.Contains(href, skip) {
			return true
		}
	}
	return false
}

// pathDepth counts the segments of a URL path; the root has depth one.
func pathDepth(p string) int {
	return len(strings.Split(strings.Trim(p, "/"), "/"))
}
