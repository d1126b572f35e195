package docgraph

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"
)

// ScrapeMode names the strategy that produced a site scrape.
type ScrapeMode string

// Scrape modes.
const (
	ModeRepository ScrapeMode = "github_specialized"
	ModeDeepCrawl  ScrapeMode = "universal_deep_crawling"
)

// Timeouts applied to individual fetches during scraping.
const (
	MainPageTimeout   = 30 * time.Second
	SubpageTimeout    = 15 * time.Second
	RepositoryTimeout = 10 * time.Second
	VideoPageTimeout  = 15 * time.Second
	TranscriptTimeout = 10 * time.Second
)

// DefaultMaxSubpages is the number of sub-pages fetched per site.
const DefaultMaxSubpages = 8

// SubpageContentLimit caps the text kept per sub-page.
const SubpageContentLimit = 15000

// SiteScrape is the content collected from a web page, its sub-pages or a
// source repository.
type SiteScrape struct {
	URL      string           `json:"url"`
	Title    string           `json:"title"`
	Mode     ScrapeMode       `json:"mode"`
	Units    []ContentUnit    `json:"units"`
	Subpages []DiscoveredLink `json:"subpages,omitempty"`

	// Content is the combined text of the deduplicated units.
	Content string `json:"content"`

	Stats   ExtractionStats `json:"stats"`
	Outcome Outcome         `json:"outcome"`
}

// VirtualName returns the file name under which the scrape is analyzed and
// stored: the mode plus the last path segment of the URL, or "website".
func (s *SiteScrape) VirtualName() string {
	segment := "website"
	if u, err := url.Parse(s.URL); err == nil {
		if base := path.Base(strings.TrimRight(u.Path, "/")); base != "." && base != "/" && base != "" {
			segment = base
		}
	}
	return "scraped_" + string(s.Mode) + "_" + segment + ".txt"
}

// SiteScraper collects the text of a web page and its important sub-pages.
type SiteScraper interface {
	// Scrape returns an error only when the main page cannot be fetched.
	// Sub-page failures are reflected in the stats and outcome.
	Scrape(ctx context.Context, url string) (*SiteScrape, error)
}

// RepositoryCollector gathers metadata, README and key files of a hosted
// source repository.
type RepositoryCollector interface {
	Collect(ctx context.Context, owner, repo string) ([]ContentUnit, ExtractionStats, error)
}
