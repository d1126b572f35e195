// Package crawl orchestrates web scraping: fetching a page, discovering and
// fetching its most important sub-pages, collecting repositories and
// scraping video pages.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/docgraph"
)

// Frontier sizing for sub-page discovery.
const (
	frontierExpectedURLs      = 1000
	frontierFalsePositiveRate = 0.01
)

var _ docgraph.SiteScraper = (*SiteScraper)(nil)

// SiteScraper collects a page and its most important sub-pages, or routes
// repository URLs to a RepositoryCollector.
type SiteScraper struct {
	Fetcher       docgraph.Fetcher
	PageReader    docgraph.PageReader
	SubpageReader docgraph.PageReader
	LinkSelector  docgraph.LinkSelector

	// RenderFetcher, if set, also fetches the main page with JavaScript
	// rendering. It replaces Fetcher for the whole scrape when rendering
	// adds substantial content.
	RenderFetcher docgraph.Fetcher

	// Extractor and Converter isolate sub-page content when no content
	// selector matches. Both must be set to be used.
	Extractor docgraph.Extractor
	Converter docgraph.Converter

	Repositories docgraph.RepositoryCollector
	RateLimiter  docgraph.DomainLimiter
	Robots       *RobotsPolicy
	Filter       *docgraph.URLFilter

	MaxSubpages int
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// Scrape fetches url and its sub-pages. Only a main page failure is
// returned as an error.
func (s *SiteScraper) Scrape(ctx context.Context, rawURL string) (*docgraph.SiteScrape, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, docgraph.Errorf(docgraph.EINVALID, "invalid URL %q", rawURL)
	}
	pageURL := u.String()

	fetcher, html, err := s.fetchMain(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	page, err := s.PageReader.ReadPage(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pageURL, err)
	}

	title := page.Title
	if title == "" {
		title = u.Host
	}
	result := &docgraph.SiteScrape{
		URL:     pageURL,
		Title:   title,
		Outcome: docgraph.Succeeded(),
	}

	var units []docgraph.ContentUnit
	result.Stats.Total++
	if text := strings.TrimSpace(page.Text); text != "" {
		result.Stats.Successful++
		units = append(units, docgraph.ContentUnit{
			Name:    title + ".txt",
			URL:     pageURL,
			Content: fmt.Sprintf("Title: %s\nURL: %s\n\n%s", title, pageURL, text),
		})
	} else {
		result.Stats.Empty++
		result.Outcome = result.Outcome.Merge(docgraph.Degraded("main page has no visible text"))
	}

	if owner, repo, ok := docgraph.ParseRepositoryURL(pageURL); ok && s.Repositories != nil {
		result.Mode = docgraph.ModeRepository
		units = append(units, s.collectRepository(ctx, owner, repo, result)...)
	} else {
		result.Mode = docgraph.ModeDeepCrawl
		units = append(units, s.scrapeSubpages(ctx, fetcher, html, pageURL, result)...)
	}

	result.Content, result.Units = Combine(pageURL, units)
	result.Stats = result.Stats.Clamp()
	return result, nil
}

// fetchMain fetches the main page and picks the fetcher for the rest of the
// scrape.
func (s *SiteScraper) fetchMain(ctx context.Context, pageURL string) (docgraph.Fetcher, string, error) {
	html, err := s.fetch(ctx, s.Fetcher, pageURL, docgraph.MainPageTimeout)
	if err != nil {
		if s.RenderFetcher == nil {
			return nil, "", err
		}
		s.logger().Warn("plain fetch failed, trying rendered fetch", "url", pageURL, "error", err)
		html, err = s.fetch(ctx, s.RenderFetcher, pageURL, docgraph.MainPageTimeout)
		if err != nil {
			return nil, "", err
		}
		return s.RenderFetcher, html, nil
	}

	if s.RenderFetcher == nil {
		return s.Fetcher, html, nil
	}

	rendered, err := s.fetch(ctx, s.RenderFetcher, pageURL, docgraph.MainPageTimeout)
	if err != nil {
		s.logger().Warn("rendered fetch failed", "url", pageURL, "error", err)
		return s.Fetcher, html, nil
	}
	if ContentDiffers(html, rendered, pageURL, s.PageReader) {
		s.logger().Debug("using rendered pages", "url", pageURL)
		return s.RenderFetcher, rendered, nil
	}
	return s.Fetcher, html, nil
}

func (s *SiteScraper) collectRepository(ctx context.Context, owner, repo string, result *docgraph.SiteScrape) []docgraph.ContentUnit {
	units, stats, err := s.Repositories.Collect(ctx, owner, repo)
	if err != nil {
		s.logger().Warn("repository collection failed", "owner", owner, "repo", repo, "error", err)
		result.Outcome = result.Outcome.Merge(docgraph.Degraded("repository details unavailable: " + err.Error()))
	}

	result.Stats.Total += stats.Total
	result.Stats.Successful += stats.Successful
	result.Stats.Empty += stats.Empty
	result.Stats.Failed += stats.Failed
	if stats.Failed > 0 {
		result.Outcome = result.Outcome.Merge(docgraph.Degraded(fmt.Sprintf("%d of %d repository files failed", stats.Failed, stats.Total)))
	}
	return units
}

func (s *SiteScraper) scrapeSubpages(ctx context.Context, fetcher docgraph.Fetcher, html, pageURL string, result *docgraph.SiteScrape) []docgraph.ContentUnit {
	if s.LinkSelector == nil {
		return nil
	}

	links, err := s.LinkSelector.ExtractLinks(html, pageURL)
	if err != nil {
		s.logger().Warn("sub-page discovery failed", "url", pageURL, "error", err)
		result.Outcome = result.Outcome.Merge(docgraph.Degraded("sub-page discovery failed"))
		return nil
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	for _, link := range links {
		if s.Filter.Match(link.URL) {
			frontier.Push(link)
		}
	}

	limit := s.MaxSubpages
	if limit <= 0 {
		limit = docgraph.DefaultMaxSubpages
	}

	var units []docgraph.ContentUnit
	failed, attempted := 0, 0
	for attempted < limit {
		link, ok := frontier.Pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			result.Outcome = result.Outcome.Merge(docgraph.Degraded("sub-page scraping interrupted"))
			break
		}
		if s.Robots != nil && !s.Robots.Allowed(ctx, link.URL) {
			s.logger().Debug("skipping disallowed sub-page", "url", link.URL)
			continue
		}
		if s.RateLimiter != nil {
			if err := WaitURL(ctx, s.RateLimiter, link.URL); err != nil {
				if ctx.Err() != nil {
					result.Outcome = result.Outcome.Merge(docgraph.Degraded("sub-page scraping interrupted"))
					break
				}
				continue
			}
		}

		attempted++
		result.Stats.Total++
		result.Subpages = append(result.Subpages, link)

		subHTML, err := s.fetch(ctx, fetcher, link.URL, docgraph.SubpageTimeout)
		if err != nil {
			failed++
			result.Stats.Failed++
			s.logger().Warn("sub-page fetch failed", "url", link.URL, "error", err)
			continue
		}

		title, text := s.subpageText(subHTML, link)
		if text == "" {
			result.Stats.Empty++
			s.logger().Debug("sub-page has no text", "url", link.URL)
			continue
		}
		result.Stats.Successful++
		units = append(units, docgraph.ContentUnit{
			Name:    fmt.Sprintf("subpage_%d_%dpoints.txt", attempted, link.Score),
			URL:     link.URL,
			Content: subpageContent(title, text, link),
		})
	}

	if failed > 0 {
		result.Outcome = result.Outcome.Merge(docgraph.Degraded(fmt.Sprintf("%d of %d sub-pages failed", failed, attempted)))
	}
	s.logger().Debug("sub-pages scraped", "url", pageURL, "discovered", len(links), "attempted", attempted, "kept", len(units))
	return units
}

// subpageText picks the sub-page text: the main content area, then the
// extractor's content, then all visible text.
func (s *SiteScraper) subpageText(html string, link docgraph.DiscoveredLink) (string, string) {
	reader := s.SubpageReader
	if reader == nil {
		reader = s.PageReader
	}
	page, err := reader.ReadPage(html, link.URL)
	if err != nil {
		return "", ""
	}

	title := page.Title
	if title == "" {
		title = link.Text
	}

	text := strings.TrimSpace(page.Main)
	if text == "" && s.Extractor != nil && s.Converter != nil {
		text = s.extract(html, link.URL)
	}
	if text == "" {
		text = strings.TrimSpace(page.Text)
	}
	return title, truncateContent(text, docgraph.SubpageContentLimit)
}

func (s *SiteScraper) extract(html, pageURL string) string {
	res, err := s.Extractor.Extract(html)
	if err != nil || strings.TrimSpace(res.ContentHTML) == "" {
		return ""
	}
	md, err := s.Converter.Convert(res.ContentHTML)
	if err != nil {
		s.logger().Debug("converting extracted content failed", "url", pageURL, "error", err)
		return ""
	}
	return strings.TrimSpace(md)
}

func subpageContent(title, text string, link docgraph.DiscoveredLink) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", docgraph.LabelSubpageTitle, title)
	fmt.Fprintf(&sb, "%s %s\n", docgraph.LabelSubpageURL, link.URL)
	fmt.Fprintf(&sb, "%s %d\n", docgraph.LabelScore, link.Score)
	fmt.Fprintf(&sb, "%s %s\n", docgraph.LabelKeywords, strings.Join(link.Keywords, ", "))
	fmt.Fprintf(&sb, "%s %s\n\n", docgraph.LabelLinkText, link.Text)
	sb.WriteString(docgraph.LabelPageContent)
	sb.WriteString("\n")
	sb.WriteString(text)
	return sb.String()
}

func truncateContent(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func (s *SiteScraper) fetch(ctx context.Context, f docgraph.Fetcher, pageURL string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, pageURL, f.Fetch, s.Logger, delays)
}

func (s *SiteScraper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
