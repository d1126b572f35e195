package mock

import (
	"context"

	"github.com/fwojciec/docgraph"
)

// Compile-time interface verification.
var (
	_ docgraph.SiteScraper         = (*SiteScraper)(nil)
	_ docgraph.RepositoryCollector = (*RepositoryCollector)(nil)
	_ docgraph.VideoScraper        = (*VideoScraper)(nil)
	_ docgraph.TranscriptService   = (*TranscriptService)(nil)
	_ docgraph.DocumentParser      = (*DocumentParser)(nil)
)

// SiteScraper is a mock implementation of docgraph.SiteScraper.
type SiteScraper struct {
	ScrapeFn func(ctx context.Context, url string) (*docgraph.SiteScrape, error)
}

func (s *SiteScraper) Scrape(ctx context.Context, url string) (*docgraph.SiteScrape, error) {
	return s.ScrapeFn(ctx, url)
}

// RepositoryCollector is a mock implementation of docgraph.RepositoryCollector.
type RepositoryCollector struct {
	CollectFn func(ctx context.Context, owner, repo string) ([]docgraph.ContentUnit, docgraph.ExtractionStats, error)
}

func (c *RepositoryCollector) Collect(ctx context.Context, owner, repo string) ([]docgraph.ContentUnit, docgraph.ExtractionStats, error) {
	return c.CollectFn(ctx, owner, repo)
}

// VideoScraper is a mock implementation of docgraph.VideoScraper.
type VideoScraper struct {
	ScrapeFn func(ctx context.Context, url string) (*docgraph.VideoInfo, error)
}

func (s *VideoScraper) Scrape(ctx context.Context, url string) (*docgraph.VideoInfo, error) {
	return s.ScrapeFn(ctx, url)
}

// TranscriptService is a mock implementation of docgraph.TranscriptService.
type TranscriptService struct {
	TranscriptFn func(ctx context.Context, videoID string) (string, string, error)
}

func (s *TranscriptService) Transcript(ctx context.Context, videoID string) (string, string, error) {
	return s.TranscriptFn(ctx, videoID)
}

// DocumentParser is a mock implementation of docgraph.DocumentParser.
type DocumentParser struct {
	ParseFn func(ctx context.Context, name string, data []byte) *docgraph.ExtractedDocument
}

func (p *DocumentParser) Parse(ctx context.Context, name string, data []byte) *docgraph.ExtractedDocument {
	return p.ParseFn(ctx, name, data)
}

var _ docgraph.VideoMetadataExtractor = (*VideoMetadataExtractor)(nil)

// VideoMetadataExtractor is a mock implementation of docgraph.VideoMetadataExtractor.
type VideoMetadataExtractor struct {
	ExtractFn func(html, pageURL string, b *docgraph.VideoInfoBuilder) error
}

func (e *VideoMetadataExtractor) Extract(html, pageURL string, b *docgraph.VideoInfoBuilder) error {
	return e.ExtractFn(html, pageURL, b)
}
