package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/docgraph"
)

var _ docgraph.VideoScraper = (*VideoScraper)(nil)

// VideoScraper extracts metadata from video pages and attaches transcripts
// where the platform offers them.
type VideoScraper struct {
	// Fetchers holds the fetcher for each platform. PlatformGeneric is used
	// for platforms without their own entry.
	Fetchers map[docgraph.Platform]docgraph.Fetcher

	// Extractors holds the metadata extractor for each platform, with the
	// same PlatformGeneric fallback.
	Extractors map[docgraph.Platform]docgraph.VideoMetadataExtractor

	Transcripts docgraph.TranscriptService

	// TranscriptTimeout bounds the transcript lookup. Zero means
	// docgraph.TranscriptTimeout.
	TranscriptTimeout time.Duration

	Logger *slog.Logger
}

// Scrape fetches the video page and extracts what it can. An error is
// returned only when the page could not be fetched and no transcript was
// found either.
func (s *VideoScraper) Scrape(ctx context.Context, rawURL string) (*docgraph.VideoInfo, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !docgraph.IsVideoURL(rawURL) {
		return nil, docgraph.Errorf(docgraph.EINVALID, "not a video URL: %q", rawURL)
	}

	platform := docgraph.PlatformFor(rawURL)
	b := docgraph.NewVideoInfoBuilder(rawURL, platform)

	html, fetchErr := s.fetchPage(ctx, platform, rawURL)
	if fetchErr != nil {
		s.logger().Warn("video page fetch failed", "url", rawURL, "platform", platform, "error", fetchErr)
	} else if extractor := pick(s.Extractors, platform); extractor != nil {
		if err := extractor.Extract(html, rawURL, b); err != nil {
			s.logger().Warn("video metadata extraction failed", "url", rawURL, "error", err)
		}
	}

	transcribed := s.attachTranscript(ctx, platform, rawURL, b)

	if fetchErr != nil && !transcribed {
		return nil, fmt.Errorf("fetching video page: %w", fetchErr)
	}
	return b.Finalize(), nil
}

func (s *VideoScraper) fetchPage(ctx context.Context, platform docgraph.Platform, rawURL string) (string, error) {
	fetcher := pick(s.Fetchers, platform)
	if fetcher == nil {
		return "", docgraph.Errorf(docgraph.EINTERNAL, "no fetcher for platform %s", platform)
	}
	ctx, cancel := context.WithTimeout(ctx, docgraph.VideoPageTimeout)
	defer cancel()
	return fetcher.Fetch(ctx, rawURL)
}

func (s *VideoScraper) attachTranscript(ctx context.Context, platform docgraph.Platform, rawURL string, b *docgraph.VideoInfoBuilder) bool {
	if platform != docgraph.PlatformYouTube || s.Transcripts == nil {
		return false
	}
	id, ok := docgraph.YouTubeVideoID(rawURL)
	if !ok {
		return false
	}

	timeout := s.TranscriptTimeout
	if timeout <= 0 {
		timeout = docgraph.TranscriptTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, lang, err := s.Transcripts.Transcript(ctx, id)
	if err != nil {
		s.logger().Debug("no transcript", "video", id, "error", err)
		return false
	}
	b.Transcript(text, lang)
	return true
}

func (s *VideoScraper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// pick returns the platform's entry or the generic one.
func pick[T any](m map[docgraph.Platform]T, platform docgraph.Platform) T {
	if v, ok := m[platform]; ok {
		return v
	}
	return m[docgraph.PlatformGeneric]
}
