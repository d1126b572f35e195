package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgraph"
)

// Compile-time interface verification.
var (
	_ docgraph.SiteScraper       = (*LoggingSiteScraper)(nil)
	_ docgraph.VideoScraper      = (*LoggingVideoScraper)(nil)
	_ docgraph.TranscriptService = (*LoggingTranscripts)(nil)
)

// LoggingSiteScraper wraps a SiteScraper with logging.
type LoggingSiteScraper struct {
	next   docgraph.SiteScraper
	logger *slog.Logger
}

// NewLoggingSiteScraper creates a new LoggingSiteScraper.
func NewLoggingSiteScraper(next docgraph.SiteScraper, logger *slog.Logger) *LoggingSiteScraper {
	return &LoggingSiteScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs the unit counts.
func (s *LoggingSiteScraper) Scrape(ctx context.Context, url string) (result *docgraph.SiteScrape, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url}
		if result != nil {
			attrs = append(attrs,
				"mode", result.Mode,
				"units", len(result.Units),
				"successful", result.Stats.Successful,
				"failed", result.Stats.Failed,
				"status", result.Outcome.Status,
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("scrape", attrs...)
	}(time.Now())
	return s.next.Scrape(ctx, url)
}

// LoggingVideoScraper wraps a VideoScraper with logging.
type LoggingVideoScraper struct {
	next   docgraph.VideoScraper
	logger *slog.Logger
}

// NewLoggingVideoScraper creates a new LoggingVideoScraper.
func NewLoggingVideoScraper(next docgraph.VideoScraper, logger *slog.Logger) *LoggingVideoScraper {
	return &LoggingVideoScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs the scrape score.
func (s *LoggingVideoScraper) Scrape(ctx context.Context, url string) (info *docgraph.VideoInfo, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url}
		if info != nil {
			attrs = append(attrs,
				"platform", info.Platform,
				"score", info.ScrapeScore,
				"transcript", info.HasTranscript(),
				"missing", len(info.Missing),
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("video scrape", attrs...)
	}(time.Now())
	return s.next.Scrape(ctx, url)
}

// LoggingTranscripts wraps a TranscriptService with logging.
type LoggingTranscripts struct {
	next   docgraph.TranscriptService
	logger *slog.Logger
}

// NewLoggingTranscripts creates a new LoggingTranscripts.
func NewLoggingTranscripts(next docgraph.TranscriptService, logger *slog.Logger) *LoggingTranscripts {
	return &LoggingTranscripts{next: next, logger: logger}
}

// Transcript delegates to the wrapped service and logs the track found.
func (t *LoggingTranscripts) Transcript(ctx context.Context, videoID string) (text, language string, err error) {
	defer func(begin time.Time) {
		t.logger.Info("transcript",
			"video", videoID,
			"language", language,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Transcript(ctx, videoID)
}
