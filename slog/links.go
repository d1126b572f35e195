package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/docgraph"
)

// Ensure LoggingLinkSelector implements docgraph.LinkSelector.
var _ docgraph.LinkSelector = (*LoggingLinkSelector)(nil)

// LoggingLinkSelector wraps a LinkSelector with logging of sub-page
// discovery.
type LoggingLinkSelector struct {
	next   docgraph.LinkSelector
	logger *slog.Logger
}

// NewLoggingLinkSelector creates a new LoggingLinkSelector.
func NewLoggingLinkSelector(next docgraph.LinkSelector, logger *slog.Logger) *LoggingLinkSelector {
	return &LoggingLinkSelector{next: next, logger: logger}
}

// ExtractLinks logs the number of links discovered and the best score.
func (s *LoggingLinkSelector) ExtractLinks(html string, baseURL string) (links []docgraph.DiscoveredLink, err error) {
	defer func(begin time.Time) {
		top := 0
		if len(links) > 0 {
			top = links[0].Score
		}
		s.logger.Info("link discovery",
			"selector", s.next.Name(),
			"url", baseURL,
			"count", len(links),
			"top_score", top,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ExtractLinks(html, baseURL)
}

// Name delegates to the wrapped selector.
func (s *LoggingLinkSelector) Name() string {
	return s.next.Name()
}
