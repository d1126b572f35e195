package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgraph"
)

// Ensure LoggingRepositoryCollector implements docgraph.RepositoryCollector.
var _ docgraph.RepositoryCollector = (*LoggingRepositoryCollector)(nil)

// LoggingRepositoryCollector wraps a RepositoryCollector with logging.
type LoggingRepositoryCollector struct {
	next   docgraph.RepositoryCollector
	logger *slog.Logger
}

// NewLoggingRepositoryCollector creates a new LoggingRepositoryCollector.
func NewLoggingRepositoryCollector(next docgraph.RepositoryCollector, logger *slog.Logger) *LoggingRepositoryCollector {
	return &LoggingRepositoryCollector{next: next, logger: logger}
}

// Collect delegates to the wrapped collector and logs the operation.
func (c *LoggingRepositoryCollector) Collect(ctx context.Context, owner, repo string) (units []docgraph.ContentUnit, stats docgraph.ExtractionStats, err error) {
	defer func(begin time.Time) {
		c.logger.Info("repository collection",
			"repo", owner+"/"+repo,
			"units", len(units),
			"total", stats.Total,
			"failed", stats.Failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Collect(ctx, owner, repo)
}
