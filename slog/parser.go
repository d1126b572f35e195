package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgraph"
)

// Ensure LoggingParser implements docgraph.DocumentParser.
var _ docgraph.DocumentParser = (*LoggingParser)(nil)

// LoggingParser wraps a DocumentParser with logging of page statistics.
type LoggingParser struct {
	next   docgraph.DocumentParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next docgraph.DocumentParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the outcome.
func (p *LoggingParser) Parse(ctx context.Context, name string, data []byte) (doc *docgraph.ExtractedDocument) {
	defer func(begin time.Time) {
		attrs := []any{"name", name, "bytes", len(data)}
		if doc != nil {
			attrs = append(attrs,
				"pages", doc.Stats.Total,
				"successful", doc.Stats.Successful,
				"empty", doc.Stats.Empty,
				"failed", doc.Stats.Failed,
				"status", doc.Outcome.Status,
			)
		}
		attrs = append(attrs, "duration", time.Since(begin))
		p.logger.Info("parse", attrs...)
	}(time.Now())
	return p.next.Parse(ctx, name, data)
}
