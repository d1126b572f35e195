package slog

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/docgraph"
)

// Ensure LoggingAnalyzer implements docgraph.Analyzer.
var _ docgraph.Analyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps an Analyzer with logging.
type LoggingAnalyzer struct {
	next   docgraph.Analyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next docgraph.Analyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// Analyze delegates to the wrapped analyzer and logs the extraction size.
func (a *LoggingAnalyzer) Analyze(ctx context.Context, text, name string) (result *docgraph.AnalysisResult, err error) {
	defer func(begin time.Time) {
		var entities, concepts, relationships int
		var confidence float64
		if result != nil {
			entities, concepts, relationships = len(result.Entities), len(result.Concepts), len(result.Relationships)
			confidence = result.Confidence
		}
		a.logger.Info("analyze",
			"name", name,
			"chars", utf8.RuneCountInString(text),
			"entities", entities,
			"concepts", concepts,
			"relationships", relationships,
			"confidence", confidence,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Analyze(ctx, text, name)
}
