package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgraph"
)

// Ensure LoggingReportService implements docgraph.ReportService.
var _ docgraph.ReportService = (*LoggingReportService)(nil)

// LoggingReportService wraps a ReportService with logging of every run.
type LoggingReportService struct {
	next   docgraph.ReportService
	logger *slog.Logger
}

// NewLoggingReportService creates a new LoggingReportService.
func NewLoggingReportService(next docgraph.ReportService, logger *slog.Logger) *LoggingReportService {
	return &LoggingReportService{next: next, logger: logger}
}

// AnalyzeFile delegates to the wrapped service and logs the report status.
func (s *LoggingReportService) AnalyzeFile(ctx context.Context, name string, data []byte) (report *docgraph.Report, err error) {
	defer func(begin time.Time) {
		s.log("analyze file", name, report, begin, err)
	}(time.Now())
	return s.next.AnalyzeFile(ctx, name, data)
}

// AnalyzeURL delegates to the wrapped service and logs the report status.
func (s *LoggingReportService) AnalyzeURL(ctx context.Context, url string) (report *docgraph.Report, err error) {
	defer func(begin time.Time) {
		s.log("analyze url", url, report, begin, err)
	}(time.Now())
	return s.next.AnalyzeURL(ctx, url)
}

func (s *LoggingReportService) log(op, source string, report *docgraph.Report, begin time.Time, err error) {
	attrs := []any{"source", source}
	if report != nil {
		attrs = append(attrs,
			"status", report.Status,
			"route", report.Route,
			"warnings", len(report.Warnings),
			"document", report.DocumentID,
		)
	}
	attrs = append(attrs, "duration", time.Since(begin), "err", err)
	s.logger.Info(op, attrs...)
}
