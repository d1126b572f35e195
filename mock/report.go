package mock

import (
	"context"

	"github.com/fwojciec/docgraph"
)

var _ docgraph.ReportStore = (*ReportStore)(nil)

// ReportStore is a mock implementation of docgraph.ReportStore.
type ReportStore struct {
	SaveFn   func(ctx context.Context, report *docgraph.Report) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *ReportStore) Save(ctx context.Context, report *docgraph.Report) error {
	return s.SaveFn(ctx, report)
}

func (s *ReportStore) Commit() error {
	return s.CommitFn()
}

func (s *ReportStore) Abort() error {
	return s.AbortFn()
}

var _ docgraph.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of docgraph.ReportService.
type ReportService struct {
	AnalyzeFileFn func(ctx context.Context, name string, data []byte) (*docgraph.Report, error)
	AnalyzeURLFn  func(ctx context.Context, url string) (*docgraph.Report, error)
}

func (s *ReportService) AnalyzeFile(ctx context.Context, name string, data []byte) (*docgraph.Report, error) {
	return s.AnalyzeFileFn(ctx, name, data)
}

func (s *ReportService) AnalyzeURL(ctx context.Context, url string) (*docgraph.Report, error) {
	return s.AnalyzeURLFn(ctx, url)
}
