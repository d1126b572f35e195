package mock

import (
	"context"

	"github.com/fwojciec/docgraph"
)

var _ docgraph.Analyzer = (*Analyzer)(nil)

// Analyzer is a mock implementation of docgraph.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, text, name string) (*docgraph.AnalysisResult, error)
}

func (a *Analyzer) Analyze(ctx context.Context, text, name string) (*docgraph.AnalysisResult, error) {
	return a.AnalyzeFn(ctx, text, name)
}
