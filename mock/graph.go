package mock

import (
	"context"

	"github.com/fwojciec/docgraph"
)

var _ docgraph.GraphService = (*GraphService)(nil)

// GraphService is a mock implementation of docgraph.GraphService.
type GraphService struct {
	CreateNodeFn    func(ctx context.Context, node *docgraph.Node) error
	FindNodeByIDFn  func(ctx context.Context, id string) (*docgraph.Node, error)
	DeleteNodeFn    func(ctx context.Context, id string) error
	CreateEdgeFn    func(ctx context.Context, edge *docgraph.Edge) error
	FindEdgesFn     func(ctx context.Context, nodeID string) ([]*docgraph.Edge, error)
	DeleteEdgesFn   func(ctx context.Context, nodeID string) error
	StoreAnalysisFn func(ctx context.Context, doc *docgraph.Document, a *docgraph.AnalysisResult) (*docgraph.GraphUpdate, error)
	FindPathsFn     func(ctx context.Context, start []string, maxHops int) (*docgraph.GraphPath, error)
	StatsFn         func(ctx context.Context) (*docgraph.GraphStats, error)
}

func (s *GraphService) CreateNode(ctx context.Context, node *docgraph.Node) error {
	return s.CreateNodeFn(ctx, node)
}

func (s *GraphService) FindNodeByID(ctx context.Context, id string) (*docgraph.Node, error) {
	return s.FindNodeByIDFn(ctx, id)
}

func (s *GraphService) DeleteNode(ctx context.Context, id string) error {
	return s.DeleteNodeFn(ctx, id)
}

func (s *GraphService) CreateEdge(ctx context.Context, edge *docgraph.Edge) error {
	return s.CreateEdgeFn(ctx, edge)
}

func (s *GraphService) FindEdges(ctx context.Context, nodeID string) ([]*docgraph.Edge, error) {
	return s.FindEdgesFn(ctx, nodeID)
}

func (s *GraphService) DeleteEdges(ctx context.Context, nodeID string) error {
	return s.DeleteEdgesFn(ctx, nodeID)
}

func (s *GraphService) StoreAnalysis(ctx context.Context, doc *docgraph.Document, a *docgraph.AnalysisResult) (*docgraph.GraphUpdate, error) {
	return s.StoreAnalysisFn(ctx, doc, a)
}

func (s *GraphService) FindPaths(ctx context.Context, start []string, maxHops int) (*docgraph.GraphPath, error) {
	return s.FindPathsFn(ctx, start, maxHops)
}

func (s *GraphService) Stats(ctx context.Context) (*docgraph.GraphStats, error) {
	return s.StatsFn(ctx)
}
