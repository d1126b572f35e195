package mock

import (
	"context"

	"github.com/fwojciec/docgraph"
)

var _ docgraph.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of docgraph.DocumentService.
type DocumentService struct {
	CreateDocumentFn   func(ctx context.Context, doc *docgraph.Document) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*docgraph.Document, error)
	FindDocumentsFn    func(ctx context.Context, filter docgraph.DocumentFilter) ([]*docgraph.Document, error)
	DeleteDocumentFn   func(ctx context.Context, id string) error
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *docgraph.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*docgraph.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter docgraph.DocumentFilter) ([]*docgraph.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	return s.DeleteDocumentFn(ctx, id)
}
