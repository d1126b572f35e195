package docgraph

import "context"

// TokenCounter counts tokens in text for the configured analysis model.
// The pipeline reports the count so users can see how much of a document
// the analyzer actually saw.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
