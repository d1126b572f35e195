//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/docgraph/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestAnalyzer_Integration_ExtractsEntities(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	analyzer := gemini.NewAnalyzer(client)

	result, err := analyzer.Analyze(ctx, "Go is a programming language designed at Google by Robert Griesemer, Rob Pike and Ken Thompson.", "go.txt")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Entities)
	assert.Contains(t, result.Content, "Go is a programming language")
}
