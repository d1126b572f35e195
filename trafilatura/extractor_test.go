package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/docgraph"
	"github.com/fwojciec/docgraph/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts the article of a product page", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Pricing - Acme Analytics</title></head>
<body>
<nav class="main-nav"><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<article>
<h1>Pricing</h1>
<p>Acme Analytics offers a free tier for small teams and a paid plan for companies that need data retention.</p>
<p>All plans include the dashboard, the query language and the export API.</p>
</article>
<footer><p>Copyright 2024 Acme Corp</p></footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "free tier for small teams")
		assert.NotContains(t, result.ContentHTML, "main-nav")
		assert.NotContains(t, result.ContentHTML, "Copyright 2024 Acme Corp")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract(" ")

		require.Error(t, err)
		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})
}
