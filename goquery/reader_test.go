package goquery_test

import (
	"testing"

	"github.com/fwojciec/docgraph/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readerHTML = `<html><head><title> Acme Docs </title><style>p{}</style></head>
<body>
<header>Top bar</header>
<nav>Home | Docs</nav>
<aside>Related links</aside>
<main><h1>Install</h1><p>Run the installer.</p></main>
<footer>Copyright</footer>
</body></html>`

func TestPageReader_ReadPage(t *testing.T) {
	t.Parallel()

	t.Run("main pages keep sidebars and skip content selection", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.NewPageReader().ReadPage(readerHTML, "https://acme.test/")

		require.NoError(t, err)
		assert.Equal(t, "Acme Docs", got.Title)
		assert.Contains(t, got.Text, "Related links\nInstall\nRun the installer.")
		assert.NotContains(t, got.Text, "Home | Docs")
		assert.Empty(t, got.Main)
		assert.NotContains(t, got.HTML, "Top bar")
	})

	t.Run("sub-pages drop sidebars and find the main area", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.NewPageReader(goquery.ForSubpages()).ReadPage(readerHTML, "https://acme.test/install")

		require.NoError(t, err)
		assert.Equal(t, "Install\nRun the installer.", got.Main)
		assert.NotContains(t, got.Text, "Related links")
	})

	t.Run("custom content selectors", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="doc">Body text</div><p>Other</p></body></html>`
		got, err := goquery.NewPageReader(goquery.WithContentSelectors(".doc")).ReadPage(html, "https://acme.test/")

		require.NoError(t, err)
		assert.Equal(t, "Body text", got.Main)
	})
}
