package goquery_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/docgraph"
	"github.com/fwojciec/docgraph/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkURLs(links []docgraph.DiscoveredLink) []string {
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	return urls
}

func TestSubpageSelector_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("skips links that cannot be fetched or leave the site", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="javascript:void(0)">Menu</a>
<a href="mailto:team@example.com">Mail us</a>
<a href="tel:123">Call</a>
<a href="#section">Jump</a>
<a href="/">Home</a>
<a href="https://other.example/docs">Other docs</a>
<a href="https://example.com/">Root</a>
<a href="/docs/start">Documentation</a>
</body></html>`

		links, err := goquery.NewSubpageSelector().ExtractLinks(html, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/docs/start"}, linkURLs(links))
	})

	t.Run("orders links by importance", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/misc/x">x</a>
<a href="/about">About us</a>
<a href="/docs/guide">Developer guide</a>
</body></html>`

		links, err := goquery.NewSubpageSelector().ExtractLinks(html, "https://example.com/")

		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, "https://example.com/docs/guide", links[0].URL)
		assert.Equal(t, "https://example.com/about", links[1].URL)
		assert.Equal(t, "https://example.com/misc/x", links[2].URL)
		assert.Contains(t, links[0].Keywords, "docs")
		assert.Contains(t, links[0].Keywords, "guide")
		assert.Greater(t, links[0].Score, links[1].Score)
	})

	t.Run("gives plain deeper links a floor score", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.NewSubpageSelector().ExtractLinks(`<a href="/a/b">go</a>`, "https://example.com/")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Positive(t, links[0].Score)
	})

	t.Run("matches chinese keywords", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.NewSubpageSelector().ExtractLinks(`<a href="/p/1">产品介绍</a>`, "https://example.cn/")

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Contains(t, links[0].Keywords, "产品")
		assert.Contains(t, links[0].Keywords, "介绍")
	})

	t.Run("deduplicates by resolved url", func(t *testing.T) {
		t.Parallel()

		html := `<a href="/about">About</a><a href="https://example.com/about#team">About the team</a>`

		links, err := goquery.NewSubpageSelector().ExtractLinks(html, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/about"}, linkURLs(links))
	})

	t.Run("caps discovery at twice the page count", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		for i := range 20 {
			fmt.Fprintf(&b, `<a href="/docs/page%d">Docs page %d</a>`, i, i)
		}

		links, err := goquery.NewSubpageSelector(goquery.WithMaxPages(3)).ExtractLinks(b.String(), "https://example.com/")

		require.NoError(t, err)
		assert.Len(t, links, 6)
	})

	t.Run("rejects an invalid base url", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewSubpageSelector().ExtractLinks("<a href='/x'>x</a>", "://bad")

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})
}
