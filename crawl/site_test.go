package crawl_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docgraph"
	"github.com/fwojciec/docgraph/crawl"
	"github.com/fwojciec/docgraph/goquery"
	"github.com/fwojciec/docgraph/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeHome = `<html><head><title>Acme</title></head><body>
<nav><a href="/docs/guide">Guide</a></nav>
<p>Acme makes graph tools.</p>
<a href="/about">About Us</a>
<a href="/contact">Contact</a>
</body></html>`

// pageFetcher serves canned pages and records fetched URLs.
type pageFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]error
	fetched []string
}

func (f *pageFetcher) mock() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.fetched = append(f.fetched, url)
			if err, ok := f.fail[url]; ok {
				return "", err
			}
			if html, ok := f.pages[url]; ok {
				return html, nil
			}
			return "", docgraph.Errorf(docgraph.ENOTFOUND, "HTTP 404 for %s", url)
		},
		CloseFn: func() error { return nil },
	}
}

func newSiteScraper(fetcher docgraph.Fetcher) *crawl.SiteScraper {
	return &crawl.SiteScraper{
		Fetcher:       fetcher,
		PageReader:    goquery.NewPageReader(),
		SubpageReader: goquery.NewPageReader(goquery.ForSubpages()),
		LinkSelector:  goquery.NewSubpageSelector(),
		RetryDelays:   []time.Duration{},
	}
}

func TestSiteScraper_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("collects the main page and scored sub-pages", func(t *testing.T) {
		t.Parallel()

		pages := &pageFetcher{
			pages: map[string]string{
				"https://acme.test":         acmeHome,
				"https://acme.test/about":   `<html><head><title>About</title></head><body><main>Acme was founded in 2020.</main></body></html>`,
				"https://acme.test/contact": `<html><body></body></html>`,
			},
			fail: map[string]error{"https://acme.test/docs/guide": errors.New("connection reset")},
		}

		result, err := newSiteScraper(pages.mock()).Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		assert.Equal(t, docgraph.ModeDeepCrawl, result.Mode)
		assert.Equal(t, "Acme", result.Title)
		assert.Equal(t, docgraph.ExtractionStats{Total: 4, Successful: 2, Empty: 1, Failed: 1}, result.Stats)
		assert.Equal(t, docgraph.StatusDegraded, result.Outcome.Status)
		assert.Contains(t, result.Outcome.Reason(), "1 of 3 sub-pages failed")
		assert.Len(t, result.Subpages, 3)

		require.Len(t, result.Units, 2)
		assert.Equal(t, "Acme.txt", result.Units[0].Name)
		assert.True(t, strings.HasPrefix(result.Units[1].Name, "subpage_"))
		assert.Contains(t, result.Units[1].Content, docgraph.LabelSubpageTitle+" About")
		assert.Contains(t, result.Units[1].Content, docgraph.LabelPageContent+"\nAcme was founded in 2020.")

		assert.True(t, strings.HasPrefix(result.Content, "URL: https://acme.test\n\n=== Acme.txt ===\nTitle: Acme\nURL: https://acme.test\n"))
		assert.Contains(t, result.Content, "Acme makes graph tools.")
		assert.NotContains(t, result.Content, "Guide\n", "navigation is stripped from the main page")
	})

	t.Run("fetches sub-pages in score order", func(t *testing.T) {
		t.Parallel()

		pages := &pageFetcher{pages: map[string]string{"https://acme.test": acmeHome}}

		_, err := newSiteScraper(pages.mock()).Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		require.Len(t, pages.fetched, 4)
		assert.Equal(t, "https://acme.test/docs/guide", pages.fetched[1])
		assert.Equal(t, "https://acme.test/contact", pages.fetched[3])
	})

	t.Run("honors the sub-page limit and URL filter", func(t *testing.T) {
		t.Parallel()

		pages := &pageFetcher{pages: map[string]string{"https://acme.test": acmeHome}}
		s := newSiteScraper(pages.mock())
		s.MaxSubpages = 1
		s.Filter = &docgraph.URLFilter{Exclude: []*regexp.Regexp{regexp.MustCompile(`/docs/`)}}

		result, err := s.Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://acme.test", "https://acme.test/about"}, pages.fetched)
		assert.Equal(t, 2, result.Stats.Total)
	})

	t.Run("rate limits each sub-page fetch", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		pages := &pageFetcher{pages: map[string]string{"https://acme.test": acmeHome}}
		s := newSiteScraper(pages.mock())
		s.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				hosts = append(hosts, domain)
				return nil
			},
		}

		_, err := s.Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		assert.Equal(t, []string{"acme.test", "acme.test", "acme.test"}, hosts)
	})

	t.Run("falls back to the extractor when no content area matches", func(t *testing.T) {
		t.Parallel()

		pages := &pageFetcher{pages: map[string]string{
			"https://acme.test":       `<html><head><title>Acme</title></head><body><a href="/about">About Us</a></body></html>`,
			"https://acme.test/about": `<html><body><div>About body</div></body></html>`,
		}}
		s := newSiteScraper(pages.mock())
		s.Extractor = &mock.Extractor{
			ExtractFn: func(html string) (*docgraph.ExtractResult, error) {
				return &docgraph.ExtractResult{ContentHTML: "<p>About body</p>"}, nil
			},
		}
		s.Converter = &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "# About\n\nAbout body", nil
			},
		}

		result, err := s.Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		require.Len(t, result.Units, 2)
		assert.Contains(t, result.Units[1].Content, "# About\n\nAbout body")
	})

	t.Run("truncates long sub-pages", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", docgraph.SubpageContentLimit+10)
		pages := &pageFetcher{pages: map[string]string{
			"https://acme.test":       `<html><body><a href="/about">About Us</a></body></html>`,
			"https://acme.test/about": `<html><body><article>` + long + `</article></body></html>`,
		}}

		result, err := newSiteScraper(pages.mock()).Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		require.Len(t, result.Units, 2)
		assert.True(t, strings.HasSuffix(result.Units[1].Content, strings.Repeat("a", 10)+"..."))
		assert.NotContains(t, result.Units[1].Content, long)
	})

	t.Run("returns an error when the main page fails", func(t *testing.T) {
		t.Parallel()

		pages := &pageFetcher{fail: map[string]error{"https://acme.test": errors.New("dns failure")}}

		_, err := newSiteScraper(pages.mock()).Scrape(context.Background(), "https://acme.test")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "dns failure")
	})

	t.Run("rejects non-http URLs", func(t *testing.T) {
		t.Parallel()

		_, err := newSiteScraper(&mock.Fetcher{}).Scrape(context.Background(), "ftp://acme.test")

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})

	t.Run("routes repositories to the collector", func(t *testing.T) {
		t.Parallel()

		pages := &pageFetcher{pages: map[string]string{
			"https://github.com/acme/tool": `<html><head><title>acme/tool</title></head><body><p>A tool.</p></body></html>`,
		}}
		s := newSiteScraper(pages.mock())
		s.LinkSelector = &mock.LinkSelector{}
		s.Repositories = &mock.RepositoryCollector{
			CollectFn: func(_ context.Context, owner, repo string) ([]docgraph.ContentUnit, docgraph.ExtractionStats, error) {
				assert.Equal(t, "acme", owner)
				assert.Equal(t, "tool", repo)
				return []docgraph.ContentUnit{{Name: "README.md", Content: "README:\n# Tool"}},
					docgraph.ExtractionStats{Total: 3, Successful: 1, Failed: 2}, nil
			},
		}

		result, err := s.Scrape(context.Background(), "https://github.com/acme/tool")

		require.NoError(t, err)
		assert.Equal(t, docgraph.ModeRepository, result.Mode)
		assert.Equal(t, docgraph.ExtractionStats{Total: 4, Successful: 2, Failed: 2}, result.Stats)
		assert.Contains(t, result.Content, "=== README.md ===\nREADME:\n# Tool")
		assert.Equal(t, docgraph.StatusDegraded, result.Outcome.Status)
	})

	t.Run("switches to rendered pages when rendering adds content", func(t *testing.T) {
		t.Parallel()

		plain := &pageFetcher{pages: map[string]string{"https://acme.test": `<html><body><div id="app"></div></body></html>`}}
		rendered := &pageFetcher{pages: map[string]string{
			"https://acme.test":       `<html><body><div id="app"><p>Rendered dashboard content</p><a href="/about">About Us</a></div></body></html>`,
			"https://acme.test/about": `<html><body><main>About rendered</main></body></html>`,
		}}
		s := newSiteScraper(plain.mock())
		s.RenderFetcher = rendered.mock()

		result, err := s.Scrape(context.Background(), "https://acme.test")

		require.NoError(t, err)
		assert.Contains(t, result.Content, "Rendered dashboard content")
		assert.Contains(t, result.Content, "About rendered")
		assert.Equal(t, []string{"https://acme.test"}, plain.fetched)
	})
}
