package crawl_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docgraph"
	"github.com/fwojciec/docgraph/crawl"
	"github.com/fwojciec/docgraph/goquery"
	dghttp "github.com/fwojciec/docgraph/http"
	"github.com/fwojciec/docgraph/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const youTubePage = `<html><head>
<meta property="og:title" content="Graph Databases Explained">
<meta property="og:description" content="A walkthrough of property graphs and query languages.">
<link itemprop="name" content="Data Channel">
</head><body></body></html>`

func staticFetcher(html string, err error) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) {
			return html, err
		},
		CloseFn: func() error { return nil },
	}
}

func videoExtractors() map[docgraph.Platform]docgraph.VideoMetadataExtractor {
	return map[docgraph.Platform]docgraph.VideoMetadataExtractor{
		docgraph.PlatformYouTube:  goquery.NewVideoExtractor(docgraph.PlatformYouTube),
		docgraph.PlatformBilibili: goquery.NewVideoExtractor(docgraph.PlatformBilibili),
		docgraph.PlatformGeneric:  goquery.NewVideoExtractor(docgraph.PlatformGeneric),
	}
}

func TestVideoScraper_Scrape(t *testing.T) {
	t.Parallel()

	longTranscript := strings.Repeat("graphs connect entities ", 5)

	t.Run("extracts metadata and attaches the transcript", func(t *testing.T) {
		t.Parallel()

		var gotID string
		s := &crawl.VideoScraper{
			Fetchers:   map[docgraph.Platform]docgraph.Fetcher{docgraph.PlatformGeneric: staticFetcher(youTubePage, nil)},
			Extractors: videoExtractors(),
			Transcripts: &mock.TranscriptService{
				TranscriptFn: func(_ context.Context, id string) (string, string, error) {
					gotID = id
					return longTranscript, "en", nil
				},
			},
		}

		info, err := s.Scrape(context.Background(), "https://www.youtube.com/watch?v=abc123&t=10")

		require.NoError(t, err)
		assert.Equal(t, "abc123", gotID)
		assert.Equal(t, docgraph.PlatformYouTube, info.Platform)
		assert.Equal(t, "Graph Databases Explained", info.Title)
		assert.Equal(t, "Data Channel", info.Uploader)
		assert.Equal(t, "en", info.TranscriptLanguage)
		assert.True(t, info.HasTranscript())
		assert.Equal(t, 100, info.ScrapeScore)
	})

	t.Run("uses the platform's own fetcher", func(t *testing.T) {
		t.Parallel()

		s := &crawl.VideoScraper{
			Fetchers: map[docgraph.Platform]docgraph.Fetcher{
				docgraph.PlatformBilibili: staticFetcher(`<html><head><meta property="og:title" content="Go 教程_哔哩哔哩_bilibili"></head></html>`, nil),
				docgraph.PlatformGeneric:  staticFetcher("", errors.New("generic fetcher must not be used")),
			},
			Extractors: videoExtractors(),
		}

		info, err := s.Scrape(context.Background(), "https://www.bilibili.com/video/BV1xx")

		require.NoError(t, err)
		assert.Equal(t, "Go 教程", info.Title)
		assert.Equal(t, docgraph.PlaceholderUploader, info.Uploader)
	})

	t.Run("keeps the transcript when the page fetch fails", func(t *testing.T) {
		t.Parallel()

		s := &crawl.VideoScraper{
			Fetchers:   map[docgraph.Platform]docgraph.Fetcher{docgraph.PlatformGeneric: staticFetcher("", errors.New("blocked"))},
			Extractors: videoExtractors(),
			Transcripts: &mock.TranscriptService{
				TranscriptFn: func(_ context.Context, _ string) (string, string, error) {
					return longTranscript, "zh-CN", nil
				},
			},
		}

		info, err := s.Scrape(context.Background(), "https://youtu.be/xyz")

		require.NoError(t, err)
		assert.Equal(t, docgraph.PlaceholderTitle, info.Title)
		assert.True(t, info.HasTranscript())
	})

	t.Run("fails when neither page nor transcript is available", func(t *testing.T) {
		t.Parallel()

		s := &crawl.VideoScraper{
			Fetchers: map[docgraph.Platform]docgraph.Fetcher{docgraph.PlatformGeneric: staticFetcher("", errors.New("blocked"))},
			Transcripts: &mock.TranscriptService{
				TranscriptFn: func(_ context.Context, _ string) (string, string, error) {
					return "", "", docgraph.Errorf(docgraph.ENOTFOUND, "no tracks")
				},
			},
		}

		_, err := s.Scrape(context.Background(), "https://www.youtube.com/watch?v=abc")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked")
	})

	t.Run("does not ask for transcripts outside YouTube", func(t *testing.T) {
		t.Parallel()

		s := &crawl.VideoScraper{
			Fetchers:    map[docgraph.Platform]docgraph.Fetcher{docgraph.PlatformGeneric: staticFetcher(`<html><head><title>Clip</title></head></html>`, nil)},
			Extractors:  videoExtractors(),
			Transcripts: &mock.TranscriptService{},
		}

		info, err := s.Scrape(context.Background(), "https://vimeo.com/12345")

		require.NoError(t, err)
		assert.Equal(t, "Clip", info.Title)
	})

	t.Run("rejects non-video URLs", func(t *testing.T) {
		t.Parallel()

		_, err := (&crawl.VideoScraper{}).Scrape(context.Background(), "https://example.com/about")

		assert.Equal(t, docgraph.EINVALID, docgraph.ErrorCode(err))
	})
}

func TestVideoScraper_Scrape_StalledTranscriptEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	s := &crawl.VideoScraper{
		Fetchers:          map[docgraph.Platform]docgraph.Fetcher{docgraph.PlatformGeneric: staticFetcher(youTubePage, nil)},
		Extractors:        videoExtractors(),
		Transcripts:       dghttp.NewTranscriptService(nil, dghttp.WithTimedTextURL(srv.URL)),
		TranscriptTimeout: 200 * time.Millisecond,
	}

	start := time.Now()
	info, err := s.Scrape(context.Background(), "https://www.youtube.com/watch?v=abc123")

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "Graph Databases Explained", info.Title)
	assert.False(t, info.HasTranscript())
}
