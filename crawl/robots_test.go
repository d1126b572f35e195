package crawl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/docgraph/crawl"
	"github.com/stretchr/testify/assert"
)

func TestRobotsPolicy_Allowed(t *testing.T) {
	t.Parallel()

	t.Run("applies disallow rules and caches per host", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/robots.txt" {
				fetches.Add(1)
				_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
				return
			}
			http.NotFound(w, r)
		}))
		defer server.Close()

		p := crawl.NewRobotsPolicy(server.Client(), "")

		assert.True(t, p.Allowed(context.Background(), server.URL+"/docs"))
		assert.False(t, p.Allowed(context.Background(), server.URL+"/private/page"))
		assert.Equal(t, int32(1), fetches.Load())
	})

	t.Run("allows everything when robots.txt is missing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		p := crawl.NewRobotsPolicy(server.Client(), "")

		assert.True(t, p.Allowed(context.Background(), server.URL+"/anything"))
	})

	t.Run("rejects unparseable URLs", func(t *testing.T) {
		t.Parallel()

		p := crawl.NewRobotsPolicy(nil, "")

		assert.False(t, p.Allowed(context.Background(), "not a url"))
	})
}
