package docgraph_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docgraph"
	"github.com/stretchr/testify/assert"
)

func TestResolveFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		want docgraph.Route
	}{
		{"pdf extension", "report.pdf", docgraph.RouteBinary},
		{"uppercase pdf extension", "REPORT.PDF", docgraph.RouteBinary},
		{"markdown", "notes.md", docgraph.RouteText},
		{"no extension", "README", docgraph.RouteText},
		{"pdf in name only", "pdf-notes.txt", docgraph.RouteText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, docgraph.ResolveFile(tt.file))
		})
	}
}

func TestDecodeText(t *testing.T) {
	t.Parallel()

	t.Run("passes valid UTF-8 through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "héllo 世界", docgraph.DecodeText([]byte("héllo 世界")))
	})

	t.Run("replaces invalid bytes", func(t *testing.T) {
		t.Parallel()
		got := docgraph.DecodeText([]byte{'a', 0xff, 0xfe, 'b'})
		assert.Equal(t, "a�b", got)
	})

	t.Run("handles nil input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", docgraph.DecodeText(nil))
	})
}

func TestClassifyURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want docgraph.Route
	}{
		{"youtube watch page", "https://www.youtube.com/watch?v=abc123", docgraph.RouteVideo},
		{"youtube short link", "https://youtu.be/abc123", docgraph.RouteVideo},
		{"bilibili", "https://www.bilibili.com/video/BV1xx411c7mD", docgraph.RouteVideo},
		{"instagram post", "https://www.instagram.com/p/Cabc/", docgraph.RouteVideo},
		{"video file", "https://cdn.example.com/media/clip.MP4", docgraph.RouteVideo},
		{"x.com status", "https://x.com/user/status/1", docgraph.RouteVideo},
		{"generic page", "https://example.com/about", docgraph.RouteWebPage},
		{"host containing video domain substring", "https://notyoutube.company.org/", docgraph.RouteWebPage},
		{"box.com is not x.com", "https://box.com/files", docgraph.RouteWebPage},
		{"instagram profile", "https://www.instagram.com/someone/", docgraph.RouteWebPage},
		{"github repository", "https://github.com/fwojciec/docgraph", docgraph.RouteRepository},
		{"github profile only", "https://github.com/fwojciec", docgraph.RouteWebPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, docgraph.ClassifyURL(tt.url))
		})
	}
}

func TestPlatformFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, docgraph.PlatformYouTube, docgraph.PlatformFor("https://m.youtube.com/watch?v=x"))
	assert.Equal(t, docgraph.PlatformYouTube, docgraph.PlatformFor("https://youtu.be/x"))
	assert.Equal(t, docgraph.PlatformBilibili, docgraph.PlatformFor("https://b23.tv/abc"))
	assert.Equal(t, docgraph.PlatformVimeo, docgraph.PlatformFor("https://vimeo.com/123"))
	assert.Equal(t, docgraph.PlatformGeneric, docgraph.PlatformFor("https://www.dailymotion.com/video/x1"))
	assert.Equal(t, docgraph.PlatformGeneric, docgraph.PlatformFor("::not a url"))
}

func TestParseRepositoryURL(t *testing.T) {
	t.Parallel()

	owner, repo, ok := docgraph.ParseRepositoryURL("https://github.com/golang/go/tree/master/src")
	assert.True(t, ok)
	assert.Equal(t, "golang", owner)
	assert.Equal(t, "go", repo)

	_, repo, ok = docgraph.ParseRepositoryURL("https://github.com/owner/project.git")
	assert.True(t, ok)
	assert.Equal(t, "project", repo)

	_, _, ok = docgraph.ParseRepositoryURL("https://gitlab.com/owner/project")
	assert.False(t, ok)
}

func TestBareURL(t *testing.T) {
	t.Parallel()

	t.Run("detects a single URL with surrounding whitespace", func(t *testing.T) {
		t.Parallel()
		got, ok := docgraph.BareURL("  https://example.com/docs \n")
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/docs", got)
	})

	t.Run("rejects text with several tokens", func(t *testing.T) {
		t.Parallel()
		_, ok := docgraph.BareURL("see https://example.com/docs")
		assert.False(t, ok)
	})

	t.Run("rejects URL followed by prose", func(t *testing.T) {
		t.Parallel()
		_, ok := docgraph.BareURL("https://example.com/docs is great")
		assert.False(t, ok)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		t.Parallel()
		_, ok := docgraph.BareURL("ftp://example.com/file")
		assert.False(t, ok)
	})

	t.Run("rejects overly long input", func(t *testing.T) {
		t.Parallel()
		long := "https://example.com/" + strings.Repeat("a", docgraph.MaxBareURLLength)
		_, ok := docgraph.BareURL(long)
		assert.False(t, ok)
	})
}
