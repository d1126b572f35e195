package docgraph_test

import (
	"regexp"
	"testing"

	"github.com/fwojciec/docgraph"
	"github.com/stretchr/testify/assert"
)

func TestURLFilter_Match(t *testing.T) {
	t.Parallel()

	t.Run("nil filter matches everything", func(t *testing.T) {
		t.Parallel()
		var f *docgraph.URLFilter
		assert.True(t, f.Match("https://example.com/anything"))
	})

	t.Run("include patterns restrict matches", func(t *testing.T) {
		t.Parallel()
		f := &docgraph.URLFilter{Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)}}
		assert.True(t, f.Match("https://example.com/docs/intro"))
		assert.False(t, f.Match("https://example.com/blog/post"))
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		t.Parallel()
		f := &docgraph.URLFilter{
			Include: []*regexp.Regexp{regexp.MustCompile(`/docs/`)},
			Exclude: []*regexp.Regexp{regexp.MustCompile(`/v1/`)},
		}
		assert.True(t, f.Match("https://example.com/docs/v2/intro"))
		assert.False(t, f.Match("https://example.com/docs/v1/intro"))
	})
}
