package crawl

import (
	"unicode/utf8"

	"github.com/fwojciec/docgraph"
)

// ContentDiffers compares the text read from plainly fetched HTML with the
// text read from browser-rendered HTML. It returns true when the rendered
// text is more than 50% longer, meaning JavaScript adds meaningful content.
// A page the reader cannot parse is assumed to need rendering.
func ContentDiffers(plainHTML, renderedHTML, pageURL string, reader docgraph.PageReader) bool {
	plain, err := reader.ReadPage(plainHTML, pageURL)
	if err != nil {
		return true
	}
	rendered, err := reader.ReadPage(renderedHTML, pageURL)
	if err != nil {
		return false
	}

	plainLen := utf8.RuneCountInString(plain.Text)
	renderedLen := utf8.RuneCountInString(rendered.Text)

	if plainLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(plainLen)*1.5
}
