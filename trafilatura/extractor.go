// Package trafilatura isolates the main content of sub-pages that match none
// of the known content selectors.
package trafilatura

import (
	"bytes"
	"html"
	"strings"

	"github.com/fwojciec/docgraph"
	"github.com/markusmobius/go-trafilatura"
	nethtml "golang.org/x/net/html"
)

// Ensure Extractor implements docgraph.Extractor at compile time.
var _ docgraph.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	comments bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithComments keeps reader comments below an article. They are dropped by
// default.
func WithComments() Option {
	return func(e *Extractor) {
		e.comments = true
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content. When trafilatura
// finds text but no content node, the text is returned as paragraphs.
func (e *Extractor) Extract(rawHTML string) (*docgraph.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docgraph.Errorf(docgraph.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: !e.comments,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	switch {
	case result.ContentNode != nil:
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	case strings.TrimSpace(result.ContentText) != "":
		contentHTML = textToHTML(result.ContentText)
	}

	return &docgraph.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *nethtml.Node) (string, error) {
	var buf bytes.Buffer
	if err := nethtml.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func textToHTML(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return b.String()
}
