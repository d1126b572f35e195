// Package goquery implements HTML page handling on top of goquery: visible
// text extraction, sub-page discovery and video metadata strategies.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docgraph"
	"golang.org/x/net/html"
)

// PageChrome is the markup removed from a main page before taking its text.
var PageChrome = []string{"script", "style", "nav", "footer", "header"}

// SubpageChrome is the markup removed from a sub-page before taking its text.
var SubpageChrome = []string{"script", "style", "nav", "footer", "header", "aside"}

// ContentSelectors locate the main content area of a sub-page, in order.
var ContentSelectors = []string{
	"main",
	"article",
	".content",
	".main-content",
	".post-content",
	".entry-content",
	"#content",
	".page-content",
	".article-content",
}

// Page is a parsed HTML document.
type Page struct {
	URL string
	Raw string
	doc *goquery.Document
}

// ParsePage parses raw HTML fetched from pageURL.
func ParsePage(raw, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, docgraph.Errorf(docgraph.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Page{URL: pageURL, Raw: raw, doc: doc}, nil
}

// Document exposes the underlying goquery document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// Title returns the trimmed text of the first <title> element.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// Strip removes every element matching one of the selectors.
func (p *Page) Strip(selectors ...string) {
	for _, sel := range selectors {
		p.doc.Find(sel).Remove()
	}
}

// Text returns the visible text of the page, one trimmed text node per line.
func (p *Page) Text() string {
	return visibleText(p.doc.Selection)
}

// MainContent returns the text of the first element matching one of the
// selectors, or "" when none matches or all matches are empty.
func (p *Page) MainContent(selectors []string) string {
	for _, sel := range selectors {
		match := p.doc.Find(sel).First()
		if match.Length() == 0 {
			continue
		}
		return visibleText(match)
	}
	return ""
}

// Meta returns the content attribute of the first <meta> whose attr equals
// value, e.g. Meta("property", "og:title").
func (p *Page) Meta(attr, value string) string {
	content, _ := p.doc.Find("meta[" + attr + `="` + value + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// HTML renders the current, possibly stripped, document.
func (p *Page) HTML() string {
	out, err := p.doc.Html()
	if err != nil {
		return p.Raw
	}
	return out
}

func visibleText(sel *goquery.Selection) string {
	var lines []string
	for _, n := range sel.Nodes {
		collectText(n, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*lines = append(*lines, t)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}
