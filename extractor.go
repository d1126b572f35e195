package docgraph

// ExtractResult holds the main content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML with navigation,
	// footers, sidebars and ads removed.
	ContentHTML string
}

// Extractor isolates the main content of a page when no content selector
// matches it.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// PageText is the readable text of an HTML page.
type PageText struct {
	Title string

	// Main is the text of the main content area, empty when no content
	// selector matched.
	Main string

	// Text is the visible text of the whole page after chrome removal.
	Text string

	// HTML is the page markup after chrome removal.
	HTML string
}

// PageReader turns fetched HTML into readable text.
type PageReader interface {
	ReadPage(html, pageURL string) (*PageText, error)
}
