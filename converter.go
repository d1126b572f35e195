package docgraph

// Converter converts HTML to Markdown so extracted pages keep their headings
// and lists as text structure.
type Converter interface {
	// Convert transforms clean HTML (e.g., from an Extractor) into Markdown.
	Convert(html string) (string, error)
}
