package docgraph

import (
	"context"
	"fmt"
	"time"
)

// ExtractionStats counts how the sub-units of a source (pages, sub-pages,
// repository files) fared during extraction.
type ExtractionStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Empty      int `json:"empty"`
	Failed     int `json:"failed"`
}

// Clamp returns the stats with every counter forced to be non-negative.
func (s ExtractionStats) Clamp() ExtractionStats {
	return ExtractionStats{
		Total:      max(s.Total, 0),
		Successful: max(s.Successful, 0),
		Empty:      max(s.Empty, 0),
		Failed:     max(s.Failed, 0),
	}
}

// Completeness returns the share of sub-units that produced text, in percent.
func (s ExtractionStats) Completeness() float64 {
	return float64(s.Successful) / float64(max(s.Total, 1)) * 100
}

// ExtractedDocument is the text produced from one input during a pipeline run.
type ExtractedDocument struct {
	// Source is the file name or URL the text came from.
	Source string `json:"source"`

	// Text is the extracted UTF-8 text. It may be empty on total failure.
	Text string `json:"text"`

	Stats   ExtractionStats `json:"stats"`
	Outcome Outcome         `json:"outcome"`
}

// ContentUnit is one named piece of content collected from a web source,
// such as a main page, a sub-page or a repository file.
type ContentUnit struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// DocumentParser extracts text from binary documents page by page.
type DocumentParser interface {
	// Parse never fails: unreadable input yields a diagnostic text and the
	// failure is reflected in the document's stats and outcome.
	Parse(ctx context.Context, name string, data []byte) *ExtractedDocument
}

// SourceKind records which route produced a stored document.
type SourceKind string

// Source kinds.
const (
	KindFile       SourceKind = "file"
	KindWebPage    SourceKind = "web"
	KindRepository SourceKind = "repository"
	KindVideo      SourceKind = "video"
)

// Document is an analyzed document kept in storage.
type Document struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Source       string     `json:"source"`
	Kind         SourceKind `json:"kind"`
	Content      string     `json:"content"`
	ContentHash  string     `json:"contentHash"`
	CharCount    int        `json:"charCount"`
	EntityCount  int        `json:"entityCount"`
	ConceptCount int        `json:"conceptCount"`
	QualityScore float64    `json:"qualityScore"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Name == "" {
		return Errorf(EINVALID, "document name required")
	}
	if d.Source == "" {
		return Errorf(EINVALID, "document source required")
	}
	switch d.Kind {
	case KindFile, KindWebPage, KindRepository, KindVideo:
	default:
		return Errorf(EINVALID, "unknown document kind %q", d.Kind)
	}
	return nil
}

// String returns a one-line description of the document.
func (d *Document) String() string {
	return fmt.Sprintf("%s  %-10s  %s", d.ID, d.Kind, d.Name)
}

// DocumentService represents a service for managing analyzed documents.
type DocumentService interface {
	// CreateDocument stores a new document and assigns its ID, hash and timestamp.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter, newest first.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document and its graph nodes.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id string) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID     *string     `json:"id"`
	Name   *string     `json:"name"`
	Source *string     `json:"source"`
	Kind   *SourceKind `json:"kind"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
