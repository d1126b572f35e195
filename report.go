package docgraph

import "context"

// Report is the assembled result of one pipeline run.
type Report struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	Source string     `json:"source"`
	Name   string     `json:"filename"`
	Kind   SourceKind `json:"kind"`
	Route  Route      `json:"route"`

	// Content is the normalized text every later stage consumed.
	Content string          `json:"content"`
	Stats   ExtractionStats `json:"stats"`

	// OriginalLength is the rune count of the extracted text before
	// normalization.
	OriginalLength int `json:"original_length"`

	Quality                QualityMetrics `json:"content_quality"`
	Grade                  string         `json:"quality_grade"`
	QualityRecommendations []string       `json:"quality_recommendations"`

	Structure  *DocumentStructure `json:"structure,omitempty"`
	Analysis   *AnalysisResult    `json:"analysis,omitempty"`
	Validation *ValidationResult  `json:"extraction_validation,omitempty"`

	// AnalysisSummary is the analyzer's own content before it was replaced
	// by extracted text.
	AnalysisSummary string `json:"ai_analysis_summary,omitempty"`

	Video *VideoInfo  `json:"video_info,omitempty"`
	Site  *SiteScrape `json:"site,omitempty"`

	TokenCount int          `json:"token_count,omitempty"`
	DocumentID string       `json:"document_id,omitempty"`
	Graph      *GraphUpdate `json:"graph_update,omitempty"`

	Warnings []string `json:"warnings"`
}

// Failed reports whether the run stopped at a terminal failure.
func (r *Report) Failed() bool {
	return r.Status == StatusFailed
}

// ReportStore persists reports with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type ReportStore interface {
	Save(ctx context.Context, report *Report) error
	Commit() error
	Abort() error
}

// ReportService runs the extraction and analysis pipeline.
type ReportService interface {
	// AnalyzeFile processes an uploaded document. Terminal failures are
	// reported through the returned report's status; the error is reserved
	// for infrastructure failures such as storage.
	AnalyzeFile(ctx context.Context, name string, data []byte) (*Report, error)

	// AnalyzeURL processes a web page, repository or video URL.
	AnalyzeURL(ctx context.Context, url string) (*Report, error)
}
