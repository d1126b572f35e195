// Package gemini implements the document analyzer and token counter on top
// of Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docgraph"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for analysis.
const DefaultModel = "gemini-2.5-flash"

// Truncation applied to long documents before they are sent for analysis.
// Only the analyzer sees the shortened text.
const (
	TruncateAbove = 8000
	headLength    = 4000
	tailLength    = 2000
)

// OmissionMarker replaces the middle of truncated documents.
const OmissionMarker = "\n\n...[middle content omitted]...\n\n"

// defaultConfidence is assumed when the model omits a confidence.
const defaultConfidence = 0.8

// Ensure Analyzer implements docgraph.Analyzer at compile time.
var _ docgraph.Analyzer = (*Analyzer)(nil)

// Analyzer implements docgraph.Analyzer using Google Gemini.
type Analyzer struct {
	client *genai.Client
	model  string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(a *Analyzer) {
		if model != "" {
			a.model = model
		}
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(client *genai.Client, opts ...Option) *Analyzer {
	a := &Analyzer{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the model name used for analysis.
func (a *Analyzer) Model() string {
	return a.model
}

// Analyze extracts entities, concepts and relationships from text. The
// returned result carries the full original text as its content.
func (a *Analyzer) Analyze(ctx context.Context, text, name string) (*docgraph.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, docgraph.Errorf(docgraph.EINVALID, "text required")
	}
	if a.client == nil {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "gemini client not configured")
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildPrompt(TruncateForAnalysis(text), name)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "gemini returned nil result")
	}

	return ParseAnalysis(result.Text(), text)
}

// BuildConfig returns the GenerateContentConfig for analysis calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract knowledge graphs from documents. Respond with a single JSON object and nothing else.",
			}},
		},
		Temperature:      &temp,
		MaxOutputTokens:  800,
		ResponseMIMEType: "application/json",
	}
}

// BuildPrompt builds the extraction prompt for a document.
func BuildPrompt(text, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract key entities, concepts and relationships from the document %q:\n", name)
	sb.WriteString("<document>\n")
	sb.WriteString(text)
	sb.WriteString("\n</document>\n\n")
	sb.WriteString(`Return JSON: {"entities":["entity1","entity2"],"concepts":["concept1"],"relationships":[{"source":"entity1","target":"entity2","type":"related","description":"how they relate"}],"confidence":0.8,"knowledgeTreeSuggestion":"domain/theme/topic"}`)
	return sb.String()
}

// TruncateForAnalysis keeps the head and tail of documents longer than
// TruncateAbove runes, joined by OmissionMarker.
func TruncateForAnalysis(text string) string {
	if utf8.RuneCountInString(text) <= TruncateAbove {
		return text
	}
	runes := []rune(text)
	return string(runes[:headLength]) + OmissionMarker + string(runes[len(runes)-tailLength:])
}

// response mirrors the JSON object the model is asked to return.
type response struct {
	Entities                []string                `json:"entities"`
	Concepts                []string                `json:"concepts"`
	Relationships           []docgraph.Relationship `json:"relationships"`
	Confidence              *float64                `json:"confidence"`
	KnowledgeTree           *docgraph.KnowledgeTree `json:"knowledge_tree"`
	KnowledgeTreeSuggestion string                  `json:"knowledgeTreeSuggestion"`
}

// ParseAnalysis decodes a model response. Code fences and text before the
// first brace are removed and a missing closing brace is appended before
// decoding. The result's content is set to original.
func ParseAnalysis(raw, original string) (*docgraph.AnalysisResult, error) {
	cleaned := cleanResponse(raw)
	if cleaned == "" {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "empty analysis response")
	}
	start := strings.Index(cleaned, "{")
	if start < 0 {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "analysis response contains no JSON object")
	}
	cleaned = cleaned[start:]
	if !strings.HasSuffix(cleaned, "}") {
		cleaned += "}"
	}

	var r response
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, docgraph.Errorf(docgraph.EINTERNAL, "malformed analysis response: %v", err)
	}

	confidence := defaultConfidence
	if r.Confidence != nil {
		confidence = *r.Confidence
	}
	return &docgraph.AnalysisResult{
		Content:                 original,
		Entities:                nonBlank(r.Entities),
		Concepts:                nonBlank(r.Concepts),
		Relationships:           r.Relationships,
		Confidence:              docgraph.ClampConfidence(confidence),
		KnowledgeTree:           r.KnowledgeTree,
		KnowledgeTreeSuggestion: r.KnowledgeTreeSuggestion,
	}, nil
}

func cleanResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
