package docgraph

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// MinAnalyzableLength is the text length above which the AI analyzer is
// consulted. Shorter texts get a basic analysis.
const MinAnalyzableLength = 50

// BoilerplateLength is the content length under which an analysis summary is
// considered uninformative.
const BoilerplateLength = 100

const basicAnalysisPrefix = "Basic analysis complete."

// Relationship is a typed, directed link between two named things.
type Relationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Strength    float64 `json:"strength,omitempty"`
}

// KnowledgeTree is the optional hierarchical view an analyzer may return.
type KnowledgeTree struct {
	Domain           string     `json:"domain,omitempty"`
	Themes           []string   `json:"themes,omitempty"`
	SemanticClusters [][]string `json:"semantic_clusters,omitempty"`
}

// IsZero reports whether the tree carries no information.
func (t *KnowledgeTree) IsZero() bool {
	return t == nil || (t.Domain == "" && len(t.Themes) == 0 && len(t.SemanticClusters) == 0)
}

// AnalysisResult is the entity, concept and relationship extraction for a
// document.
type AnalysisResult struct {
	Content                 string         `json:"content"`
	Entities                []string       `json:"entities"`
	Concepts                []string       `json:"concepts"`
	Relationships           []Relationship `json:"relationships"`
	Confidence              float64        `json:"confidence"`
	KnowledgeTree           *KnowledgeTree `json:"knowledge_tree,omitempty"`
	KnowledgeTreeSuggestion string         `json:"knowledgeTreeSuggestion,omitempty"`
}

// Analyzer extracts entities, concepts and relationships from text.
type Analyzer interface {
	// Analyze returns an error when the backend is unavailable or its
	// output cannot be interpreted. Callers fall back to BasicAnalysis.
	Analyze(ctx context.Context, text, name string) (*AnalysisResult, error)
}

// keywordConcepts maps keyword groups to the concept they add.
var keywordConcepts = []struct {
	concept  string
	keywords []string
}{
	{"technical document", []string{"技术", "系统", "开发", "api", "代码", "technical", "system", "code"}},
	{"product document", []string{"产品", "需求", "功能", "用户", "product", "requirement", "feature", "user"}},
	{"analysis report", []string{"分析", "报告", "数据", "统计", "analysis", "report", "data", "statistic"}},
}

// BasicAnalysis derives a heuristic analysis from the document name and
// text. It is the fallback whenever the AI analyzer cannot be used and it
// never fails.
func BasicAnalysis(text, name string) *AnalysisResult {
	length := utf8.RuneCountInString(text)

	concepts := []string{"document analysis", "content extraction"}
	if strings.Contains(strings.ToUpper(name), "PDF") {
		concepts = append(concepts, "PDF document")
	}
	switch {
	case length > 1000:
		concepts = append(concepts, "long document")
	case length > 0:
		concepts = append(concepts, "short document")
	}

	if length > MinAnalyzableLength {
		lower := strings.ToLower(text)
		for _, group := range keywordConcepts {
			for _, kw := range group.keywords {
				if strings.Contains(lower, kw) {
					concepts = append(concepts, group.concept)
					break
				}
			}
		}
	}

	stem := NameStem(name)
	return &AnalysisResult{
		Content:  BasicAnalysisSummary(name, length),
		Entities: []string{stem, "document content"},
		Concepts: concepts,
		Relationships: []Relationship{
			{Source: stem, Target: "document content", Type: "contains", Description: "contains content"},
		},
		Confidence:              0.6,
		KnowledgeTreeSuggestion: "Document management/Basic analysis/Unclassified",
	}
}

// BasicAnalysisSummary is the canned content of a basic analysis.
func BasicAnalysisSummary(name string, length int) string {
	return fmt.Sprintf("%s Document %s contains %d characters of content. The content has been extracted and is available for further analysis.", basicAnalysisPrefix, name, length)
}

// IsBoilerplate reports whether an analysis content carries no document
// text: it is shorter than BoilerplateLength or is a basic analysis summary.
func IsBoilerplate(content string) bool {
	return utf8.RuneCountInString(content) < BoilerplateLength || strings.HasPrefix(content, basicAnalysisPrefix)
}

// NameStem returns the part of a file name before its first dot, or the
// whole base name when there is none.
func NameStem(name string) string {
	base := path.Base(name)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	if base == "." || base == "/" {
		return name
	}
	return base
}

// SyncGraphData makes every relationship endpoint a known node. Endpoints
// that are neither an entity nor a concept are appended to the entities in
// order of first appearance. Relationships are never dropped and the
// function is idempotent. The input is not modified.
func SyncGraphData(a *AnalysisResult) *AnalysisResult {
	if a == nil {
		return nil
	}

	out := *a
	out.Entities = append([]string(nil), a.Entities...)
	out.Concepts = append([]string(nil), a.Concepts...)
	out.Relationships = append([]Relationship(nil), a.Relationships...)

	known := make(map[string]struct{}, len(a.Entities)+len(a.Concepts))
	for _, names := range [][]string{a.Entities, a.Concepts} {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				known[n] = struct{}{}
			}
		}
	}

	for _, rel := range a.Relationships {
		for _, endpoint := range []string{rel.Source, rel.Target} {
			endpoint = strings.TrimSpace(endpoint)
			if endpoint == "" {
				continue
			}
			if _, ok := known[endpoint]; ok {
				continue
			}
			known[endpoint] = struct{}{}
			out.Entities = append(out.Entities, endpoint)
		}
	}
	return &out
}

// ClampConfidence bounds a confidence value to [0, 1].
func ClampConfidence(v float64) float64 {
	return clamp01(v)
}
