package docgraph

import (
	"fmt"
	"strings"
	"unicode"
)

// Scoring windows bound the cost of quality analysis on very long input.
const (
	qualityMaxRunes      = 50000
	readabilitySample    = 1000
	uniquenessWordSample = 500
)

// QualityMetrics holds heuristic sub-scores describing how trustworthy an
// extracted text is. Every score lies in [0, 1].
type QualityMetrics struct {
	Completeness       float64 `json:"completenessScore"`
	Readability        float64 `json:"readabilityScore"`
	InformationDensity float64 `json:"informationDensity"`
	StructureIntegrity float64 `json:"structureIntegrity"`
	Overall            float64 `json:"overallScore"`

	// GarbledRatio is the share of non-ASCII alphanumeric characters in the
	// readability sample.
	GarbledRatio float64 `json:"garbledRatio"`
}

// sentenceTerminators are counted as sentence indicators.
var sentenceTerminators = []string{".", "。", "!", "！", "?", "？"}

// keyTerms mark technical, information-rich content.
var keyTerms = []string{
	"系统", "技术", "架构", "模块", "功能", "数据", "分析",
	"system", "technology", "architecture", "module", "function", "data", "analysis",
}

// ScoreQuality computes quality metrics for text. The function is pure:
// identical input always yields identical scores. Empty or whitespace-only
// text scores zero everywhere.
func ScoreQuality(text string) QualityMetrics {
	if strings.TrimSpace(text) == "" {
		return QualityMetrics{}
	}

	runes := []rune(text)
	if len(runes) > qualityMaxRunes {
		runes = runes[:qualityMaxRunes]
		text = string(runes)
	}

	var m QualityMetrics
	m.Completeness = completeness(text, len(runes))
	m.Readability, m.GarbledRatio = readability(text, runes)
	m.InformationDensity = informationDensity(text)
	m.StructureIntegrity = structureIntegrity(text)
	m.Overall = clamp01(0.3*m.Completeness + 0.3*m.Readability + 0.2*m.InformationDensity + 0.2*m.StructureIntegrity)
	return m
}

func completeness(text string, length int) float64 {
	lengthScore := min(1.0, float64(length)/500)

	var indicators int
	for _, t := range sentenceTerminators {
		indicators += strings.Count(text, t)
	}
	sentenceScore := min(1.0, float64(indicators)/5)

	return clamp01((lengthScore + sentenceScore) / 2)
}

func readability(text string, runes []rune) (score, garbled float64) {
	sample := runes
	if len(sample) > readabilitySample {
		sample = sample[:readabilitySample]
	}

	var garbledChars int
	for _, r := range sample {
		if r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsNumber(r)) {
			garbledChars++
		}
	}
	garbled = float64(garbledChars) / float64(len(sample))

	uniqueness := 1.0
	words := strings.Fields(text)
	if len(words) > uniquenessWordSample {
		words = words[:uniquenessWordSample]
	}
	if len(words) > 0 {
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			seen[w] = struct{}{}
		}
		uniqueness = float64(len(seen)) / float64(len(words))
	}

	return clamp01((1 - min(garbled, 0.5)) * uniqueness), garbled
}

func informationDensity(text string) float64 {
	lower := strings.ToLower(text)
	var present int
	for _, term := range keyTerms {
		if strings.Contains(lower, term) {
			present++
		}
	}
	return min(1.0, float64(present)/5)
}

func structureIntegrity(text string) float64 {
	paragraphs := strings.Count(text, "\n\n") + 1
	paragraphScore := min(1.0, float64(paragraphs)/3)

	titles := strings.Count(text, "#") + strings.Count(text, "一、") + strings.Count(text, "1.")
	titleScore := min(1.0, float64(titles)/2)

	return clamp01((paragraphScore + titleScore) / 2)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// Grade returns the letter grade label for an overall quality score.
func Grade(overall float64) string {
	switch {
	case overall >= 0.9:
		return "Excellent (A)"
	case overall >= 0.8:
		return "Good (B)"
	case overall >= 0.7:
		return "Fair (C)"
	case overall >= 0.6:
		return "Pass (D)"
	default:
		return "Needs improvement (F)"
	}
}

// QualityRecommendations returns improvement suggestions for the metrics.
// At least one recommendation is always returned.
func QualityRecommendations(m QualityMetrics) []string {
	var recs []string

	switch {
	case m.Completeness < 0.5:
		recs = append(recs, "Completeness is low: check that the whole document was uploaded or try another extraction method")
	case m.Completeness < 0.7:
		recs = append(recs, "Completeness is moderate: some content may not have been extracted")
	}

	if m.Readability < 0.6 {
		recs = append(recs, "Readability is poor: the text may contain garbled characters or formatting noise")
	}
	if m.GarbledRatio > 0.1 {
		recs = append(recs, fmt.Sprintf("%.1f%% of sampled characters look garbled: consider OCR or another extraction tool", m.GarbledRatio*100))
	}

	switch {
	case m.InformationDensity < 0.3:
		recs = append(recs, "Information density is low: the document may lack technical or domain content")
	case m.InformationDensity < 0.5:
		recs = append(recs, "Information density is moderate: consider adding more key information")
	}

	switch {
	case m.StructureIntegrity < 0.4:
		recs = append(recs, "Structure is incomplete: headings and paragraph organization are missing")
	case m.StructureIntegrity < 0.6:
		recs = append(recs, "Structure needs work: add more hierarchical organization")
	}

	switch {
	case m.Overall >= 0.8:
		recs = append(recs, "Quality is good: the document is ready for in-depth analysis")
	case m.Overall >= 0.6:
		recs = append(recs, "Quality is moderate: optimize the text before in-depth analysis")
	default:
		recs = append(recs, "Quality is low: reprocess the document or use a specialized extraction tool")
	}

	return recs
}
