package docgraph

import (
	"fmt"
	"strings"
)

// ValidationChecks holds per-category verification counts and ratios.
type ValidationChecks struct {
	EntityAccuracy        float64 `json:"entity_accuracy"`
	ConceptAccuracy       float64 `json:"concept_accuracy"`
	RelationshipAccuracy  float64 `json:"relationship_accuracy"`
	VerifiedEntities      int     `json:"verified_entities"`
	TotalEntities         int     `json:"total_entities"`
	VerifiedConcepts      int     `json:"verified_concepts"`
	TotalConcepts         int     `json:"total_concepts"`
	VerifiedRelationships int     `json:"verified_relationships"`
	TotalRelationships    int     `json:"total_relationships"`
}

// ValidationResult reports how much of an analysis is backed by the source
// text.
type ValidationResult struct {
	AccuracyScore   float64          `json:"accuracy_score"`
	Checks          ValidationChecks `json:"validation_checks"`
	Warnings        []string         `json:"warnings"`
	Recommendations []string         `json:"recommendations"`
}

// ValidateExtraction cross-checks the entities, concepts and relationships
// of an analysis against literal, case-insensitive presence in the source
// text. The accuracy score is the mean of the categories that contain at
// least one item, or zero when none do. It never fails.
func ValidateExtraction(a *AnalysisResult, source string) *ValidationResult {
	v := &ValidationResult{Warnings: []string{}, Recommendations: []string{}}
	if a == nil || source == "" {
		v.Warnings = append(v.Warnings, "Missing analysis data: nothing to validate")
		return v
	}

	text := strings.ToLower(source)
	found := func(s string) bool {
		s = strings.ToLower(s)
		return s != "" && strings.Contains(text, s)
	}

	c := &v.Checks
	c.TotalEntities = len(a.Entities)
	for _, e := range a.Entities {
		if found(e) {
			c.VerifiedEntities++
		}
	}

	c.TotalConcepts = len(a.Concepts)
	for _, concept := range a.Concepts {
		if found(concept) || anyTokenFound(concept, found) {
			c.VerifiedConcepts++
		}
	}

	c.TotalRelationships = len(a.Relationships)
	for _, rel := range a.Relationships {
		if found(rel.Source) && found(rel.Target) {
			c.VerifiedRelationships++
		}
	}

	var components []float64
	if c.TotalEntities > 0 {
		c.EntityAccuracy = float64(c.VerifiedEntities) / float64(c.TotalEntities)
		components = append(components, c.EntityAccuracy)
		if c.EntityAccuracy < 0.7 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Entity accuracy is low (%.1f%%): some entities may not appear in the source", c.EntityAccuracy*100))
		}
	}
	if c.TotalConcepts > 0 {
		c.ConceptAccuracy = float64(c.VerifiedConcepts) / float64(c.TotalConcepts)
		components = append(components, c.ConceptAccuracy)
		if c.ConceptAccuracy < 0.6 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Concept accuracy is low (%.1f%%): some concepts may not match the document", c.ConceptAccuracy*100))
		}
	}
	if c.TotalRelationships > 0 {
		c.RelationshipAccuracy = float64(c.VerifiedRelationships) / float64(c.TotalRelationships)
		components = append(components, c.RelationshipAccuracy)
		if c.RelationshipAccuracy < 0.5 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Relationship accuracy is low (%.1f%%): some relationships may be inferred rather than stated", c.RelationshipAccuracy*100))
		}
	}

	if len(components) > 0 {
		var sum float64
		for _, s := range components {
			sum += s
		}
		v.AccuracyScore = sum / float64(len(components))
	}

	switch {
	case v.AccuracyScore >= 0.8:
		v.Recommendations = append(v.Recommendations, "Extraction accuracy is good and the results are reliable")
	case v.AccuracyScore >= 0.6:
		v.Recommendations = append(v.Recommendations, "Extraction accuracy is moderate: review key information manually")
	default:
		v.Recommendations = append(v.Recommendations, "Extraction accuracy is low: re-run the analysis or review it manually")
	}
	return v
}

func anyTokenFound(s string, found func(string) bool) bool {
	for _, token := range strings.Fields(s) {
		if found(token) {
			return true
		}
	}
	return false
}
