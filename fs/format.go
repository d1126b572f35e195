// Package fs exports analysis reports as markdown files.
package fs

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docgraph"
	"gopkg.in/yaml.v3"
)

// IndexFile is the name of the report summary file.
const IndexFile = "index.md"

// SectionsDir holds one markdown file per structure section.
const SectionsDir = "sections"

// indexFrontMatter is the YAML header of IndexFile.
type indexFrontMatter struct {
	Source     string    `yaml:"source"`
	Name       string    `yaml:"name"`
	Kind       string    `yaml:"kind"`
	Route      string    `yaml:"route"`
	Status     string    `yaml:"status"`
	Grade      string    `yaml:"grade"`
	Quality    float64   `yaml:"quality"`
	Confidence float64   `yaml:"confidence,omitempty"`
	Document   string    `yaml:"document,omitempty"`
	Tokens     int       `yaml:"tokens,omitempty"`
	Exported   time.Time `yaml:"exported"`
	Warnings   []string  `yaml:"warnings,omitempty"`
}

// sectionFrontMatter is the YAML header of a section file.
type sectionFrontMatter struct {
	Source    string `yaml:"source"`
	Title     string `yaml:"title"`
	Section   int    `yaml:"section"`
	Level     int    `yaml:"level"`
	Category  string `yaml:"category,omitempty"`
	LineStart int    `yaml:"line_start"`
	LineEnd   int    `yaml:"line_end"`
}

// writeFrontMatter renders v between YAML document markers.
func writeFrontMatter(b *strings.Builder, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding front matter: %w", err)
	}
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n\n")
	return nil
}

// FormatIndex renders the report summary: quality, analysis, validation and
// the table of contents linking to the section files.
func FormatIndex(r *docgraph.Report, exported time.Time) (string, error) {
	fm := indexFrontMatter{
		Source:   r.Source,
		Name:     r.Name,
		Kind:     string(r.Kind),
		Route:    string(r.Route),
		Status:   string(r.Status),
		Grade:    r.Grade,
		Quality:  r.Quality.Overall,
		Document: r.DocumentID,
		Tokens:   r.TokenCount,
		Exported: exported.UTC(),
		Warnings: r.Warnings,
	}
	if r.Analysis != nil {
		fm.Confidence = r.Analysis.Confidence
	}

	var b strings.Builder
	if err := writeFrontMatter(&b, fm); err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Message != "" {
		b.WriteString(r.Message + "\n\n")
	}

	b.WriteString("## Quality\n\n")
	fmt.Fprintf(&b, "- Overall: %.2f (%s)\n", r.Quality.Overall, r.Grade)
	fmt.Fprintf(&b, "- Completeness: %.2f\n", r.Quality.Completeness)
	fmt.Fprintf(&b, "- Readability: %.2f\n", r.Quality.Readability)
	fmt.Fprintf(&b, "- Information density: %.2f\n", r.Quality.InformationDensity)
	fmt.Fprintf(&b, "- Structure integrity: %.2f\n", r.Quality.StructureIntegrity)
	for _, rec := range r.QualityRecommendations {
		fmt.Fprintf(&b, "- Recommendation: %s\n", rec)
	}
	b.WriteString("\n")

	if a := r.Analysis; a != nil {
		b.WriteString("## Analysis\n\n")
		if r.AnalysisSummary != "" {
			b.WriteString(r.AnalysisSummary + "\n\n")
		}
		writeList(&b, "Entities", a.Entities)
		writeList(&b, "Concepts", a.Concepts)
		if len(a.Relationships) > 0 {
			b.WriteString("### Relationships\n\n")
			for _, rel := range a.Relationships {
				fmt.Fprintf(&b, "- %s -[%s]-> %s\n", rel.Source, rel.Type, rel.Target)
			}
			b.WriteString("\n")
		}
	}

	if v := r.Validation; v != nil {
		b.WriteString("## Validation\n\n")
		fmt.Fprintf(&b, "- Accuracy: %.2f\n", v.AccuracyScore)
		for _, w := range v.Warnings {
			fmt.Fprintf(&b, "- Warning: %s\n", w)
		}
		b.WriteString("\n")
	}

	if s := r.Structure; s != nil && len(s.Sections) > 0 {
		b.WriteString("## Sections\n\n")
		for _, sec := range s.Sections {
			indent := strings.Repeat("  ", max(sec.Level-1, 0))
			fmt.Fprintf(&b, "%s- [%s](%s/%s)\n", indent, sec.Title, SectionsDir, SectionFile(sec))
		}
	}

	return b.String(), nil
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// FormatSection renders one structure section with YAML front matter.
func FormatSection(r *docgraph.Report, sec docgraph.StructureSection) (string, error) {
	var b strings.Builder
	err := writeFrontMatter(&b, sectionFrontMatter{
		Source:    r.Source,
		Title:     sec.Title,
		Section:   sec.SectionID,
		Level:     sec.Level,
		Category:  sec.Category,
		LineStart: sec.LineStart,
		LineEnd:   sec.LineEnd,
	})
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", min(max(sec.Level, 1), 6)), sec.Title)
	b.WriteString(sec.Content)
	if !strings.HasSuffix(sec.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}

// SectionFile returns the file name of a section: its zero-padded ID and
// a slug of its anchor. The slug keeps only ASCII letters, digits and
// hyphens so no section can escape SectionsDir.
// Example: {SectionID: 3, Anchor: "Getting Started"} → 003-getting-started.md
func SectionFile(sec docgraph.StructureSection) string {
	slug := Slug(sec.Anchor)
	if slug == "" {
		slug = Slug(sec.Title)
	}
	if slug == "" {
		slug = "section"
	}
	return fmt.Sprintf("%03d-%s.md", sec.SectionID, slug)
}

// Slug lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slug(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
