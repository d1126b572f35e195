package docgraph_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionIDs(st *docgraph.DocumentStructure) (dir, sec []int) {
	for _, d := range st.Directory {
		dir = append(dir, d.SectionID)
	}
	for _, s := range st.Sections {
		sec = append(sec, s.SectionID)
	}
	return dir, sec
}

func TestStructure(t *testing.T) {
	t.Parallel()

	t.Run("splits numbered headings into hierarchical sections", func(t *testing.T) {
		t.Parallel()

		text := "1. A\ntext\n2. B\ntext\n3. C\ntext"

		st := docgraph.Structure(text, "notes.txt")

		require.Len(t, st.Sections, 3)
		assert.Equal(t, docgraph.StructureHierarchical, st.Type)
		assert.Equal(t, "1. A", st.Sections[0].Title)
		assert.Equal(t, "text", st.Sections[0].Content)
		assert.Equal(t, 1, st.Sections[0].LineStart)
		assert.Equal(t, 2, st.Sections[0].LineEnd)
		assert.Equal(t, "3. C", st.Sections[2].Title)
		assert.Equal(t, 6, st.Sections[2].LineEnd)
	})

	t.Run("builds a directory entry per heading", func(t *testing.T) {
		t.Parallel()

		text := "1. Intro\nwe start here.\n2. Body\nthe main part.\n3. Conclusion\nwe end here."

		st := docgraph.Structure(text, "essay.txt")

		require.Len(t, st.Directory, 3)
		require.Len(t, st.Sections, 3)
		assert.Equal(t, docgraph.StructureHierarchical, st.Type)
		for i, title := range []string{"1. Intro", "2. Body", "3. Conclusion"} {
			assert.Equal(t, title, st.Directory[i].Title)
			assert.Equal(t, title, st.Sections[i].Title)
		}
	})

	t.Run("synthesizes one section when there are no headings", func(t *testing.T) {
		t.Parallel()

		st := docgraph.Structure("just some lowercase prose without any headings.", "plain.txt")

		require.Len(t, st.Sections, 1)
		assert.Equal(t, docgraph.StructureSingle, st.Type)
		assert.Equal(t, "Document start", st.Sections[0].Title)
	})

	t.Run("uses the document name for heading-only text", func(t *testing.T) {
		t.Parallel()

		st := docgraph.Structure("# Title\n## Subtitle", "doc.md")

		require.Len(t, st.Sections, 1)
		assert.Equal(t, "doc.md", st.Sections[0].Title)
		assert.Equal(t, "# Title\n## Subtitle", st.Sections[0].Content)
	})

	t.Run("returns an empty structure with one section for blank text", func(t *testing.T) {
		t.Parallel()

		st := docgraph.Structure("  \n ", "blank.txt")

		assert.Equal(t, docgraph.StructureEmpty, st.Type)
		require.Len(t, st.Sections, 1)
		require.Len(t, st.Directory, 1)
		assert.Equal(t, st.Directory[0].SectionID, st.Sections[0].SectionID)
	})

	t.Run("assigns heading levels", func(t *testing.T) {
		t.Parallel()

		text := "第一章 总述\nbody.\n第二节 细节\nbody.\n1.2. Detail\nbody.\n## Markdown\nbody.\n（一）要点\nbody."

		st := docgraph.Structure(text, "levels.txt")

		require.Len(t, st.Sections, 5)
		levels := make([]int, 0, len(st.Sections))
		for _, s := range st.Sections {
			levels = append(levels, s.Level)
		}
		assert.Equal(t, []int{1, 2, 2, 2, 2}, levels)
	})

	t.Run("keeps directory and section ids in sync", func(t *testing.T) {
		t.Parallel()

		text := "Intro paragraph.\n\n# One\nbody.\n# Empty\n# Two\nbody."

		st := docgraph.Structure(text, "doc.md")

		dir, sec := sectionIDs(st)
		assert.ElementsMatch(t, dir, sec)
		assert.Len(t, st.Sections, 3)
	})

	t.Run("generates unique anchors", func(t *testing.T) {
		t.Parallel()

		st := docgraph.Structure("# Setup\nbody.\n# Setup\nbody.", "doc.md")

		require.Len(t, st.Sections, 2)
		assert.Equal(t, "setup", st.Sections[0].Anchor)
		assert.Equal(t, "setup-1", st.Sections[1].Anchor)
	})

	t.Run("orders repository sections by category", func(t *testing.T) {
		t.Parallel()

		text := strings.Join([]string{
			"URL: https://github.com/acme/widget",
			"",
			"=== main.py ===",
			"import os",
			"print('hi')",
			"=== README.md ===",
			"Widget makes widgets.",
			"=== package.json ===",
			"{\"name\": \"widget\"}",
			"=== GitHub project info ===",
			docgraph.LabelProjectInfo,
			"Stars: 10",
		}, "\n")

		st := docgraph.Structure(text, "scraped_github_specialized_widget.txt")

		assert.Equal(t, docgraph.StructureRepository, st.Type)
		require.NotEmpty(t, st.Sections)
		assert.Equal(t, docgraph.CategoryProjectInfo, st.Sections[0].Category)

		categories := make([]string, 0, len(st.Sections))
		for _, s := range st.Sections {
			categories = append(categories, s.Category)
		}
		assert.Contains(t, categories, docgraph.CategoryReadme)
		assert.Contains(t, categories, docgraph.CategoryConfig)
		assert.Contains(t, categories, docgraph.CategoryCode)
		assert.Contains(t, categories, docgraph.CategoryOverview)
		assert.Equal(t, docgraph.CategoryOverview, categories[len(categories)-1])

		dir, sec := sectionIDs(st)
		assert.ElementsMatch(t, dir, sec)
		assert.Contains(t, st.Summary, "Python")
	})

	t.Run("detects repository content by markers", func(t *testing.T) {
		t.Parallel()
		assert.True(t, docgraph.IsRepositoryContent("x", "scraped_github_specialized_a.txt"))
		assert.True(t, docgraph.IsRepositoryContent("README:\nhello", "a.txt"))
		assert.False(t, docgraph.IsRepositoryContent("plain text", "a.txt"))
	})
}

func TestDetectTechStack(t *testing.T) {
	t.Parallel()

	got := docgraph.DetectTechStack("=== go.mod ===\nmodule x\n=== Dockerfile ===\nFROM golang")

	assert.Equal(t, []string{"Go", "Docker"}, got)
}
