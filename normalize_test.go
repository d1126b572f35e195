package docgraph_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/docgraph"
	"github.com/stretchr/testify/assert"
)

// healthy metrics disable the conditional normalizer steps.
var healthy = docgraph.QualityMetrics{Completeness: 1, StructureIntegrity: 1}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("returns empty for empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, docgraph.Normalize("", docgraph.QualityMetrics{}))
	})

	t.Run("normalizes line endings and whitespace", func(t *testing.T) {
		t.Parallel()
		got := docgraph.Normalize("  first   line  \r\nsecond\tline\rthird.", healthy)
		assert.Equal(t, "first line\nsecond line\nthird.", got)
	})

	t.Run("keeps at most two blank lines", func(t *testing.T) {
		t.Parallel()
		got := docgraph.Normalize("a.\n\n\n\n\nb.", healthy)
		assert.Equal(t, "a.\n\n\nb.", got)
	})

	t.Run("rebuilds paragraphs when structure is weak", func(t *testing.T) {
		t.Parallel()
		text := "一、概述\nThe system collects data from many sources and stores it.\nIt keeps running even when sources fail.\n二、设计\nDetails follow in this part of the text and continue here."
		got := docgraph.Normalize(text, docgraph.QualityMetrics{Completeness: 1, StructureIntegrity: 0.2})
		assert.Equal(t,
			"一、概述 The system collects data from many sources and stores it. It keeps running even when sources fail.\n\n二、设计 Details follow in this part of the text and continue here.",
			got)
	})

	t.Run("starts paragraphs at headings and short unpunctuated lines", func(t *testing.T) {
		t.Parallel()
		text := "# Title\nbody line that is long enough to not count as a heading line.\nShort label\nmore text."
		got := docgraph.Normalize(text, docgraph.QualityMetrics{Completeness: 1})
		assert.Equal(t, "# Title body line that is long enough to not count as a heading line.\n\nShort label more text.", got)
	})

	t.Run("marks truncated low-completeness text", func(t *testing.T) {
		t.Parallel()
		got := docgraph.Normalize("it stops in the middle of", docgraph.QualityMetrics{StructureIntegrity: 1})
		assert.Equal(t, "it stops in the middle of...", got)
	})

	t.Run("does not mark text that ends a sentence", func(t *testing.T) {
		t.Parallel()
		got := docgraph.Normalize("完整的句子。", docgraph.QualityMetrics{StructureIntegrity: 1})
		assert.Equal(t, "完整的句子。", got)
	})

	t.Run("caps the working copy", func(t *testing.T) {
		t.Parallel()
		got := docgraph.Normalize(strings.Repeat("字", docgraph.NormalizeMaxRunes+100), healthy)
		assert.Equal(t, docgraph.NormalizeMaxRunes, utf8.RuneCountInString(got))
	})
}

func TestCleanPage(t *testing.T) {
	t.Parallel()

	t.Run("returns empty for blank pages", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, docgraph.CleanPage(" \n\n ", 3))
	})

	t.Run("adds the page header and marks headings", func(t *testing.T) {
		t.Parallel()
		got := docgraph.CleanPage("Introduction\nThis page explains   the setup.\n- bullet item\nClosing remark", 2)
		want := "=== Page 2 ===\n\n## Introduction\n\nThis page explains the setup.\n- bullet item\nClosing remark"
		assert.Equal(t, want, got)
	})

	t.Run("does not mark the last line or punctuated lines", func(t *testing.T) {
		t.Parallel()
		got := docgraph.CleanPage("A full sentence.\nTrailing Title", 1)
		assert.Equal(t, "=== Page 1 ===\n\nA full sentence.\nTrailing Title", got)
	})

	t.Run("collapses blank runs", func(t *testing.T) {
		t.Parallel()
		got := docgraph.CleanPage("one.\n\n\n\ntwo.", 1)
		assert.Equal(t, "=== Page 1 ===\n\none.\n\ntwo.", got)
	})
}
