package crawl

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docgraph"
)

// DedupPrefix is the number of leading characters of a unit's trimmed
// content that identify it during deduplication.
const DedupPrefix = 500

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// DedupUnits drops units whose leading content repeats an earlier unit's.
// First-seen order is kept.
func DedupUnits(units []docgraph.ContentUnit) []docgraph.ContentUnit {
	seen := make(map[uint64]bool, len(units))
	out := make([]docgraph.ContentUnit, 0, len(units))
	for _, u := range units {
		key := xxhash.Sum64String(dedupKey(u.Content))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, u)
	}
	return out
}

func dedupKey(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) > DedupPrefix {
		return string(runes[:DedupPrefix])
	}
	return content
}

// Combine deduplicates units and formats them into one document.
func Combine(source string, units []docgraph.ContentUnit) (string, []docgraph.ContentUnit) {
	kept := DedupUnits(units)
	return docgraph.FormatUnits(source, kept), kept
}
