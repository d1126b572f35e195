package docgraph

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeMaxRunes caps the text the normalizer works on.
const NormalizeMaxRunes = 20000

// maxBlankLines is the longest run of blank lines kept by cleanup.
const maxBlankLines = 2

var terminalPunctuation = []string{"。", "！", "？", ".", "!", "?"}

// paragraphStartRe matches lines that open a new paragraph during
// reconstruction: CJK numbered items, short numbered and lettered items,
// parenthesized CJK numerals and markdown headings.
var paragraphStartRe = regexp.MustCompile(`^(?:[一二三四五]、|[1-5]\.|（[一二三]）|[A-Z]\.|#)`)

// Normalize cleans extracted text according to its quality metrics.
//
// Line endings and whitespace are normalized unconditionally. Text with weak
// structure is regrouped into paragraphs, and text with low completeness that
// stops mid-sentence is marked with a trailing ellipsis. Normalize never
// fails: if a step panics, the trimmed input is returned.
func Normalize(text string, m QualityMetrics) (out string) {
	if text == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			out = strings.TrimSpace(text)
		}
	}()

	work := truncateRunes(text, NormalizeMaxRunes)
	work = normalizeWhitespace(work, maxBlankLines)

	if m.StructureIntegrity < 0.5 {
		work = rebuildParagraphs(work)
	}

	if m.Completeness < 0.5 && work != "" && !hasTerminalPunctuation(work) {
		work += "..."
	}

	return strings.TrimSpace(work)
}

// normalizeWhitespace converts line endings to LF, trims every line,
// collapses runs of inner whitespace to a single space and keeps at most
// maxBlank consecutive blank lines.
func normalizeWhitespace(text string, maxBlank int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			blank++
			if blank <= maxBlank {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}

func rebuildParagraphs(text string) string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if startsParagraph(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

func startsParagraph(line string) bool {
	if paragraphStartRe.MatchString(line) {
		return true
	}
	return utf8.RuneCountInString(line) < 50 && !hasTerminalPunctuation(line)
}

func hasTerminalPunctuation(s string) bool {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	for _, p := range terminalPunctuation {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// CleanPage prepares the text of one binary document page: it normalizes
// whitespace, marks probable headings as markdown headings and prefixes the
// page header. Empty input yields an empty string.
func CleanPage(text string, page int) string {
	cleaned := normalizeWhitespace(strings.TrimSpace(text), 1)
	if cleaned == "" {
		return ""
	}

	lines := strings.Split(cleaned, "\n")
	marked := make([]string, 0, len(lines)+8)
	for i, line := range lines {
		if line == "" {
			marked = append(marked, "")
			continue
		}
		if i < len(lines)-1 && isPageHeading(line) {
			if len(marked) > 0 && marked[len(marked)-1] != "" {
				marked = append(marked, "")
			}
			marked = append(marked, "## "+line, "")
			continue
		}
		marked = append(marked, line)
	}

	result := strings.TrimSpace(normalizeWhitespace(strings.Join(marked, "\n"), maxBlankLines))
	if result == "" {
		return ""
	}
	return fmt.Sprintf("=== Page %d ===\n\n%s", page, result)
}

// isPageHeading reports whether a line looks like a title: short, starting
// with an upper-case letter, without terminal punctuation and not a list item.
func isPageHeading(line string) bool {
	if utf8.RuneCountInString(line) >= 80 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) {
		return false
	}
	if hasTerminalPunctuation(line) {
		return false
	}
	for _, prefix := range []string{"•", "-", "1.", "2.", "3."} {
		if strings.HasPrefix(line, prefix) {
			return false
		}
	}
	return true
}
