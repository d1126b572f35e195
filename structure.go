package docgraph

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// StructureType describes the shape of a DocumentStructure.
type StructureType string

// Structure types.
const (
	StructureEmpty        StructureType = "empty"
	StructureSingle       StructureType = "single"
	StructureHierarchical StructureType = "hierarchical"
	StructureRepository   StructureType = "github_repository"
	StructureError        StructureType = "error"
)

// Section categories assigned in repository mode.
const (
	CategoryProjectInfo    = "project_info"
	CategoryReadme         = "readme"
	CategoryMetadata       = "metadata"
	CategoryDocumentation  = "documentation"
	CategoryConfig         = "config"
	CategoryCode           = "code"
	CategorySubpage        = "subpage"
	CategoryMarkdownHeader = "markdown_header"
	CategoryGeneral        = "general"
	CategoryOverview       = "overview"
)

// Labels written by the repository collector and the site scraper. The
// structurer recognizes them as headings.
const (
	LabelProjectInfo  = "GitHub project info:"
	LabelName         = "Name:"
	LabelReadme       = "README:"
	LabelDescription  = "Description:"
	LabelFiles        = "Files:"
	LabelSubpageTitle = "Subpage title:"
	LabelSubpageURL   = "Subpage URL:"
	LabelScore        = "Importance score:"
	LabelKeywords     = "Matched keywords:"
	LabelLinkText     = "Link text:"
	LabelPageContent  = "=== page content ==="
)

// DirectoryEntry is one line of a document's table of contents.
type DirectoryEntry struct {
	Title      string `json:"title"`
	Level      int    `json:"level"`
	SectionID  int    `json:"section_id"`
	LineNumber int    `json:"line_number"`
	Category   string `json:"section_type,omitempty"`
}

// StructureSection is a titled span of document lines.
type StructureSection struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Level     int    `json:"level"`
	SectionID int    `json:"section_id"`
	Anchor    string `json:"anchor"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	Category  string `json:"section_type,omitempty"`
}

// StructureStats summarizes the size of a structured document.
type StructureStats struct {
	SectionCount     int `json:"section_count"`
	TotalWords       int `json:"total_words"`
	TotalChars       int `json:"total_chars"`
	AvgSectionLength int `json:"avg_section_length"`
}

// DocumentStructure is the table of contents and section list of a document.
// Directory and Sections always reference the same set of section IDs and
// there is always at least one section.
type DocumentStructure struct {
	Directory  []DirectoryEntry   `json:"directory"`
	Sections   []StructureSection `json:"sections"`
	Summary    string             `json:"summary"`
	Type       StructureType      `json:"structure_type"`
	Statistics StructureStats     `json:"statistics"`
}

// headingRule recognizes one kind of heading line.
type headingRule struct {
	re       *regexp.Regexp
	level    func(line string, m []string) int
	category string
	file     bool
}

func fixedLevel(n int) func(string, []string) int {
	return func(string, []string) int { return n }
}

var (
	cjkNumeralRe   = regexp.MustCompile(`^[一二三四五六七八九十]{1,3}[、．.]`)
	chapterRe      = regexp.MustCompile(`^第[一二三四五六七八九十百零\d]+([章节篇部])`)
	numberedRe     = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.．、]`)
	dottedRe       = regexp.MustCompile(`^(\d+(?:\.\d+)+)\s`)
	parenNumberRe  = regexp.MustCompile(`^\(\d+\)`)
	parenCJKRe     = regexp.MustCompile(`^[（(][一二三四五六七八九十]+[）)]`)
	letteredRe     = regexp.MustCompile(`^[A-Z]\.`)
	markdownRe     = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	fileHeadingRe  = regexp.MustCompile(`^=== (.+) ===$`)
	codeConstructs = []string{"class ", "def ", "function ", "const ", "let ", "var ", "import ", "from ", "require(", "#include"}
)

func numberingLevel(_ string, m []string) int {
	return min(strings.Count(m[1], ".")+1, 3)
}

var genericRules = []headingRule{
	{re: cjkNumeralRe, level: fixedLevel(1)},
	{re: chapterRe, level: func(_ string, m []string) int {
		if m[1] == "节" {
			return 2
		}
		return 1
	}},
	{re: numberedRe, level: numberingLevel},
	{re: dottedRe, level: numberingLevel},
	{re: parenCJKRe, level: fixedLevel(2)},
	{re: parenNumberRe, level: fixedLevel(3)},
	{re: letteredRe, level: fixedLevel(2)},
	{re: markdownRe, level: func(_ string, m []string) int { return len(m[1]) }},
}

var repositoryRules = []headingRule{
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelPageContent) + `$`), level: fixedLevel(1), category: CategorySubpage},
	{re: fileHeadingRe, level: fixedLevel(1), file: true},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelProjectInfo) + `$`), level: fixedLevel(1), category: CategoryProjectInfo},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelName)), level: fixedLevel(2), category: CategoryMetadata},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelReadme) + `$`), level: fixedLevel(1), category: CategoryReadme},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelDescription)), level: fixedLevel(2), category: CategoryMetadata},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelFiles)), level: fixedLevel(2), category: CategoryMetadata},
	{re: regexp.MustCompile(`^# (.+)$`), level: fixedLevel(1), category: CategoryMarkdownHeader},
	{re: regexp.MustCompile(`^## (.+)$`), level: fixedLevel(2), category: CategoryMarkdownHeader},
	{re: regexp.MustCompile(`^### (.+)$`), level: fixedLevel(3), category: CategoryMarkdownHeader},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelSubpageTitle)), level: fixedLevel(1), category: CategorySubpage},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelSubpageURL)), level: fixedLevel(2), category: CategorySubpage},
	{re: regexp.MustCompile(`^` + regexp.QuoteMeta(LabelScore)), level: fixedLevel(2), category: CategorySubpage},
}

var categoryPriority = map[string]int{
	CategoryProjectInfo:    1,
	CategoryReadme:         2,
	CategoryMetadata:       3,
	CategoryDocumentation:  4,
	CategoryConfig:         5,
	CategoryCode:           6,
	CategorySubpage:        7,
	CategoryMarkdownHeader: 8,
	CategoryGeneral:        9,
}

var (
	configFiles    = []string{"package.json", "requirements.txt", "cargo.toml", "pom.xml", "go.mod", "pyproject.toml", "setup.py", "dockerfile", "docker-compose.yml"}
	codeExtensions = []string{".py", ".js", ".ts", ".java", ".cpp", ".rs", ".go"}
	docExtensions  = []string{".md", ".txt", ".rst"}
)

// techIndicators maps a technology to markers found in repository text.
var techIndicators = []struct {
	name    string
	markers []string
}{
	{"Python", []string{"requirements.txt", ".py", "setup.py", "pyproject.toml"}},
	{"JavaScript/Node.js", []string{"package.json", ".js", ".ts", "yarn.lock"}},
	{"Java", []string{"pom.xml", ".java", "build.gradle"}},
	{"Rust", []string{"Cargo.toml", ".rs"}},
	{"Go", []string{"go.mod", ".go"}},
	{"Docker", []string{"Dockerfile", "docker-compose"}},
}

// IsRepositoryContent reports whether text should be segmented with the
// repository rules.
func IsRepositoryContent(text, name string) bool {
	return strings.Contains(name, "scraped_github") ||
		strings.Contains(text, "=== ") ||
		strings.Contains(text, "GitHub project") ||
		strings.Contains(text, LabelReadme)
}

// Structure segments text into titled sections and builds a table of
// contents. Repository scrapes use dedicated heading rules and are ordered by
// section category. Structure never fails: unexpected errors produce a
// single-section structure of type StructureError.
func Structure(text, name string) (s *DocumentStructure) {
	defer func() {
		if r := recover(); r != nil {
			s = errorStructure(text, name, fmt.Sprint(r))
		}
	}()

	if strings.TrimSpace(text) == "" {
		return &DocumentStructure{
			Directory: []DirectoryEntry{{Title: name, Level: 1, SectionID: 1, LineNumber: 1}},
			Sections:  []StructureSection{{Title: name, Level: 1, SectionID: 1, Anchor: anchorFor(name), LineStart: 1, LineEnd: 1}},
			Summary:   "The document is empty.",
			Type:      StructureEmpty,
		}
	}

	if IsRepositoryContent(text, name) {
		return structureRepository(text, name)
	}
	return structureGeneric(text, name)
}

func errorStructure(text, name, reason string) *DocumentStructure {
	content := truncateRunes(text, 1000) + "..."
	return &DocumentStructure{
		Directory: []DirectoryEntry{{Title: name, Level: 1, SectionID: 1, LineNumber: 1}},
		Sections:  []StructureSection{{Title: name, Content: content, Level: 1, SectionID: 1, Anchor: anchorFor(name), LineStart: 1, LineEnd: 1}},
		Summary:   "Structure generation failed: " + reason,
		Type:      StructureError,
	}
}

// sectionBuilder accumulates sections while scanning lines.
type sectionBuilder struct {
	sections  []StructureSection
	directory []DirectoryEntry
	current   *openSection
}

type openSection struct {
	title    string
	level    int
	start    int
	category string
	file     bool
	lines    []string
}

func (b *sectionBuilder) open(sec *openSection) {
	b.current = sec
}

// addLine appends a content line to the open section. Blank lines are kept
// only once the section has content.
func (b *sectionBuilder) addLine(line string) {
	if b.current == nil {
		return
	}
	if line == "" && len(b.current.lines) == 0 {
		return
	}
	b.current.lines = append(b.current.lines, line)
}

// close emits the open section when it has content. end is the 1-based last
// line of the section.
func (b *sectionBuilder) close(end int) {
	sec := b.current
	b.current = nil
	if sec == nil {
		return
	}
	content := strings.TrimRightFunc(strings.Join(sec.lines, "\n"), unicode.IsSpace)
	if strings.TrimSpace(content) == "" {
		return
	}
	id := len(b.sections) + 1
	b.sections = append(b.sections, StructureSection{
		Title:     sec.title,
		Content:   content,
		Level:     sec.level,
		SectionID: id,
		LineStart: sec.start,
		LineEnd:   end,
		Category:  sec.category,
	})
	b.directory = append(b.directory, DirectoryEntry{
		Title:      sec.title,
		Level:      sec.level,
		SectionID:  id,
		LineNumber: sec.start,
		Category:   sec.category,
	})
}

// whole replaces an empty result with one section spanning the document.
func (b *sectionBuilder) whole(title, text string, lineCount int, category string) {
	if len(b.sections) > 0 {
		return
	}
	b.sections = []StructureSection{{
		Title:     title,
		Content:   strings.TrimSpace(text),
		Level:     1,
		SectionID: 1,
		LineStart: 1,
		LineEnd:   lineCount,
		Category:  category,
	}}
	b.directory = []DirectoryEntry{{Title: title, Level: 1, SectionID: 1, LineNumber: 1, Category: category}}
}

func structureGeneric(text, name string) *DocumentStructure {
	lines := strings.Split(text, "\n")
	b := &sectionBuilder{}
	b.open(&openSection{title: "Document start", level: 0, start: 1})

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			b.addLine("")
			continue
		}
		if level, ok := genericHeading(line); ok {
			b.close(i)
			b.open(&openSection{title: line, level: level, start: i + 1})
			continue
		}
		b.addLine(line)
	}
	b.close(len(lines))
	b.whole(name, text, len(lines), "")

	assignAnchors(b.sections)
	st := &DocumentStructure{
		Directory:  b.directory,
		Sections:   b.sections,
		Summary:    genericSummary(text, b.sections),
		Type:       StructureSingle,
		Statistics: structureStats(text, len(b.sections)),
	}
	if len(b.sections) > 1 {
		st.Type = StructureHierarchical
	}
	return st
}

func genericHeading(line string) (int, bool) {
	for _, rule := range genericRules {
		if m := rule.re.FindStringSubmatch(line); m != nil {
			return rule.level(line, m), true
		}
	}
	if looksLikeTitle(line) {
		return 3, true
	}
	return 0, false
}

// looksLikeTitle reports whether a line is short, capitalized, unpunctuated
// and free of digits near its start.
func looksLikeTitle(line string) bool {
	if utf8.RuneCountInString(line) >= 100 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) || hasTerminalPunctuation(line) {
		return false
	}
	return !strings.ContainsFunc(truncateRunes(line, 10), unicode.IsDigit)
}

func structureRepository(text, name string) *DocumentStructure {
	lines := strings.Split(text, "\n")
	b := &sectionBuilder{}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			b.addLine("")
			continue
		}

		if sec, ok := repositoryHeading(line, i+1); ok {
			b.close(i)
			b.open(sec)
			continue
		}

		if b.current != nil && b.current.file && isCodeConstruct(line) {
			b.close(i)
			b.open(&openSection{
				title:    truncateTitle(line, 50),
				level:    3,
				start:    i + 1,
				category: CategoryCode,
				file:     true,
			})
			continue
		}

		if b.current == nil {
			b.open(&openSection{title: "Project overview", level: 1, start: i + 1, category: CategoryOverview})
		}
		b.addLine(line)
	}
	b.close(len(lines))
	b.whole("Repository content", text, len(lines), CategoryGeneral)

	sort.SliceStable(b.sections, func(i, j int) bool {
		pi, pj := priorityOf(b.sections[i].Category), priorityOf(b.sections[j].Category)
		if pi != pj {
			return pi < pj
		}
		return b.sections[i].LineStart < b.sections[j].LineStart
	})
	sort.SliceStable(b.directory, func(i, j int) bool {
		pi, pj := priorityOf(b.directory[i].Category), priorityOf(b.directory[j].Category)
		if pi != pj {
			return pi < pj
		}
		return b.directory[i].LineNumber < b.directory[j].LineNumber
	})

	assignAnchors(b.sections)
	return &DocumentStructure{
		Directory:  b.directory,
		Sections:   b.sections,
		Summary:    repositorySummary(text, b.sections),
		Type:       StructureRepository,
		Statistics: structureStats(text, len(b.sections)),
	}
}

func repositoryHeading(line string, lineNumber int) (*openSection, bool) {
	for _, rule := range repositoryRules {
		m := rule.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := line
		if len(m) > 1 {
			title = m[1]
		}
		category := rule.category
		if rule.file {
			category = fileCategory(title)
		}
		return &openSection{
			title:    title,
			level:    rule.level(line, m),
			start:    lineNumber,
			category: category,
			file:     rule.file,
		}, true
	}
	return nil, false
}

func isCodeConstruct(line string) bool {
	for _, prefix := range codeConstructs {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return strings.HasSuffix(line, ":") && utf8.RuneCountInString(line) < 80
}

// fileCategory classifies a "=== name ===" section by the unit name.
func fileCategory(title string) string {
	lower := strings.ToLower(title)
	base := path.Base(lower)
	for _, f := range configFiles {
		if base == f {
			return CategoryConfig
		}
	}
	for _, ext := range codeExtensions {
		if strings.HasSuffix(lower, ext) {
			return CategoryCode
		}
	}
	switch {
	case strings.Contains(lower, "readme"):
		return CategoryReadme
	case strings.Contains(lower, "github project") || strings.Contains(lower, "project info"):
		return CategoryProjectInfo
	case strings.HasPrefix(lower, "subpage"):
		return CategorySubpage
	}
	for _, ext := range docExtensions {
		if strings.HasSuffix(lower, ext) {
			return CategoryDocumentation
		}
	}
	return CategoryGeneral
}

func priorityOf(category string) int {
	if p, ok := categoryPriority[category]; ok {
		return p
	}
	return 10
}

func truncateTitle(line string, n int) string {
	if utf8.RuneCountInString(line) <= n {
		return line
	}
	return truncateRunes(line, n) + "..."
}

func structureStats(text string, sections int) StructureStats {
	words := len(strings.Fields(text))
	return StructureStats{
		SectionCount:     sections,
		TotalWords:       words,
		TotalChars:       utf8.RuneCountInString(text),
		AvgSectionLength: words / max(sections, 1),
	}
}

func genericSummary(text string, sections []StructureSection) string {
	chars := utf8.RuneCountInString(text)
	if chars < 100 {
		return "The document is too short to summarize."
	}

	parts := []string{fmt.Sprintf("The document contains %d words and %d characters.", len(strings.Fields(text)), chars)}
	if len(sections) > 1 {
		parts = append(parts, fmt.Sprintf("It is divided into %d sections.", len(sections)))
		var main []string
		for _, s := range sections[:min(5, len(sections))] {
			if s.Level <= 2 {
				main = append(main, s.Title)
			}
		}
		if len(main) > 0 {
			parts = append(parts, "Main sections: "+strings.Join(main, ", ")+".")
		}
	} else {
		parts = append(parts, "It consists of a single section.")
	}

	opening := strings.TrimSpace(truncateRunes(text, 200))
	if chars > 200 {
		opening += "..."
	}
	parts = append(parts, "Opening: "+opening)
	return strings.Join(parts, " ")
}

func repositorySummary(text string, sections []StructureSection) string {
	parts := []string{fmt.Sprintf("Repository analysis with %d words and %d characters.", len(strings.Fields(text)), utf8.RuneCountInString(text))}

	counts := make(map[string]int)
	for _, s := range sections {
		counts[s.Category]++
	}

	if len(sections) > 1 {
		parts = append(parts, fmt.Sprintf("Content is organized into %d structured sections.", len(sections)))
		var includes []string
		if counts[CategoryProjectInfo] > 0 {
			includes = append(includes, "project information")
		}
		if counts[CategoryReadme] > 0 {
			includes = append(includes, "README")
		}
		if n := counts[CategoryCode]; n > 0 {
			includes = append(includes, strconv.Itoa(n)+" code sections")
		}
		if n := counts[CategoryConfig]; n > 0 {
			includes = append(includes, strconv.Itoa(n)+" config files")
		}
		if n := counts[CategoryDocumentation]; n > 0 {
			includes = append(includes, strconv.Itoa(n)+" documentation files")
		}
		if len(includes) > 0 {
			parts = append(parts, "Includes: "+strings.Join(includes, ", ")+".")
		}
	} else {
		parts = append(parts, "The content forms a single block.")
	}

	if tech := DetectTechStack(text); len(tech) > 0 {
		parts = append(parts, "Detected tech stack: "+strings.Join(tech[:min(3, len(tech))], ", ")+".")
	}
	return strings.Join(parts, " ")
}

// DetectTechStack returns the technologies whose markers appear in text.
func DetectTechStack(text string) []string {
	var found []string
	for _, t := range techIndicators {
		for _, marker := range t.markers {
			if strings.Contains(text, marker) {
				found = append(found, t.name)
				break
			}
		}
	}
	return found
}

// assignAnchors sets URL-safe anchors on sections, adding numeric suffixes
// to duplicates.
func assignAnchors(sections []StructureSection) {
	counts := make(map[string]int)
	for i := range sections {
		base := anchorFor(sections[i].Title)
		anchor := base
		if n, ok := counts[base]; ok {
			anchor = base + "-" + strconv.Itoa(n)
			counts[base]++
		} else {
			counts[base] = 1
		}
		sections[i].Anchor = anchor
	}
}

// anchorFor creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func anchorFor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' || r == '.' || r == '_' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	result := strings.TrimSuffix(sb.String(), "-")
	if result == "" {
		return "section"
	}
	return result
}
