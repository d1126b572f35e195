package goquery

import (
	"net/url"
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docgraph"
)

var _ docgraph.LinkSelector = (*SubpageSelector)(nil)

// maxDiscovered caps discovery regardless of the configured page count.
const maxDiscovered = 50

// keywordTier groups importance keywords sharing one weight.
type keywordTier struct {
	weight   int
	keywords []string
}

var keywordTiers = []keywordTier{
	{3, []string{
		"about", "documentation", "docs", "api", "guide", "tutorial", "getting-started",
		"overview", "introduction", "readme", "features", "product", "service", "home",
		"main", "index", "dashboard", "profile", "settings", "config",
		"关于", "文档", "介绍", "说明", "指南", "教程", "产品", "服务", "功能", "首页",
		"主页", "概览", "特性", "特色", "优势", "解决方案", "方案",
	}},
	{2, []string{
		"help", "support", "faq", "pricing", "contact", "team", "news", "blog",
		"download", "install", "setup", "example", "demo", "learn", "course",
		"project", "work", "portfolio", "gallery", "media", "video", "image",
		"帮助", "支持", "联系", "团队", "新闻", "博客", "下载", "安装", "配置", "示例",
		"案例", "项目", "作品", "展示", "演示", "学习", "课程", "培训", "资料",
	}},
	{1, []string{
		"resources", "community", "forum", "wiki", "changelog", "history",
		"archive", "search", "tag", "category", "topic", "thread", "post",
		"article", "story", "event", "calendar", "schedule", "tool", "utility",
		"资源", "社区", "论坛", "百科", "更新日志", "历史", "归档", "搜索", "标签",
		"分类", "话题", "讨论", "文章", "故事", "活动", "日程", "工具", "应用",
		"detail", "info", "more", "view", "show", "display", "list", "page",
		"详细", "详情", "更多", "查看", "显示", "列表", "页面",
	}},
}

var (
	interestingPaths = []string{"/doc", "/api", "/guide", "/help", "/about", "/blog", "/news", "/project", "/work"}
	cjkPathTerms     = []string{"关于", "文档", "帮助", "产品", "服务", "新闻", "博客", "项目", "作品"}
	usefulExtensions = []string{".html", ".htm", ".php", ".asp", ".jsp", ".py", ".md", ".txt", ".pdf"}
)

// SubpageSelector discovers the sub-pages of a site most likely to carry
// substantive content, scoring links by keywords and URL shape.
type SubpageSelector struct {
	maxPages int
}

// SelectorOption configures a SubpageSelector.
type SelectorOption func(*SubpageSelector)

// WithMaxPages sets how many sub-pages will be fetched. Discovery returns up
// to twice as many candidates, never more than fifty.
func WithMaxPages(n int) SelectorOption {
	return func(s *SubpageSelector) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// NewSubpageSelector creates a new SubpageSelector.
func NewSubpageSelector(opts ...SelectorOption) *SubpageSelector {
	s := &SubpageSelector{maxPages: docgraph.DefaultMaxSubpages}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the selector's identifier.
func (s *SubpageSelector) Name() string {
	return "subpage"
}

// ExtractLinks parses HTML and returns same-host links with a positive
// importance score, highest first. Ties keep document order.
func (s *SubpageSelector) ExtractLinks(html string, baseURL string) ([]docgraph.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docgraph.Errorf(docgraph.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docgraph.Errorf(docgraph.EINVALID, "failed to parse HTML: %v", err)
	}

	var links []docgraph.DiscoveredLink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || isSkippedHref(href) {
			return
		}
		if href == "/" || href == base.Path {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || !isSameHost(base, resolved) {
			return
		}

		u, err := url.Parse(resolved)
		if err != nil {
			return
		}

		text := strings.TrimSpace(sel.Text())
		title := strings.ToLower(strings.TrimSpace(sel.AttrOr("title", "")))

		score, keywords := scoreLink(base, u, strings.ToLower(text), title)
		if score <= 0 {
			return
		}

		if text == "" {
			text = path.Base(strings.TrimRight(href, "/"))
		}
		links = append(links, docgraph.DiscoveredLink{
			URL:      resolved,
			Text:     truncate(text, 100),
			Title:    truncate(title, 50),
			Score:    score,
			Keywords: keywords,
		})
	})

	slices.SortStableFunc(links, func(a, b docgraph.DiscoveredLink) int {
		return b.Score - a.Score
	})

	limit := min(s.maxPages*2, maxDiscovered)
	seen := make(map[string]bool, len(links))
	out := make([]docgraph.DiscoveredLink, 0, min(len(links), limit))
	for _, link := range links {
		if len(out) == limit {
			break
		}
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		out = append(out, link)
	}
	return out, nil
}

func scoreLink(base, u *url.URL, text, title string) (int, []string) {
	urlPath := strings.ToLower(u.Path)
	query := strings.ToLower(u.RawQuery)

	score := 0
	if pathDepth(urlPath) > pathDepth(base.Path) {
		score++
	}

	var matched []string
	for _, tier := range keywordTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(urlPath, kw) || strings.Contains(text, kw) ||
				strings.Contains(title, kw) || strings.Contains(query, kw) {
				score += tier.weight
				matched = append(matched, kw)
			}
		}
	}

	if containsAny(urlPath, interestingPaths) {
		score += 2
	}
	if containsAny(urlPath, cjkPathTerms) {
		score += 2
	}
	for _, ext := range usefulExtensions {
		if strings.HasSuffix(urlPath, ext) {
			score++
			break
		}
	}
	if n := utf8.RuneCountInString(text); n > 3 && n < 100 {
		score++
	}
	if strings.Contains(urlPath, "page") && strings.ContainsFunc(urlPath, unicode.IsDigit) {
		score++
	}

	if score == 0 && (len(strings.Trim(urlPath, "/")) > len(strings.Trim(base.Path, "/")) || u.RawQuery != "") {
		return 1, []string{"subpage"}
	}
	return score, matched
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
