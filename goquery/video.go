package goquery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docgraph"
)

// fieldRule extracts one VideoInfo field.
type fieldRule struct {
	set        func(b *docgraph.VideoInfoBuilder, v string)
	valid      Validator
	strategies []Strategy
}

// VideoExtractor fills a VideoInfoBuilder from a video page using the
// platform's per-field strategy lists.
type VideoExtractor struct {
	platform docgraph.Platform
	rules    []fieldRule
}

// NewVideoExtractor returns the extractor for a platform. Unknown platforms
// get the generic rules.
func NewVideoExtractor(platform docgraph.Platform) *VideoExtractor {
	var rules []fieldRule
	switch platform {
	case docgraph.PlatformYouTube:
		rules = youTubeRules()
	case docgraph.PlatformBilibili:
		rules = bilibiliRules()
	case docgraph.PlatformVimeo:
		rules = vimeoRules()
	default:
		rules = genericRules()
	}
	return &VideoExtractor{platform: platform, rules: rules}
}

// Extract parses page HTML and offers every field found to b. Fields already
// set on b are kept.
func (e *VideoExtractor) Extract(rawHTML, pageURL string, b *docgraph.VideoInfoBuilder) error {
	p, err := ParsePage(rawHTML, pageURL)
	if err != nil {
		return err
	}

	for _, rule := range e.rules {
		if v, ok := FirstMatch(p, rule.valid, rule.strategies...); ok {
			rule.set(b, v)
		}
	}

	b.Comments(structuredComments(p))

	switch e.platform {
	case docgraph.PlatformYouTube:
		b.Tags(metaKeywords(p))
		b.Tags(hashtags(p))
		if pr, ok := parsePlayerResponse(rawHTML); ok {
			pr.apply(b)
		}
	case docgraph.PlatformBilibili:
		b.Tags(metaKeywords(p))
	}
	return nil
}

func setTitle(b *docgraph.VideoInfoBuilder, v string)       { b.Title(v) }
func setDescription(b *docgraph.VideoInfoBuilder, v string) { b.Description(v) }
func setUploader(b *docgraph.VideoInfoBuilder, v string)    { b.Uploader(v) }
func setViewCount(b *docgraph.VideoInfoBuilder, v string)   { b.ViewCount(v) }
func setDuration(b *docgraph.VideoInfoBuilder, v string)    { b.Duration(v) }
func setUploadDate(b *docgraph.VideoInfoBuilder, v string)  { b.UploadDate(v) }

var (
	ytTitleRe       = regexp.MustCompile(`"videoDetails":[^}]*?"title":\s*"([^"]+)"`)
	ytDescriptionRe = regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.){20,}?)"`)
	ytAuthorRe      = regexp.MustCompile(`"videoDetails":[^}]*?"author":\s*"([^"]+)"`)
	ytOwnerRe       = regexp.MustCompile(`"ownerChannelName":\s*"([^"]+)"`)
	ytChannelRe     = regexp.MustCompile(`"channelName":\s*"([^"]+)"`)
	isoDurationRe   = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
)

const youTubeDescriptionLimit = 500

func youTubeRules() []fieldRule {
	notSiteName := Rejecting("YouTube", "Google")
	return []fieldRule{
		{
			set:   setTitle,
			valid: All(MinRunes(1), notSiteName, func(v string) bool { return !strings.HasPrefix(v, "www.") }),
			strategies: []Strategy{
				MetaContent("property", "og:title"),
				MetaContent("name", "title"),
				RawPattern(ytTitleRe),
				Map(ElementText("title"), func(v string) string { return strings.TrimSuffix(strings.TrimSpace(v), " - YouTube") }),
				ElementText("h1.ytd-video-primary-info-renderer"),
				ElementText(`[data-testid="video-title"]`),
			},
		},
		{
			set:   func(b *docgraph.VideoInfoBuilder, v string) { b.Description(truncate(v, youTubeDescriptionLimit)) },
			valid: MinRunes(10),
			strategies: []Strategy{
				MetaContent("property", "og:description"),
				MetaContent("name", "description"),
				RawPattern(ytDescriptionRe),
				ElementText("#description"),
			},
		},
		{
			set:   setUploader,
			valid: All(MinRunes(1), notSiteName),
			strategies: []Strategy{
				ElementAttr(`link[itemprop="name"]`, "content"),
				RawPattern(ytAuthorRe),
				RawPattern(ytOwnerRe),
				RawPattern(ytChannelRe),
				ElementText(".ytd-channel-name a"),
				ElementText("#owner-name a"),
				ElementText("#upload-info strong"),
			},
		},
		{
			set:   setViewCount,
			valid: Mentioning("view", "次观看", "播放"),
			strategies: []Strategy{
				Map(MetaContent("itemprop", "interactionCount"), viewsFromCount),
				ElementText(".view-count"),
			},
		},
		{
			set:   setDuration,
			valid: Mentioning(":"),
			strategies: []Strategy{
				Map(MetaContent("itemprop", "duration"), clockFromISO),
				ElementText(".ytp-time-duration"),
				ElementText(".video-duration"),
			},
		},
		{
			set: setUploadDate,
			strategies: []Strategy{
				MetaContent("itemprop", "uploadDate"),
				MetaContent("itemprop", "datePublished"),
			},
		},
	}
}

const (
	bilibiliSiteTitle   = "哔哩哔哩 (゜-゜)つロ 干杯~-bilibili"
	bilibiliTitleSuffix = "_哔哩哔哩_bilibili"
)

func bilibiliRules() []fieldRule {
	stripSuffix := func(s Strategy) Strategy {
		return Map(s, func(v string) string {
			if v == bilibiliSiteTitle {
				return ""
			}
			return strings.TrimSpace(strings.ReplaceAll(v, bilibiliTitleSuffix, ""))
		})
	}
	return []fieldRule{
		{
			set: setTitle,
			strategies: []Strategy{
				stripSuffix(MetaContent("property", "og:title")),
				stripSuffix(MetaContent("name", "title")),
				stripSuffix(ElementAttr("h1[data-title]", "data-title")),
				stripSuffix(ElementText("h1.video-title")),
				stripSuffix(ElementText(".video-title")),
				stripSuffix(ElementText(".video-info-title")),
				stripSuffix(ElementText("title")),
			},
		},
		{
			set: setUploader,
			strategies: []Strategy{
				MetaContent("name", "author"),
				MetaContent("property", "video:uploader"),
				ElementText(".up-info-detail .username"),
				ElementText(".up-name"),
				ElementText(".video-info-detail .username"),
				ElementText("[data-usercard-mid]"),
			},
		},
		{
			set:   setDescription,
			valid: MinRunes(10),
			strategies: []Strategy{
				MetaContent("name", "description"),
				MetaContent("property", "og:description"),
				ElementText(".video-desc"),
				ElementText(".video-info-desc"),
			},
		},
		{
			set:   setViewCount,
			valid: Mentioning("播放", "万", "次"),
			strategies: []Strategy{
				ElementText(".view"),
				ElementText(`[title*="播放"]`),
			},
		},
		{
			set:   setDuration,
			valid: Mentioning(":"),
			strategies: []Strategy{
				ElementText(".duration"),
				ElementText(".video-duration"),
				ElementText(".duration-text"),
			},
		},
		{
			set: setUploadDate,
			strategies: []Strategy{
				ElementText(".pubdate"),
				ElementText(".video-data .pubdate"),
			},
		},
	}
}

func vimeoRules() []fieldRule {
	return []fieldRule{
		{set: setTitle, strategies: []Strategy{MetaContent("property", "og:title")}},
		{set: setDescription, strategies: []Strategy{MetaContent("property", "og:description")}},
	}
}

func genericRules() []fieldRule {
	return []fieldRule{
		{set: setTitle, strategies: []Strategy{MetaContent("property", "og:title"), ElementText("title")}},
		{set: setDescription, strategies: []Strategy{MetaContent("property", "og:description"), MetaContent("name", "description")}},
	}
}

func metaKeywords(p *Page) []string {
	content := p.Meta("name", "keywords")
	if content == "" {
		return nil
	}
	return strings.Split(content, ",")
}

func hashtags(p *Page) []string {
	var tags []string
	p.doc.Find(`a[href*="/hashtag/"]`).Each(func(_ int, sel *goquery.Selection) {
		if t := Clean(sel.Text()); t != "" {
			tags = append(tags, t)
		}
	})
	return tags
}

func viewsFromCount(v string) string {
	if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return fmt.Sprintf("%d views", n)
	}
	return v
}

// clockFromISO converts an ISO 8601 duration such as PT4M13S to 4:13.
func clockFromISO(v string) string {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return v
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return formatClock(h*3600 + mins*60 + sec)
}

func formatClock(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// playerResponse is the subset of YouTube's embedded player data used as a
// fallback for fields the markup did not yield.
type playerResponse struct {
	VideoDetails struct {
		Title            string   `json:"title"`
		ShortDescription string   `json:"shortDescription"`
		Author           string   `json:"author"`
		ViewCount        string   `json:"viewCount"`
		LengthSeconds    string   `json:"lengthSeconds"`
		Keywords         []string `json:"keywords"`
	} `json:"videoDetails"`
}

func parsePlayerResponse(raw string) (*playerResponse, bool) {
	idx := strings.Index(raw, "ytInitialPlayerResponse")
	if idx < 0 {
		return nil, false
	}
	start := strings.Index(raw[idx:], "{")
	if start < 0 {
		return nil, false
	}
	var pr playerResponse
	if err := json.NewDecoder(strings.NewReader(raw[idx+start:])).Decode(&pr); err != nil {
		return nil, false
	}
	return &pr, true
}

func (pr *playerResponse) apply(b *docgraph.VideoInfoBuilder) {
	d := pr.VideoDetails
	b.Title(d.Title)
	b.Description(truncate(d.ShortDescription, youTubeDescriptionLimit))
	b.Uploader(d.Author)
	if d.ViewCount != "" {
		b.ViewCount(d.ViewCount + " views")
	}
	if secs, err := strconv.Atoi(d.LengthSeconds); err == nil && secs > 0 {
		b.Duration(formatClock(secs))
	}
	b.Tags(d.Keywords)
}

var _ docgraph.VideoMetadataExtractor = (*VideoExtractor)(nil)

// structuredComments collects the text of schema.org Comment objects found in
// the page's JSON-LD blocks, in document order.
func structuredComments(p *Page) []string {
	var comments []string
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return
		}
		comments = append(comments, commentTexts(data)...)
	})
	return comments
}

func commentTexts(node any) []string {
	var out []string
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			out = append(out, commentTexts(item)...)
		}
	case map[string]any:
		if t, _ := v["@type"].(string); t == "Comment" {
			if text, _ := v["text"].(string); Clean(text) != "" {
				out = append(out, Clean(text))
			}
		}
		for _, key := range []string{"@graph", "comment"} {
			if child, ok := v[key]; ok {
				out = append(out, commentTexts(child)...)
			}
		}
	}
	return out
}
