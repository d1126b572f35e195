package docgraph

import (
	"context"
	"regexp"
	"slices"
	"strings"
)

// Placeholders for video fields that no strategy could extract.
const (
	PlaceholderTitle       = "title not found"
	PlaceholderUploader    = "uploader unknown"
	PlaceholderDescription = "description not found"
	PlaceholderNotFound    = "not found"
)

// MaxVideoTags bounds the number of tags kept for a video.
const MaxVideoTags = 10

// MaxVideoComments bounds the comment sample kept for a video.
const MaxVideoComments = 5

// MinTranscriptLength is the shortest transcript worth attaching.
const MinTranscriptLength = 50

var youTubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([^&#]+)`),
	regexp.MustCompile(`/embed/([^/?&#]+)`),
	regexp.MustCompile(`/v/([^/?&#]+)`),
	regexp.MustCompile(`youtu\.be/([^/?&#]+)`),
}

// YouTubeVideoID extracts the video id from a YouTube watch, embed or short
// link.
func YouTubeVideoID(rawURL string) (string, bool) {
	for _, re := range youTubeIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// VideoInfo is the metadata and transcript scraped from a video page.
type VideoInfo struct {
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uploader    string   `json:"uploader"`
	ViewCount   string   `json:"view_count"`
	Duration    string   `json:"duration"`
	UploadDate  string   `json:"upload_date"`
	Tags        []string `json:"tags"`
	Transcript  string   `json:"transcript,omitempty"`
	Comments    []string `json:"comments_sample,omitempty"`

	// TranscriptLanguage is the language code of the transcript track.
	TranscriptLanguage string `json:"transcript_language,omitempty"`

	// ScrapeScore is an informational 0-100 indicator of how many fields
	// were extracted.
	ScrapeScore int `json:"scrape_score"`

	// Missing lists the fields filled with placeholders.
	Missing []string `json:"missing,omitempty"`
}

// HasTranscript reports whether a spoken-word transcript was attached.
func (v *VideoInfo) HasTranscript() bool {
	return strings.TrimSpace(v.Transcript) != ""
}

// CombinedContent renders the video as analyzable text, one labeled block
// per extracted field. Fields listed in Missing hold placeholders and are
// left out.
func (v *VideoInfo) CombinedContent() string {
	var parts []string
	add := func(field, label, value string) {
		if slices.Contains(v.Missing, field) {
			return
		}
		if value = strings.TrimSpace(value); value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("title", "Title", v.Title)
	add("uploader", "Uploader", v.Uploader)
	add("duration", "Duration", v.Duration)
	add("view_count", "Views", v.ViewCount)
	add("upload_date", "Published", v.UploadDate)
	add("description", "Description", v.Description)
	add("tags", "Tags", strings.Join(v.Tags, ", "))
	add("transcript", "Transcript", v.Transcript)
	add("comments", "Top comments", strings.Join(v.Comments, "; "))

	return strings.Join(parts, "\n\n")
}

// VirtualName returns the file name under which the video is analyzed and
// stored.
func (v *VideoInfo) VirtualName() string {
	title := v.Title
	if title == "" {
		title = "unknown"
	}
	title = strings.ReplaceAll(truncateRunes(title, 50), " ", "_")
	return "video_" + strings.ToLower(string(v.Platform)) + "_" + title + ".txt"
}

// VideoInfoBuilder accumulates video fields from successive extraction
// strategies. The first non-empty value offered for a field wins.
type VideoInfoBuilder struct {
	info VideoInfo
}

// NewVideoInfoBuilder returns a builder for the video at url.
func NewVideoInfoBuilder(url string, platform Platform) *VideoInfoBuilder {
	return &VideoInfoBuilder{info: VideoInfo{URL: url, Platform: platform}}
}

func setOnce(field *string, value string) {
	if *field == "" {
		*field = strings.TrimSpace(value)
	}
}

func (b *VideoInfoBuilder) Title(v string) *VideoInfoBuilder {
	setOnce(&b.info.Title, v)
	return b
}

func (b *VideoInfoBuilder) Description(v string) *VideoInfoBuilder {
	setOnce(&b.info.Description, v)
	return b
}

func (b *VideoInfoBuilder) Uploader(v string) *VideoInfoBuilder {
	setOnce(&b.info.Uploader, v)
	return b
}

func (b *VideoInfoBuilder) ViewCount(v string) *VideoInfoBuilder {
	setOnce(&b.info.ViewCount, v)
	return b
}

func (b *VideoInfoBuilder) Duration(v string) *VideoInfoBuilder {
	setOnce(&b.info.Duration, v)
	return b
}

func (b *VideoInfoBuilder) UploadDate(v string) *VideoInfoBuilder {
	setOnce(&b.info.UploadDate, v)
	return b
}

// Tags sets the tags if none were set yet, dropping blanks and keeping at
// most MaxVideoTags.
func (b *VideoInfoBuilder) Tags(tags []string) *VideoInfoBuilder {
	if len(b.info.Tags) > 0 {
		return b
	}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" && len(b.info.Tags) < MaxVideoTags {
			b.info.Tags = append(b.info.Tags, t)
		}
	}
	return b
}

func (b *VideoInfoBuilder) Transcript(text, language string) *VideoInfoBuilder {
	if b.info.Transcript == "" && strings.TrimSpace(text) != "" {
		b.info.Transcript = strings.TrimSpace(text)
		b.info.TranscriptLanguage = language
	}
	return b
}

// Comments sets the comment sample if none was set yet, dropping blanks and
// keeping at most MaxVideoComments.
func (b *VideoInfoBuilder) Comments(comments []string) *VideoInfoBuilder {
	if len(b.info.Comments) > 0 {
		return b
	}
	for _, c := range comments {
		if c = strings.TrimSpace(c); c != "" && len(b.info.Comments) < MaxVideoComments {
			b.info.Comments = append(b.info.Comments, c)
		}
	}
	return b
}

// Finalize computes the scrape score and fills placeholders for every
// metadata field that was not extracted.
func (b *VideoInfoBuilder) Finalize() *VideoInfo {
	info := b.info
	info.Tags = append([]string(nil), b.info.Tags...)
	info.Comments = append([]string(nil), b.info.Comments...)

	score := 0
	if info.Title != "" {
		score += 50
	}
	if info.Description != "" {
		score += 30
	}
	if info.Uploader != "" {
		score += 20
	}
	if info.HasTranscript() {
		score += 30
	}
	info.ScrapeScore = min(score, 100)

	fill := func(name string, field *string, placeholder string) {
		if *field == "" {
			*field = placeholder
			info.Missing = append(info.Missing, name)
		}
	}
	fill("title", &info.Title, PlaceholderTitle)
	fill("uploader", &info.Uploader, PlaceholderUploader)
	fill("description", &info.Description, PlaceholderDescription)
	fill("duration", &info.Duration, PlaceholderNotFound)
	fill("view_count", &info.ViewCount, PlaceholderNotFound)
	fill("upload_date", &info.UploadDate, PlaceholderNotFound)
	if len(info.Tags) == 0 {
		info.Missing = append(info.Missing, "tags")
	}
	return &info
}

// VideoMetadataExtractor reads video metadata from a fetched page into a
// builder. Fields already set on the builder are kept.
type VideoMetadataExtractor interface {
	Extract(html, pageURL string, b *VideoInfoBuilder) error
}

// VideoScraper extracts metadata and transcripts from video pages.
type VideoScraper interface {
	// Scrape returns the finalized video info. An error is returned only
	// when the page could not be fetched at all.
	Scrape(ctx context.Context, url string) (*VideoInfo, error)
}

// TranscriptService fetches spoken-word transcripts for videos.
type TranscriptService interface {
	// Transcript returns the transcript text and its language. It returns
	// ENOTFOUND when the video has no usable track.
	Transcript(ctx context.Context, videoID string) (text, language string, err error)
}
