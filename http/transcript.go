package http

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/fwojciec/docgraph"
)

// DefaultTimedTextURL is the endpoint serving YouTube caption tracks.
const DefaultTimedTextURL = "https://video.google.com/timedtext"

// preferredLanguages are tried in order before falling back to the first
// listed track.
var preferredLanguages = [][]string{{"zh-cn", "zh"}, {"en"}}

// Ensure TranscriptService implements docgraph.TranscriptService.
var _ docgraph.TranscriptService = (*TranscriptService)(nil)

// TranscriptService fetches YouTube caption tracks from the timedtext XML
// endpoint.
type TranscriptService struct {
	client  *http.Client
	baseURL string
}

// TranscriptOption configures a TranscriptService.
type TranscriptOption func(*TranscriptService)

// WithTimedTextURL points the service at a different timedtext endpoint.
func WithTimedTextURL(u string) TranscriptOption {
	return func(s *TranscriptService) {
		s.baseURL = u
	}
}

// NewTranscriptService creates a TranscriptService with the given HTTP
// client. If client is nil, a client with docgraph.TranscriptTimeout is
// used.
func NewTranscriptService(client *http.Client, opts ...TranscriptOption) *TranscriptService {
	if client == nil {
		client = &http.Client{Timeout: docgraph.TranscriptTimeout}
	}
	s := &TranscriptService{client: client, baseURL: DefaultTimedTextURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// track is one caption track listed for a video.
type track struct {
	lang string
	name string
}

// Transcript returns the text of the preferred caption track: Chinese, then
// English, then whatever is listed first. Tracks no longer than
// docgraph.MinTranscriptLength are treated as missing.
func (s *TranscriptService) Transcript(ctx context.Context, videoID string) (string, string, error) {
	if videoID == "" {
		return "", "", docgraph.Errorf(docgraph.EINVALID, "video id required")
	}

	tracks, err := s.listTracks(ctx, videoID)
	if err != nil {
		return "", "", err
	}
	if len(tracks) == 0 {
		return "", "", docgraph.Errorf(docgraph.ENOTFOUND, "no transcript tracks for video %s", videoID)
	}

	chosen := pickTrack(tracks)
	text, err := s.fetchTrack(ctx, videoID, chosen)
	if err != nil {
		return "", "", err
	}
	if utf8.RuneCountInString(text) <= docgraph.MinTranscriptLength {
		return "", "", docgraph.Errorf(docgraph.ENOTFOUND, "transcript for video %s is too short", videoID)
	}
	return text, chosen.lang, nil
}

func pickTrack(tracks []track) track {
	for _, langs := range preferredLanguages {
		for _, want := range langs {
			for _, t := range tracks {
				if strings.EqualFold(t.lang, want) {
					return t
				}
			}
		}
	}
	return tracks[0]
}

func (s *TranscriptService) listTracks(ctx context.Context, videoID string) ([]track, error) {
	q := url.Values{"type": {"list"}, "v": {videoID}}
	root, err := s.fetchXML(ctx, q)
	if err != nil {
		return nil, err
	}

	var tracks []track
	for _, el := range root.SelectElements("track") {
		lang := strings.TrimSpace(el.SelectAttrValue("lang_code", ""))
		if lang == "" {
			continue
		}
		tracks = append(tracks, track{lang: lang, name: el.SelectAttrValue("name", "")})
	}
	return tracks, nil
}

func (s *TranscriptService) fetchTrack(ctx context.Context, videoID string, t track) (string, error) {
	q := url.Values{"lang": {t.lang}, "v": {videoID}}
	if t.name != "" {
		q.Set("name", t.name)
	}
	root, err := s.fetchXML(ctx, q)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, el := range root.SelectElements("text") {
		line := strings.Join(strings.Fields(html.UnescapeString(el.Text())), " ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}

func (s *TranscriptService) fetchXML(ctx context.Context, q url.Values) (*etree.Element, error) {
	body, err := s.fetchURL(ctx, s.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing timedtext XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, docgraph.Errorf(docgraph.ENOTFOUND, "empty timedtext response")
	}
	return root, nil
}

// fetchURL fetches a URL and returns the response body.
func (s *TranscriptService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}
