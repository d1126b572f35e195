package docgraph

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Route identifies which extractor handles an input.
type Route string

// Extraction routes.
const (
	RouteBinary     Route = "binary"
	RouteText       Route = "text"
	RouteWebPage    Route = "web"
	RouteRepository Route = "repository"
	RouteVideo      Route = "video"
)

// Platform identifies a video platform handler.
type Platform string

// Video platforms in handler priority order.
const (
	PlatformYouTube  Platform = "youtube"
	PlatformBilibili Platform = "bilibili"
	PlatformVimeo    Platform = "vimeo"
	PlatformGeneric  Platform = "generic"
)

// MaxBareURLLength bounds how long a file's content may be and still be
// treated as a link the user uploaded instead of a document.
const MaxBareURLLength = 500

// videoDomains are host substrings that mark a URL as a video page.
var videoDomains = []string{
	"youtube.com",
	"youtu.be",
	"bilibili.com",
	"b23.tv",
	"vimeo.com",
	"dailymotion.com",
	"twitch.tv",
	"tiktok.com",
	"instagram.com/p/",
	"twitter.com",
	"x.com",
}

// videoExtensions are path suffixes of directly linked video files.
var videoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"}

// platformDomains lists platform host substrings in priority order.
var platformDomains = []struct {
	platform Platform
	domains  []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformBilibili, []string{"bilibili.com", "b23.tv"}},
	{PlatformVimeo, []string{"vimeo.com"}},
}

var repositoryURLRe = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([^/?#]+)/([^/?#]+)`)

// ResolveFile returns the extraction route for an uploaded file based on its
// extension. Everything that is not a binary document is decoded as text.
func ResolveFile(name string) Route {
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return RouteBinary
	}
	return RouteText
}

// DecodeText decodes bytes as UTF-8, replacing invalid sequences with the
// Unicode replacement character. It never fails.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// ClassifyURL returns the extraction route for a URL.
func ClassifyURL(rawURL string) Route {
	if IsVideoURL(rawURL) {
		return RouteVideo
	}
	if _, _, ok := ParseRepositoryURL(rawURL); ok {
		return RouteRepository
	}
	return RouteWebPage
}

// IsVideoURL reports whether the URL points at a known video platform or a
// video file.
func IsVideoURL(rawURL string) bool {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	if lower == "" {
		return false
	}

	u, err := url.Parse(lower)
	if err != nil || u.Host == "" {
		return false
	}

	hostAndPath := u.Host + u.Path
	for _, domain := range videoDomains {
		if matchesDomain(u.Host, hostAndPath, domain) {
			return true
		}
	}

	for _, ext := range videoExtensions {
		if strings.HasSuffix(u.Path, ext) {
			return true
		}
	}
	return false
}

// matchesDomain checks a domain pattern against the host. Patterns with a
// path component (instagram.com/p/) match against host plus path.
func matchesDomain(host, hostAndPath, domain string) bool {
	if strings.Contains(domain, "/") {
		return strings.Contains(hostAndPath, domain)
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// PlatformFor returns the video platform handler for the URL, checking known
// platforms in priority order and falling back to PlatformGeneric.
func PlatformFor(rawURL string) Platform {
	u, err := url.Parse(strings.ToLower(strings.TrimSpace(rawURL)))
	if err != nil {
		return PlatformGeneric
	}
	for _, p := range platformDomains {
		for _, domain := range p.domains {
			if matchesDomain(u.Host, u.Host+u.Path, domain) {
				return p.platform
			}
		}
	}
	return PlatformGeneric
}

// ParseRepositoryURL extracts owner and repository name from a GitHub URL.
func ParseRepositoryURL(rawURL string) (owner, repo string, ok bool) {
	m := repositoryURLRe.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", "", false
	}
	repo = strings.TrimSuffix(m[2], ".git")
	if repo == "" {
		return "", "", false
	}
	return m[1], repo, true
}

// BareURL reports whether text consists of nothing but a single URL and
// returns it. This detects links uploaded in place of a document.
func BareURL(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) >= MaxBareURLLength {
		return "", false
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return "", false
	}
	if len(strings.Fields(trimmed)) != 1 {
		return "", false
	}
	return trimmed, true
}
