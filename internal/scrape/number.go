package scrape

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// chapterPatterns are tried in priority order: explicit "chapter"/"ch."/
// "ep." labels first, any bare number last.
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)chapter[:\s-]*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)ch\.?\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)ep\.?\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(\d+\.?\d*)`),
}

// ChapterNumber parses a chapter number out of arbitrary label text.
// Returns 0 when no pattern matches; a lossy fallback, not an error.
func ChapterNumber(label string) float64 {
	for _, p := range chapterPatterns {
		if m := p.FindStringSubmatch(label); m != nil {
			n, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// Slugify converts text to a URL-friendly slug.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// LastSegment returns the last non-empty path segment of a URL.
func LastSegment(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// ChapterID derives a stable source chapter identifier from its URL.
func ChapterID(rawURL string) string {
	return Slugify(LastSegment(rawURL))
}

// ResolveURL makes href absolute against base. Absolute hrefs pass
// through untouched.
func ResolveURL(base, href string) string {
	if href == "" {
		return base
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(u).String()
}
