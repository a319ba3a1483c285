package scrape

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"komikru/internal/fetch"
	"komikru/pkg/models"
)

// Candidate selector lists, most site-specific first. Ordering matters:
// site coverage depends on trying the specific ones before the generic
// fallbacks.
var (
	titleCandidates = []string{
		"h1.entry-title",
		"h1.title",
		".komik_info-content-body h1",
		".series-title",
		`h1[itemprop="name"]`,
		"h1",
	}
	coverCandidates = []string{
		".thumb img",
		".series-thumb img",
		".komik_info-content-thumbnail img",
		`img[itemprop="image"]`,
		".cover img",
		".featured-image img",
	}
	descriptionCandidates = []string{
		`.entry-content[itemprop="description"]`,
		".series-synops",
		".komik_info-description-sinopsis",
		`[itemprop="description"]`,
		".description",
		".synopsis",
	}
	genreCandidates = []string{
		".mgen a",
		".series-genres a",
		".genre-info a",
		".komik_info-content-genre a",
		".genxed a",
		`[rel="tag"]`,
	}
	statusCandidates = []string{
		".series-status",
		".status",
		`.imptdt:contains("Status")`,
		`.spe:contains("Status")`,
	}
	ratingCandidates = []string{
		".rating-prc",
		".rating",
		".data-rating",
		`[itemprop="ratingValue"]`,
	}
	chapterListCandidates = []string{
		"#chapterlist li a",
		".eplister li a",
		".chapter-list li a",
		".komik_info-chapters-item a",
		".chapter-link",
		".lchx a",
	}
	readerImageCandidates = []string{
		"#readerarea img",
		".reader-area img",
		".main-reading-area img",
		".reading-content img",
		".chapter-content img",
		"#chapter-images img",
	}
)

var decimalRe = regexp.MustCompile(`(\d+\.?\d*)`)

// Universal is the fallback extractor: it guesses selectors from common
// markup conventions when no adapter knows the site.
type Universal struct {
	fetcher Fetcher
}

func NewUniversal(f Fetcher) *Universal {
	return &Universal{fetcher: f}
}

// Comic fetches a comic detail page and extracts it with auto-detected
// selectors, honoring any caller overrides.
func (u *Universal) Comic(ctx context.Context, pageURL string, sel *models.CustomSelectors) (*models.ComicRecord, error) {
	html, err := u.fetcher.Fetch(ctx, pageURL, fetch.Options{})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return UniversalComic(doc, pageURL, sel), nil
}

// Images fetches a chapter page and extracts its page image URLs. The
// chapter URL doubles as the Referer, matching how a reader loads it.
func (u *Universal) Images(ctx context.Context, chapterURL, selector string) ([]string, error) {
	html, err := u.fetcher.Fetch(ctx, chapterURL, fetch.Options{Referer: chapterURL})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return UniversalImages(doc, selector), nil
}

// UniversalComic extracts a comic record from an already-parsed document.
func UniversalComic(doc *goquery.Document, pageURL string, sel *models.CustomSelectors) *models.ComicRecord {
	if sel.IsZero() {
		sel = &models.CustomSelectors{}
	}

	titleSel := override(sel.Title, func() string { return detectFirst(doc, titleCandidates, plausibleTitle, "h1") })
	coverSel := override(sel.Cover, func() string { return detectCover(doc) })
	descSel := override(sel.Description, func() string { return detectFirst(doc, descriptionCandidates, plausibleDescription, "p") })
	genreSel := override(sel.Genres, func() string { return detectPresent(doc, genreCandidates, ".genre a") })
	statusSel := override(sel.Status, func() string { return detectPresent(doc, statusCandidates, "body") })
	ratingSel := override(sel.Rating, func() string { return detectPresent(doc, ratingCandidates, ".rating") })
	chapterSel := override(sel.ChapterList, func() string { return detectPresent(doc, chapterListCandidates, `a:contains("Chapter")`) })

	rec := &models.ComicRecord{
		Status: "Ongoing",
		Type:   "manga",
	}

	rec.Title = strings.TrimSpace(doc.Find(titleSel).First().Text())
	if rec.Title == "" {
		rec.Title = "Unknown Title"
	}
	rec.CoverURL = imgSrc(doc.Find(coverSel).First())
	rec.Description = strings.TrimSpace(doc.Find(descSel).First().Text())

	doc.Find(genreSel).Each(func(_ int, s *goquery.Selection) {
		genre := strings.TrimSpace(s.Text())
		if genre != "" && len(genre) < 50 {
			rec.Genres = append(rec.Genres, genre)
		}
	})

	statusText := strings.ToLower(doc.Find(statusSel).Text())
	if strings.Contains(statusText, "complete") || strings.Contains(statusText, "tamat") {
		rec.Status = "Completed"
	}

	rec.Rating = ParseRating(doc.Find(ratingSel).First().Text())
	rec.Type = inferType(doc.Find("body").Text())

	doc.Find(chapterSel).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			href, _ = s.Find("a").Attr("href")
		}
		if strings.TrimSpace(href) == "" {
			return
		}

		var label string
		if sel.ChapterTitle != "" {
			label = s.Find(sel.ChapterTitle).Text()
		} else {
			label = s.Text()
		}

		abs := ResolveURL(pageURL, strings.TrimSpace(href))
		rec.Chapters = append(rec.Chapters, models.ChapterSummary{
			SourceURL:       abs,
			SourceChapterID: ChapterID(abs),
			ChapterNumber:   ChapterNumber(label),
			Title:           strings.TrimSpace(label),
		})
	})

	log.Printf("[scrape] universal: %q, %d chapters", rec.Title, len(rec.Chapters))
	return rec
}

// UniversalImages extracts chapter page image URLs from a parsed reader
// page, with an optional caller-supplied selector.
func UniversalImages(doc *goquery.Document, selector string) []string {
	if strings.TrimSpace(selector) == "" {
		selector = detectPresent(doc, readerImageCandidates, "img")
	}

	var images []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if src := imgSrc(s); src != "" {
			images = append(images, src)
		}
	})
	return images
}

func override(custom string, detect func() string) string {
	if strings.TrimSpace(custom) != "" {
		return custom
	}
	return detect()
}

func plausibleTitle(text string) bool {
	return len(text) > 3 && len(text) < 200
}

func plausibleDescription(text string) bool {
	// boilerplate paragraphs are short; demand real prose
	return len(text) > 50
}

// detectFirst picks the first candidate whose first match passes ok.
func detectFirst(doc *goquery.Document, candidates []string, ok func(string) bool, fallback string) string {
	for _, sel := range candidates {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" && ok(text) {
			return sel
		}
	}
	return fallback
}

// detectPresent picks the first candidate matching at least one element.
func detectPresent(doc *goquery.Document, candidates []string, fallback string) string {
	for _, sel := range candidates {
		if doc.Find(sel).Length() > 0 {
			return sel
		}
	}
	return fallback
}

func detectCover(doc *goquery.Document) string {
	for _, sel := range coverCandidates {
		s := doc.Find(sel).First()
		src, _ := s.Attr("src")
		// data-src only stands in for a missing src; a short src rejects
		// the candidate outright
		if src == "" {
			src, _ = s.Attr("data-src")
		}
		if len(src) > 10 {
			return sel
		}
	}
	return "img"
}

// imgSrc reads an image URL trying src, then the common lazy-loading data
// attributes, and rejects known placeholder images.
func imgSrc(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		v, ok := s.Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}
		if strings.Contains(v, "loader") || strings.Contains(v, "placeholder") {
			return ""
		}
		return v
	}
	return ""
}

// ParseRating pulls the first decimal number out of text and normalizes
// it to a 0-10 scale: sites rating out of 100 (or 5 stars times 2 digits)
// come back >10 and are divided by 10.
func ParseRating(text string) *float64 {
	m := decimalRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	r, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	if r > 10 {
		r = r / 10
	}
	return &r
}

// inferType scans whole-page text for type keywords. Coarse on purpose:
// no selector for "type" holds across sites.
func inferType(pageText string) string {
	t := strings.ToLower(pageText)
	switch {
	case strings.Contains(t, "manhwa"):
		return "manhwa"
	case strings.Contains(t, "manhua"):
		return "manhua"
	case strings.Contains(t, "novel"):
		return "novel"
	default:
		return "manga"
	}
}
