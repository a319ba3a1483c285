package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"komikru/pkg/models"
)

// Helpers shared by the site adapters. Each adapter hands these an
// ordered, comma-joined selector list so older template revisions of the
// same site family keep working.

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func firstImgSrc(doc *goquery.Document, selector string) string {
	s := doc.Find(selector).First()
	if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	src, _ := s.Attr("data-src")
	return strings.TrimSpace(src)
}

// infoFields walks a site's metadata items (status / type / author rows)
// and picks out the fields it recognizes by label text.
func infoFields(doc *goquery.Document, selector string) (status, typ, author string) {
	status = "Ongoing"
	typ = "manga"

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(s.Text())
		if strings.Contains(text, "status") {
			if strings.Contains(text, "ongoing") || strings.Contains(text, "publishing") {
				status = "Ongoing"
			} else {
				status = "Completed"
			}
		}
		if strings.Contains(text, "type") || strings.Contains(text, "tipe") {
			switch {
			case strings.Contains(text, "manhwa"):
				typ = "manhwa"
			case strings.Contains(text, "manhua"):
				typ = "manhua"
			case strings.Contains(text, "novel"):
				typ = "novel"
			}
		}
		if strings.Contains(text, "author") || strings.Contains(text, "pengarang") {
			author = strings.TrimSpace(s.Find("span").Last().Text())
			if author == "" {
				author = strings.TrimSpace(s.Contents().Last().Text())
			}
		}
	})
	return status, typ, author
}

func collectGenres(doc *goquery.Document, selector string) []string {
	var genres []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if genre := strings.TrimSpace(s.Text()); genre != "" {
			genres = append(genres, genre)
		}
	})
	return genres
}

// adapterChapters reads a chapter list: one item per row, anchor href as
// the chapter URL, label from titleSelector. Rows without a link or a
// label are skipped.
func adapterChapters(doc *goquery.Document, pageURL, listSelector, titleSelector string) []models.ChapterSummary {
	var chapters []models.ChapterSummary
	doc.Find(listSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		label := strings.TrimSpace(s.Find(titleSelector).First().Text())
		if href == "" || label == "" {
			return
		}
		abs := ResolveURL(pageURL, href)
		chapters = append(chapters, models.ChapterSummary{
			SourceURL:       abs,
			SourceChapterID: ChapterID(abs),
			ChapterNumber:   ChapterNumber(label),
			Title:           label,
		})
	})
	return chapters
}

// collectImages gathers reader images, honoring lazy-load attributes and
// dropping placeholder art.
func collectImages(doc *goquery.Document, selector string) []string {
	var images []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if src := imgSrc(s); src != "" {
			images = append(images, src)
		}
	})
	return images
}
