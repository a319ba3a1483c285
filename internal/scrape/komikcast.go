package scrape

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"komikru/pkg/models"
)

// Komikcast extracts the komik_info-* markup family.
type Komikcast struct{}

func (Komikcast) Code() string { return "KOMIKCAST" }

func (Komikcast) Comic(doc *goquery.Document, pageURL string) (*models.ComicRecord, error) {
	title := firstText(doc, ".komik_info-content-body h1, h1.entry-title")
	if title == "" {
		return nil, fmt.Errorf("komikcast: no title at %s", pageURL)
	}

	status, typ, author := komikcastInfo(doc)

	rec := &models.ComicRecord{
		Title:       title,
		CoverURL:    firstImgSrc(doc, ".komik_info-content-thumbnail img, .thumb img"),
		Description: firstText(doc, ".komik_info-description-sinopsis, .entry-content"),
		Status:      status,
		Type:        typ,
		Author:      author,
		Genres:      collectGenres(doc, ".komik_info-content-genre a, .mgen a"),
		Rating:      ParseRating(firstText(doc, ".data-rating, .rating-prc")),
		Chapters: adapterChapters(doc, pageURL,
			".komik_info-chapters-item, #chapterlist li",
			".chapter-link-item, .chapternum"),
	}

	log.Printf("[scrape] komikcast: %q, %d chapters", rec.Title, len(rec.Chapters))
	return rec, nil
}

// komikcast labels its author row with bold text rather than a span, so
// the shared infoFields helper does not fit here.
func komikcastInfo(doc *goquery.Document) (status, typ, author string) {
	status = "Ongoing"
	typ = "manga"

	doc.Find(".komik_info-content-info span, .tsinfo .imptdt").Each(func(_ int, s *goquery.Selection) {
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
			author = strings.TrimSpace(s.Find("b, span").Last().Text())
			if author == "" {
				author = strings.TrimSpace(s.Contents().Last().Text())
			}
		}
	})
	return status, typ, author
}

func (Komikcast) Pages(doc *goquery.Document, _ string) []string {
	return collectImages(doc, "#readerarea img, .main-reading-area img, .chapter-content img")
}
