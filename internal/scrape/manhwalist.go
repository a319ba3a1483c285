package scrape

import (
	"fmt"
	"log"

	"github.com/PuerkitoBio/goquery"

	"komikru/pkg/models"
)

// Manhwalist extracts WP-MangaStream-style sites (entry-title / tsinfo /
// eplister markup).
type Manhwalist struct{}

func (Manhwalist) Code() string { return "MANHWALIST" }

func (Manhwalist) Comic(doc *goquery.Document, pageURL string) (*models.ComicRecord, error) {
	title := firstText(doc, "h1.entry-title, .series-title h1")
	if title == "" {
		return nil, fmt.Errorf("manhwalist: no title at %s", pageURL)
	}

	status, typ, author := infoFields(doc, ".tsinfo .imptdt, .serl")

	rec := &models.ComicRecord{
		Title:       title,
		CoverURL:    firstImgSrc(doc, ".thumb img, .series-thumb img"),
		Description: firstText(doc, `.entry-content[itemprop="description"], .series-synops`),
		Status:      status,
		Type:        typ,
		Author:      author,
		Genres:      collectGenres(doc, ".mgen a, .series-genres a"),
		Rating:      ParseRating(firstText(doc, `.rating-prc, .num[itemprop="ratingValue"]`)),
		Chapters: adapterChapters(doc, pageURL,
			"#chapterlist li, .eplister li",
			".chapternum, .epl-num, .chbox .eph-num span"),
	}

	log.Printf("[scrape] manhwalist: %q, %d chapters", rec.Title, len(rec.Chapters))
	return rec, nil
}

func (Manhwalist) Pages(doc *goquery.Document, _ string) []string {
	return collectImages(doc, "#readerarea img, .rdminimal img, .reader-area img")
}
