package scrape

import (
	"fmt"
	"log"

	"github.com/PuerkitoBio/goquery"

	"komikru/pkg/models"
)

// Shinigami extracts the shinigami site family. Very close to the
// MangaStream layout but with its own info/genre containers.
type Shinigami struct{}

func (Shinigami) Code() string { return "SHINIGAMI" }

func (Shinigami) Comic(doc *goquery.Document, pageURL string) (*models.ComicRecord, error) {
	title := firstText(doc, "h1.entry-title, .series-title")
	if title == "" {
		return nil, fmt.Errorf("shinigami: no title at %s", pageURL)
	}

	status, typ, author := infoFields(doc, ".info-content .spe span, .tsinfo .imptdt")

	rec := &models.ComicRecord{
		Title:       title,
		CoverURL:    firstImgSrc(doc, ".thumb img, .series-thumb img"),
		Description: firstText(doc, ".entry-content-single, .series-synops, .summary__content p"),
		Status:      status,
		Type:        typ,
		Author:      author,
		Genres:      collectGenres(doc, ".genre-info a, .genxed a, .mgen a"),
		Rating:      ParseRating(firstText(doc, `.rating-prc, .num[itemprop="ratingValue"]`)),
		Chapters: adapterChapters(doc, pageURL,
			".eplister li, #chapterlist li",
			".epl-num, .chapternum"),
	}

	log.Printf("[scrape] shinigami: %q, %d chapters", rec.Title, len(rec.Chapters))
	return rec, nil
}

func (Shinigami) Pages(doc *goquery.Document, _ string) []string {
	return collectImages(doc, "#readerarea img, .rdminimal img, .reader-area img")
}
