package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"komikru/pkg/models"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const universalFixture = `
<html><body>
  <h1 class="entry-title">Tower of God</h1>
  <div class="thumb"><img src="https://cdn.example/covers/tog.jpg"></div>
  <div class="series-synops">Twenty-Fifth Bam spent his entire life under the tower chasing after his only friend, until the day she left him behind.</div>
  <div class="mgen"><a>Action</a><a>Fantasy</a></div>
  <div class="series-status">Status: Completed</div>
  <div class="rating-prc">92</div>
  <p>This popular manhwa is updated weekly.</p>
  <ul id="chapterlist">
    <li><a href="/manga/tog/chapter-2">Chapter 2</a></li>
    <li><a href="https://site.example/manga/tog/chapter-1">Chapter 1</a></li>
  </ul>
</body></html>`

func TestUniversalComicAutoDetect(t *testing.T) {
	doc := docFromString(t, universalFixture)
	rec := UniversalComic(doc, "https://site.example/series/tog", nil)

	assert.Equal(t, "Tower of God", rec.Title)
	assert.Equal(t, "https://cdn.example/covers/tog.jpg", rec.CoverURL)
	assert.Contains(t, rec.Description, "Twenty-Fifth Bam")
	assert.Equal(t, []string{"Action", "Fantasy"}, rec.Genres)
	assert.Equal(t, "Completed", rec.Status)
	assert.Equal(t, "manhwa", rec.Type)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 9.2, *rec.Rating, 1e-9)

	require.Len(t, rec.Chapters, 2)
	assert.Equal(t, "https://site.example/manga/tog/chapter-2", rec.Chapters[0].SourceURL)
	assert.Equal(t, "chapter-2", rec.Chapters[0].SourceChapterID)
	assert.Equal(t, 2.0, rec.Chapters[0].ChapterNumber)
	assert.Equal(t, "https://site.example/manga/tog/chapter-1", rec.Chapters[1].SourceURL)
}

func TestUniversalComicDefaults(t *testing.T) {
	doc := docFromString(t, `<html><body><h1>A Decent Series Title</h1></body></html>`)
	rec := UniversalComic(doc, "https://site.example/series/x", nil)

	assert.Equal(t, "A Decent Series Title", rec.Title)
	assert.Equal(t, "Ongoing", rec.Status)
	assert.Equal(t, "manga", rec.Type)
	assert.Nil(t, rec.Rating)
	assert.Empty(t, rec.Chapters)
}

func TestUniversalComicCustomSelectors(t *testing.T) {
	html := `
<html><body>
  <h1 class="entry-title">Wrong Title</h1>
  <div class="real-title">Right Title</div>
  <ul class="my-chapters">
    <li><a href="/c/1"><span class="num">Chapter 1</span> uploaded yesterday</a></li>
  </ul>
</body></html>`
	doc := docFromString(t, html)
	sel := &models.CustomSelectors{
		Title:        ".real-title",
		ChapterList:  ".my-chapters li a",
		ChapterTitle: ".num",
	}
	rec := UniversalComic(doc, "https://site.example/series/x", sel)

	assert.Equal(t, "Right Title", rec.Title)
	require.Len(t, rec.Chapters, 1)
	assert.Equal(t, "Chapter 1", rec.Chapters[0].Title)
	assert.Equal(t, 1.0, rec.Chapters[0].ChapterNumber)
}

func TestUniversalComicBlankSelectorsIgnored(t *testing.T) {
	doc := docFromString(t, universalFixture)
	rec := UniversalComic(doc, "https://site.example/series/tog", &models.CustomSelectors{})
	assert.Equal(t, "Tower of God", rec.Title)
}

func TestDetectCover(t *testing.T) {
	// data-src stands in for a missing src only
	doc := docFromString(t, `
<html><body>
  <div class="thumb"><img data-src="https://cdn.example/covers/lazy.jpg"></div>
</body></html>`)
	assert.Equal(t, ".thumb img", detectCover(doc))

	// a short but present src rejects the candidate, lazy attr or not
	doc = docFromString(t, `
<html><body>
  <div class="thumb"><img src="x.gif" data-src="https://cdn.example/covers/real.jpg"></div>
  <div class="cover"><img src="https://cdn.example/covers/real.jpg"></div>
</body></html>`)
	assert.Equal(t, ".cover img", detectCover(doc))
}

func TestUniversalImages(t *testing.T) {
	html := `
<html><body><div id="readerarea">
  <img src="https://cdn.example/1.jpg">
  <img src="https://cdn.example/loader.gif" data-src="ignored.jpg">
  <img data-src="https://cdn.example/2.png">
  <img data-lazy-src="https://cdn.example/3.webp">
  <img src="https://cdn.example/placeholder.png">
</div></body></html>`
	doc := docFromString(t, html)

	images := UniversalImages(doc, "")
	assert.Equal(t, []string{
		"https://cdn.example/1.jpg",
		"https://cdn.example/2.png",
		"https://cdn.example/3.webp",
	}, images)
}

func TestUniversalImagesCustomSelector(t *testing.T) {
	html := `
<html><body>
  <div class="weird-reader"><img src="https://cdn.example/a.jpg"></div>
  <img src="https://cdn.example/logo.png">
</body></html>`
	doc := docFromString(t, html)

	images := UniversalImages(doc, ".weird-reader img")
	assert.Equal(t, []string{"https://cdn.example/a.jpg"}, images)
}

func TestInferType(t *testing.T) {
	assert.Equal(t, "manhwa", inferType("the best Manhwa and novel site"))
	assert.Equal(t, "manhua", inferType("a manhua reader"))
	assert.Equal(t, "novel", inferType("light novel chapters"))
	assert.Equal(t, "manga", inferType("nothing special"))
}
