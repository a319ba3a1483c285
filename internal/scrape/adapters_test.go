package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manhwalistFixture = `
<html><body>
  <h1 class="entry-title">Solo Leveling</h1>
  <div class="thumb"><img data-src="https://cdn.example/covers/sl.jpg"></div>
  <div class="entry-content" itemprop="description">Ten years ago the gates appeared, and with them, the hunters.</div>
  <div class="tsinfo">
    <div class="imptdt">Status: Completed</div>
    <div class="imptdt">Type: Manhwa</div>
    <div class="imptdt">Author: <span>Chugong</span></div>
  </div>
  <div class="mgen"><a>Action</a><a>Adventure</a></div>
  <div class="rating-prc">9.1</div>
  <ul id="chapterlist">
    <li><a href="https://site.example/sl/chapter-179"><span class="chapternum">Chapter 179</span></a></li>
    <li><a href="https://site.example/sl/chapter-178"><span class="chapternum">Chapter 178</span></a></li>
    <li><span class="chapternum">Chapter 0 broken row</span></li>
  </ul>
</body></html>`

func TestManhwalistComic(t *testing.T) {
	doc := docFromString(t, manhwalistFixture)
	rec, err := Manhwalist{}.Comic(doc, "https://site.example/series/sl")
	require.NoError(t, err)

	assert.Equal(t, "Solo Leveling", rec.Title)
	assert.Equal(t, "https://cdn.example/covers/sl.jpg", rec.CoverURL)
	assert.Contains(t, rec.Description, "hunters")
	assert.Equal(t, "Completed", rec.Status)
	assert.Equal(t, "manhwa", rec.Type)
	assert.Equal(t, "Chugong", rec.Author)
	assert.Equal(t, []string{"Action", "Adventure"}, rec.Genres)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 9.1, *rec.Rating, 1e-9)

	// the row without a link is skipped
	require.Len(t, rec.Chapters, 2)
	assert.Equal(t, 179.0, rec.Chapters[0].ChapterNumber)
	assert.Equal(t, "chapter-179", rec.Chapters[0].SourceChapterID)
	assert.Equal(t, "Chapter 179", rec.Chapters[0].Title)
}

func TestManhwalistComicNoTitle(t *testing.T) {
	doc := docFromString(t, `<html><body><p>gone</p></body></html>`)
	_, err := Manhwalist{}.Comic(doc, "https://site.example/series/x")
	assert.Error(t, err)
}

func TestManhwalistPages(t *testing.T) {
	doc := docFromString(t, `
<html><body><div id="readerarea">
  <img src="https://cdn.example/1.jpg">
  <img data-src="https://cdn.example/2.jpg">
</div></body></html>`)

	assert.Equal(t, []string{
		"https://cdn.example/1.jpg",
		"https://cdn.example/2.jpg",
	}, Manhwalist{}.Pages(doc, "https://site.example/sl/chapter-1"))
}

const shinigamiFixture = `
<html><body>
  <h1 class="entry-title">Omniscient Reader</h1>
  <div class="thumb"><img src="https://cdn.example/covers/orv.jpg"></div>
  <div class="summary__content"><p>Only I know how this world ends, because I finished reading the novel nobody else did.</p></div>
  <div class="info-content"><div class="spe">
    <span>Status: Ongoing</span>
    <span>Author: <span>Sing Shong</span></span>
  </div></div>
  <div class="genre-info"><a>Action</a><a>Fantasy</a></div>
  <div class="eplister"><ul>
    <li><a href="/orv/chapter-2"><span class="epl-num">Chapter 2</span></a></li>
    <li><a href="/orv/chapter-1"><span class="epl-num">Chapter 1</span></a></li>
  </ul></div>
</body></html>`

func TestShinigamiComic(t *testing.T) {
	doc := docFromString(t, shinigamiFixture)
	rec, err := Shinigami{}.Comic(doc, "https://site.example/series/orv")
	require.NoError(t, err)

	assert.Equal(t, "Omniscient Reader", rec.Title)
	assert.Equal(t, "Ongoing", rec.Status)
	assert.Equal(t, "Sing Shong", rec.Author)
	assert.Equal(t, []string{"Action", "Fantasy"}, rec.Genres)

	require.Len(t, rec.Chapters, 2)
	// relative chapter links resolve against the page origin
	assert.Equal(t, "https://site.example/orv/chapter-2", rec.Chapters[0].SourceURL)
}

const komikcastFixture = `
<html><body>
  <div class="komik_info-content-body"><h1>Martial Peak</h1></div>
  <div class="komik_info-content-thumbnail"><img src="https://cdn.example/covers/mp.jpg"></div>
  <div class="komik_info-description-sinopsis">The journey to the martial peak is a lonely, solitary and long one.</div>
  <div class="komik_info-content-info">
    <span>Status: Ongoing</span>
    <span>Tipe: Manhua</span>
    <span>Author: <b>Momo</b></span>
  </div>
  <div class="komik_info-content-genre"><a>Martial Arts</a></div>
  <div class="data-rating">76</div>
  <div class="komik_info-chapters">
    <div class="komik_info-chapters-item">
      <a href="/mp/chapter-3056" class="chapter-link-item">Chapter 3056</a>
    </div>
  </div>
</body></html>`

func TestKomikcastComic(t *testing.T) {
	doc := docFromString(t, komikcastFixture)
	rec, err := Komikcast{}.Comic(doc, "https://site.example/komik/mp")
	require.NoError(t, err)

	assert.Equal(t, "Martial Peak", rec.Title)
	assert.Equal(t, "manhua", rec.Type)
	assert.Equal(t, "Momo", rec.Author)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 7.6, *rec.Rating, 1e-9)

	require.Len(t, rec.Chapters, 1)
	assert.Equal(t, "https://site.example/mp/chapter-3056", rec.Chapters[0].SourceURL)
	assert.Equal(t, 3056.0, rec.Chapters[0].ChapterNumber)
}
