package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"komikru/pkg/database"
	"komikru/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	// in-memory sqlite is per-connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return New(db)
}

func seedComic(t *testing.T, repo *Repo, sourceID string) string {
	t.Helper()
	id, err := repo.UpsertComic(context.Background(), &models.Comic{
		Title:      "Tower of God",
		Slug:       "tower-of-god",
		Status:     "Ongoing",
		Type:       "manhwa",
		SourceID:   sourceID,
		SourceSlug: "tower-of-god",
		SourceURL:  "https://example.com/manga/tower-of-god",
	})
	require.NoError(t, err)
	return id
}

func TestSourceByCode(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.InsertSource(ctx, "MANHWALIST", "Manhwalist", "https://manhwalist.com")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	src, err := repo.SourceByCode(ctx, "MANHWALIST")
	require.NoError(t, err)
	assert.Equal(t, id, src.ID)
	assert.Equal(t, "Manhwalist", src.Name)
	assert.Equal(t, "https://manhwalist.com", src.BaseURL)

	_, err = repo.SourceByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertComicInsertAndUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rating := 9.2
	comic := &models.Comic{
		Title:       "Tower of God",
		Slug:        "tower-of-god",
		Description: "A boy climbs a tower.",
		Status:      "Ongoing",
		Type:        "manhwa",
		Rating:      &rating,
		Genres:      []string{"Action", "Fantasy"},
		Author:      "SIU",
		CustomSelectors: &models.CustomSelectors{
			Title: "h1.series-title",
		},
	}
	id, err := repo.UpsertComic(ctx, comic)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.ComicByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Tower of God", got.Title)
	assert.Equal(t, []string{"Action", "Fantasy"}, got.Genres)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 9.2, *got.Rating, 0.001)
	require.NotNil(t, got.CustomSelectors)
	assert.Equal(t, "h1.series-title", got.CustomSelectors.Title)

	got.Status = "Completed"
	got.Description = "A boy climbs a tower. Finished."
	updatedID, err := repo.UpsertComic(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, id, updatedID)

	again, err := repo.ComicByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Completed", again.Status)
	assert.Equal(t, "A boy climbs a tower. Finished.", again.Description)
	// custom selectors survive updates that don't touch them
	require.NotNil(t, again.CustomSelectors)
	assert.Equal(t, "h1.series-title", again.CustomSelectors.Title)
}

func TestUpsertComicUnknownID(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.UpsertComic(context.Background(), &models.Comic{
		ID:    "does-not-exist",
		Title: "Ghost",
		Slug:  "ghost",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertChaptersKeyedByNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	komikID := seedComic(t, repo, "")

	err := repo.UpsertChapters(ctx, komikID, []models.ChapterSummary{
		{ChapterNumber: 1, Title: "Chapter 1", SourceChapterID: "chapter-1", SourceURL: "https://example.com/chapter-1"},
		{ChapterNumber: 2, Title: "Chapter 2", SourceChapterID: "chapter-2", SourceURL: "https://example.com/chapter-2"},
	})
	require.NoError(t, err)

	first, err := repo.ChaptersByComic(ctx, komikID)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// re-sync: chapter 2 renamed, chapter 3 appears
	err = repo.UpsertChapters(ctx, komikID, []models.ChapterSummary{
		{ChapterNumber: 2, Title: "Chapter 2 - Revised", SourceChapterID: "chapter-2", SourceURL: "https://example.com/chapter-2-revised"},
		{ChapterNumber: 3, Title: "Chapter 3", SourceChapterID: "chapter-3", SourceURL: "https://example.com/chapter-3"},
	})
	require.NoError(t, err)

	chapters, err := repo.ChaptersByComic(ctx, komikID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, "Chapter 2 - Revised", chapters[1].Title)
	assert.Equal(t, "https://example.com/chapter-2-revised", chapters[1].SourceURL)
	// existing row kept its id across the upsert
	assert.Equal(t, first[1].ID, chapters[1].ID)
	assert.Equal(t, 3.0, chapters[2].ChapterNumber)
}

func TestChapterWithSource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sourceID, err := repo.InsertSource(ctx, "SHINIGAMI", "Shinigami", "https://shinigami.id")
	require.NoError(t, err)

	comicID, err := repo.UpsertComic(ctx, &models.Comic{
		Title:           "Omniscient Reader",
		Slug:            "omniscient-reader",
		Status:          "Ongoing",
		Type:            "manhwa",
		SourceID:        sourceID,
		CustomSelectors: &models.CustomSelectors{PageImage: ".reader img"},
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpsertChapters(ctx, comicID, []models.ChapterSummary{
		{ChapterNumber: 5, Title: "Chapter 5", SourceURL: "https://shinigami.id/chapter-5"},
	}))
	chapters, err := repo.ChaptersByComic(ctx, comicID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)

	cs, err := repo.ChapterWithSource(ctx, chapters[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "SHINIGAMI", cs.SourceCode)
	assert.Equal(t, sourceID, cs.SourceID)
	assert.Equal(t, "https://shinigami.id/chapter-5", cs.Chapter.SourceURL)
	require.NotNil(t, cs.CustomSelectors)
	assert.Equal(t, ".reader img", cs.CustomSelectors.PageImage)

	_, err = repo.ChapterWithSource(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	komikID := seedComic(t, repo, "")

	require.NoError(t, repo.UpsertChapters(ctx, komikID, []models.ChapterSummary{
		{ChapterNumber: 1, SourceURL: "https://example.com/chapter-1"},
	}))
	chapters, err := repo.ChaptersByComic(ctx, komikID)
	require.NoError(t, err)
	chapterID := chapters[0].ID

	now := time.Now().UTC().Truncate(time.Second)
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.InsertPage(ctx, &models.ChapterPageRow{
			ChapterID:      chapterID,
			PageNumber:     i,
			SourceImageURL: "https://example.com/img.jpg",
			CachedImageURL: "https://cdn.example.com/p.webp",
			CachedAt:       now,
			ExpiresAt:      now.Add(24 * time.Hour),
		}))
	}

	pages, err := repo.PagesByChapter(ctx, chapterID)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.WithinDuration(t, now.Add(24*time.Hour), pages[0].ExpiresAt, time.Second)

	deleted, err := repo.DeletePagesByChapter(ctx, chapterID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	pages, err = repo.PagesByChapter(ctx, chapterID)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExpiredPages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	komikID := seedComic(t, repo, "")

	require.NoError(t, repo.UpsertChapters(ctx, komikID, []models.ChapterSummary{
		{ChapterNumber: 1, SourceURL: "https://example.com/chapter-1"},
		{ChapterNumber: 2, SourceURL: "https://example.com/chapter-2"},
	}))
	chapters, err := repo.ChaptersByComic(ctx, komikID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	insert := func(chapterID string, page int, expires time.Time) {
		require.NoError(t, repo.InsertPage(ctx, &models.ChapterPageRow{
			ChapterID:      chapterID,
			PageNumber:     page,
			SourceImageURL: "https://example.com/img.jpg",
			CachedAt:       now.Add(-48 * time.Hour),
			ExpiresAt:      expires,
		}))
	}
	insert(chapters[0].ID, 1, now.Add(-2*time.Hour))
	insert(chapters[0].ID, 2, now.Add(-1*time.Hour))
	insert(chapters[1].ID, 1, now.Add(1*time.Hour)) // still fresh

	expired, err := repo.ExpiredPages(ctx, now, 500)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	// oldest expiry first
	assert.Equal(t, 1, expired[0].PageNumber)
	assert.Equal(t, chapters[0].ID, expired[0].ChapterID)

	deleted, err := repo.DeletePages(ctx, []string{expired[0].ID, expired[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := repo.PagesByChapter(ctx, chapters[1].ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestScrapeLogRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertScrapeLog(ctx, &models.ScrapeLog{
		Action:    ActionSyncComic,
		TargetURL: "https://example.com/manga/x",
		Status:    StatusSuccess,
	}))
	require.NoError(t, repo.InsertScrapeLog(ctx, &models.ScrapeLog{
		Action:       ActionCacheChapter,
		Status:       StatusFailed,
		ErrorMessage: "no pages",
	}))

	logs, err := repo.RecentScrapeLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.NotEmpty(t, l.ID)
	}
}
