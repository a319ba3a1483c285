// Package comic orchestrates syncing a comic from its source site into
// the canonical store: scrape the detail page, upsert the comic row and
// its chapter list, and record the outcome in the audit log.
package comic

import (
	"context"
	"fmt"
	"log"
	"time"

	"komikru/internal/scrape"
	"komikru/internal/store"
	"komikru/pkg/models"
)

// Extractor scrapes a comic detail page. Satisfied by *scrape.Dispatcher.
type Extractor interface {
	ExtractComic(ctx context.Context, sourceCode, pageURL string, sel *models.CustomSelectors) (*models.ComicRecord, error)
}

// SyncResult reports what a sync wrote.
type SyncResult struct {
	KomikID  string `json:"komikId"`
	Chapters int    `json:"chaptersCount"`
}

type Syncer struct {
	Repo      *store.Repo
	Extractor Extractor
}

func NewSyncer(repo *store.Repo, ex Extractor) *Syncer {
	return &Syncer{Repo: repo, Extractor: ex}
}

// SyncComic scrapes sourceURL through the adapter registered for
// sourceCode and writes the result. A non-empty komikID updates that
// comic in place, keeping its stored custom selectors in play for the
// scrape; an empty komikID creates a new comic.
func (s *Syncer) SyncComic(ctx context.Context, sourceCode, sourceURL, komikID string) (*SyncResult, error) {
	src, err := s.Repo.SourceByCode(ctx, sourceCode)
	if err != nil {
		return nil, err
	}

	result, err := s.sync(ctx, src, sourceURL, komikID)
	s.audit(ctx, src.ID, sourceURL, err)
	return result, err
}

func (s *Syncer) sync(ctx context.Context, src *models.Source, sourceURL, komikID string) (*SyncResult, error) {
	var existing *models.Comic
	if komikID != "" {
		var err error
		existing, err = s.Repo.ComicByID(ctx, komikID)
		if err != nil {
			return nil, err
		}
	}

	var selectors *models.CustomSelectors
	if existing != nil {
		selectors = existing.CustomSelectors
	}
	rec, err := s.Extractor.ExtractComic(ctx, src.Code, sourceURL, selectors)
	if err != nil {
		return nil, fmt.Errorf("extract comic from %s: %w", sourceURL, err)
	}
	warnDuplicateZero(sourceURL, rec.Chapters)

	comic := &models.Comic{
		Title:       rec.Title,
		Slug:        scrape.Slugify(rec.Title),
		Description: rec.Description,
		CoverURL:    rec.CoverURL,
		Status:      rec.Status,
		Type:        rec.Type,
		Rating:      rec.Rating,
		Genres:      rec.Genres,
		Author:      rec.Author,
		Artist:      rec.Artist,
		SourceID:    src.ID,
		SourceSlug:  scrape.LastSegment(sourceURL),
		SourceURL:   sourceURL,
	}
	if existing != nil {
		comic.ID = existing.ID
		comic.Slug = existing.Slug
		comic.CustomSelectors = existing.CustomSelectors
	}

	id, err := s.Repo.UpsertComic(ctx, comic)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpsertChapters(ctx, id, rec.Chapters); err != nil {
		return nil, err
	}
	return &SyncResult{KomikID: id, Chapters: len(rec.Chapters)}, nil
}

// warnDuplicateZero flags chapter lists where number extraction fell
// back to zero more than once: those rows collapse onto the same
// (komik, chapter_number) key and overwrite each other.
func warnDuplicateZero(sourceURL string, chapters []models.ChapterSummary) {
	zeros := 0
	for _, ch := range chapters {
		if ch.ChapterNumber == 0 {
			zeros++
		}
	}
	if zeros > 1 {
		log.Printf("[sync] %s: %d chapters parsed as number 0, only the last survives", sourceURL, zeros)
	}
}

func (s *Syncer) audit(ctx context.Context, sourceID, targetURL string, opErr error) {
	logRow := &models.ScrapeLog{
		SourceID:  sourceID,
		Action:    store.ActionSyncComic,
		TargetURL: targetURL,
		Status:    store.StatusSuccess,
	}
	if opErr != nil {
		logRow.Status = store.StatusFailed
		logRow.ErrorMessage = opErr.Error()
	}
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Repo.InsertScrapeLog(lctx, logRow); err != nil {
		log.Printf("[sync] scrape log: %v", err)
	}
}
