package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"komikru/pkg/models"
)

// ChapterSource is a chapter joined with the scrape context the cache
// layer needs: which adapter to dispatch to and which per-comic
// selectors override auto-detection.
type ChapterSource struct {
	Chapter         models.Chapter
	SourceID        string
	SourceCode      string
	CustomSelectors *models.CustomSelectors
}

// ChapterWithSource loads a chapter together with its comic's source
// code and custom selectors.
func (r *Repo) ChapterWithSource(ctx context.Context, chapterID string) (*ChapterSource, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT ch.id, ch.komik_id, ch.chapter_number,
		       COALESCE(ch.title, ''), COALESCE(ch.source_chapter_id, ''), COALESCE(ch.source_url, ''),
		       COALESCE(s.id, ''), COALESCE(s.code, ''),
		       COALESCE(k.custom_selectors, '')
		FROM chapters ch
		JOIN komik k ON k.id = ch.komik_id
		LEFT JOIN sources s ON s.id = k.source_id
		WHERE ch.id = ?`, chapterID)

	var (
		cs        ChapterSource
		selectors string
	)
	err := row.Scan(&cs.Chapter.ID, &cs.Chapter.KomikID, &cs.Chapter.ChapterNumber,
		&cs.Chapter.Title, &cs.Chapter.SourceChapterID, &cs.Chapter.SourceURL,
		&cs.SourceID, &cs.SourceCode,
		&selectors)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query chapter %s: %w", chapterID, err)
	}
	cs.CustomSelectors = unmarshalSelectors(selectors)
	return &cs, nil
}

// UpsertChapters writes the scraped chapter list for a comic in one
// transaction. Rows are keyed by (komik_id, chapter_number): a chapter
// already present keeps its id and gets its title and source fields
// refreshed.
func (r *Repo) UpsertChapters(ctx context.Context, komikID string, chapters []models.ChapterSummary) error {
	if len(chapters) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chapters tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (id, komik_id, chapter_number, title, source_chapter_id, source_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (komik_id, chapter_number) DO UPDATE SET
			title = excluded.title,
			source_chapter_id = excluded.source_chapter_id,
			source_url = excluded.source_url`)
	if err != nil {
		return fmt.Errorf("prepare chapter upsert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chapters {
		_, err := stmt.ExecContext(ctx, uuid.NewString(), komikID,
			ch.ChapterNumber, ch.Title, ch.SourceChapterID, ch.SourceURL)
		if err != nil {
			return fmt.Errorf("upsert chapter %.1f: %w", ch.ChapterNumber, err)
		}
	}
	return tx.Commit()
}

// ChaptersByComic lists a comic's chapters ordered by chapter number.
func (r *Repo) ChaptersByComic(ctx context.Context, komikID string) ([]models.Chapter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, komik_id, chapter_number,
		       COALESCE(title, ''), COALESCE(source_chapter_id, ''), COALESCE(source_url, '')
		FROM chapters
		WHERE komik_id = ?
		ORDER BY chapter_number`, komikID)
	if err != nil {
		return nil, fmt.Errorf("query chapters for %s: %w", komikID, err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		err := rows.Scan(&ch.ID, &ch.KomikID, &ch.ChapterNumber,
			&ch.Title, &ch.SourceChapterID, &ch.SourceURL)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}
