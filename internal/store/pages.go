package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"komikru/pkg/models"
)

// PagesByChapter lists the cached page rows for a chapter ordered by
// page number.
func (r *Repo) PagesByChapter(ctx context.Context, chapterID string) ([]models.ChapterPageRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chapter_id, page_number, source_image_url,
		       COALESCE(cached_image_url, ''), cached_at, expires_at
		FROM chapter_pages
		WHERE chapter_id = ?
		ORDER BY page_number`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("query pages for %s: %w", chapterID, err)
	}
	defer rows.Close()
	return scanPages(rows)
}

func scanPages(rows *sql.Rows) ([]models.ChapterPageRow, error) {
	var pages []models.ChapterPageRow
	for rows.Next() {
		var (
			p         models.ChapterPageRow
			cachedAt  sql.NullTime
			expiresAt sql.NullTime
		)
		err := rows.Scan(&p.ID, &p.ChapterID, &p.PageNumber, &p.SourceImageURL,
			&p.CachedImageURL, &cachedAt, &expiresAt)
		if err != nil {
			return nil, fmt.Errorf("scan chapter page: %w", err)
		}
		p.CachedAt = cachedAt.Time
		p.ExpiresAt = expiresAt.Time
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// InsertPage records one freshly cached page image.
func (r *Repo) InsertPage(ctx context.Context, p *models.ChapterPageRow) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapter_pages (id, chapter_id, page_number, source_image_url,
		                           cached_image_url, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chapter_id, page_number) DO UPDATE SET
			source_image_url = excluded.source_image_url,
			cached_image_url = excluded.cached_image_url,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`,
		p.ID, p.ChapterID, p.PageNumber, p.SourceImageURL,
		nullable(p.CachedImageURL), p.CachedAt, p.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert page %d of %s: %w", p.PageNumber, p.ChapterID, err)
	}
	return nil
}

// DeletePagesByChapter drops every cached page row for a chapter and
// returns how many rows were removed.
func (r *Repo) DeletePagesByChapter(ctx context.Context, chapterID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM chapter_pages WHERE chapter_id = ?`, chapterID)
	if err != nil {
		return 0, fmt.Errorf("delete pages for %s: %w", chapterID, err)
	}
	return res.RowsAffected()
}

// ExpiredPages returns up to limit page rows whose cache entry expired
// before the given instant, oldest first.
func (r *Repo) ExpiredPages(ctx context.Context, before time.Time, limit int) ([]models.ChapterPageRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chapter_id, page_number, source_image_url,
		       COALESCE(cached_image_url, ''), cached_at, expires_at
		FROM chapter_pages
		WHERE expires_at IS NOT NULL AND expires_at < ?
		ORDER BY expires_at
		LIMIT ?`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired pages: %w", err)
	}
	defer rows.Close()
	return scanPages(rows)
}

// DeletePages removes the rows with the given ids.
func (r *Repo) DeletePages(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM chapter_pages WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %d pages: %w", len(ids), err)
	}
	return res.RowsAffected()
}
