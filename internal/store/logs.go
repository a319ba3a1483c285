package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"komikru/pkg/models"
)

// Scrape log actions and statuses.
const (
	ActionSyncComic    = "SYNC_COMIC"
	ActionCacheChapter = "CACHE_CHAPTER"
	ActionCleanupCache = "CLEANUP_CACHE"

	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// InsertScrapeLog appends one audit record. Callers treat failures as
// non-fatal; the operation being logged already happened.
func (r *Repo) InsertScrapeLog(ctx context.Context, l *models.ScrapeLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scrape_logs (id, source_id, action, target_url, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, nullable(l.SourceID), l.Action, nullable(l.TargetURL),
		l.Status, nullable(l.ErrorMessage))
	if err != nil {
		return fmt.Errorf("insert scrape log: %w", err)
	}
	return nil
}

// RecentScrapeLogs lists the newest audit records, newest first.
func (r *Repo) RecentScrapeLogs(ctx context.Context, limit int) ([]models.ScrapeLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(source_id, ''), action, COALESCE(target_url, ''),
		       status, COALESCE(error_message, '')
		FROM scrape_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scrape logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		var l models.ScrapeLog
		err := rows.Scan(&l.ID, &l.SourceID, &l.Action, &l.TargetURL, &l.Status, &l.ErrorMessage)
		if err != nil {
			return nil, fmt.Errorf("scan scrape log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
