package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"komikru/pkg/models"
)

// SourceByCode looks up a scrape source by its short code, e.g. "MANHWALIST".
func (r *Repo) SourceByCode(ctx context.Context, code string) (*models.Source, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, COALESCE(base_url, '')
		FROM sources
		WHERE code = ?`, code)

	var s models.Source
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &s.BaseURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query source %q: %w", code, err)
	}
	return &s, nil
}

// InsertSource registers a new scrape source and returns its id.
func (r *Repo) InsertSource(ctx context.Context, code, name, baseURL string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (id, code, name, base_url)
		VALUES (?, ?, ?, ?)`, id, code, name, baseURL)
	if err != nil {
		return "", fmt.Errorf("insert source %q: %w", code, err)
	}
	return id, nil
}
