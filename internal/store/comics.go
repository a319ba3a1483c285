package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"komikru/pkg/models"
)

// ComicByID loads a comic row including its per-comic custom selectors.
func (r *Repo) ComicByID(ctx context.Context, id string) (*models.Comic, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, slug, COALESCE(description, ''), COALESCE(cover_url, ''),
		       status, type, rating, COALESCE(genres, ''),
		       COALESCE(author, ''), COALESCE(artist, ''),
		       COALESCE(source_id, ''), COALESCE(source_slug, ''), COALESCE(source_url, ''),
		       COALESCE(custom_selectors, '')
		FROM komik
		WHERE id = ?`, id)
	return scanComic(row)
}

func scanComic(row *sql.Row) (*models.Comic, error) {
	var (
		c         models.Comic
		rating    sql.NullFloat64
		genres    string
		selectors string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.CoverURL,
		&c.Status, &c.Type, &rating, &genres,
		&c.Author, &c.Artist,
		&c.SourceID, &c.SourceSlug, &c.SourceURL,
		&selectors)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan komik: %w", err)
	}
	if rating.Valid {
		c.Rating = &rating.Float64
	}
	c.Genres = unmarshalGenres(genres)
	c.CustomSelectors = unmarshalSelectors(selectors)
	return &c, nil
}

// UpsertComic inserts a new comic when c.ID is empty, otherwise updates
// the existing row in place. Returns the comic id.
func (r *Repo) UpsertComic(ctx context.Context, c *models.Comic) (string, error) {
	genres, err := marshalGenres(c.Genres)
	if err != nil {
		return "", err
	}
	selectors := ""
	if c.CustomSelectors != nil {
		selectors, err = marshalSelectors(c.CustomSelectors)
		if err != nil {
			return "", err
		}
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO komik (id, title, slug, description, cover_url, status, type,
			                   rating, genres, author, artist,
			                   source_id, source_slug, source_url, custom_selectors)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Title, c.Slug, c.Description, c.CoverURL, c.Status, c.Type,
			c.Rating, genres, c.Author, c.Artist,
			nullable(c.SourceID), c.SourceSlug, c.SourceURL, nullable(selectors))
		if err != nil {
			return "", fmt.Errorf("insert komik %q: %w", c.Slug, err)
		}
		return c.ID, nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE komik
		SET title = ?, description = ?, cover_url = ?, status = ?, type = ?,
		    rating = ?, genres = ?, author = ?, artist = ?,
		    source_id = ?, source_slug = ?, source_url = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Title, c.Description, c.CoverURL, c.Status, c.Type,
		c.Rating, genres, c.Author, c.Artist,
		nullable(c.SourceID), c.SourceSlug, c.SourceURL,
		c.ID)
	if err != nil {
		return "", fmt.Errorf("update komik %s: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrNotFound
	}
	return c.ID, nil
}

// nullable maps "" to NULL so foreign keys and JSON columns stay clean.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
