// Package store holds the repositories over the canonical sqlite store:
// sources, comics, chapters, cached chapter pages and the scrape audit
// log.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"komikru/pkg/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func marshalGenres(genres []string) (string, error) {
	if len(genres) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(genres)
	if err != nil {
		return "", fmt.Errorf("marshal genres: %w", err)
	}
	return string(b), nil
}

func unmarshalGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	var genres []string
	if err := json.Unmarshal([]byte(raw), &genres); err != nil {
		return nil
	}
	return genres
}

func marshalSelectors(cs *models.CustomSelectors) (string, error) {
	if cs.IsZero() {
		return "", nil
	}
	b, err := json.Marshal(cs)
	if err != nil {
		return "", fmt.Errorf("marshal custom selectors: %w", err)
	}
	return string(b), nil
}

func unmarshalSelectors(raw string) *models.CustomSelectors {
	if raw == "" {
		return nil
	}
	var cs models.CustomSelectors
	if err := json.Unmarshal([]byte(raw), &cs); err != nil {
		return nil
	}
	if cs.IsZero() {
		return nil
	}
	return &cs
}
