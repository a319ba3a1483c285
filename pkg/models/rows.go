package models

import "time"

// Source is a registered third-party website. Code selects the scraper
// adapter that understands the site's markup.
type Source struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

// Comic is the persisted comic row.
type Comic struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description,omitempty"`
	CoverURL        string           `json:"cover_url,omitempty"`
	Status          string           `json:"status"`
	Type            string           `json:"type"`
	Rating          *float64         `json:"rating,omitempty"`
	Genres          []string         `json:"genres,omitempty"`
	Author          string           `json:"author,omitempty"`
	Artist          string           `json:"artist,omitempty"`
	SourceID        string           `json:"source_id,omitempty"`
	SourceSlug      string           `json:"source_slug,omitempty"`
	SourceURL       string           `json:"source_url,omitempty"`
	CustomSelectors *CustomSelectors `json:"custom_selectors,omitempty"`
}

// Chapter is the persisted chapter row.
type Chapter struct {
	ID              string  `json:"id"`
	KomikID         string  `json:"komik_id"`
	ChapterNumber   float64 `json:"chapter_number"`
	Title           string  `json:"title,omitempty"`
	SourceChapterID string  `json:"source_chapter_id,omitempty"`
	SourceURL       string  `json:"source_url,omitempty"`
}

// ChapterPageRow is the persisted cache metadata for one page image.
type ChapterPageRow struct {
	ID             string    `json:"id"`
	ChapterID      string    `json:"chapter_id"`
	PageNumber     int       `json:"page_number"`
	SourceImageURL string    `json:"source_image_url"`
	CachedImageURL string    `json:"cached_image_url,omitempty"`
	CachedAt       time.Time `json:"cached_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ScrapeLog is one audit record of a scrape/cache operation.
type ScrapeLog struct {
	ID           string `json:"id"`
	SourceID     string `json:"source_id,omitempty"`
	Action       string `json:"action"`
	TargetURL    string `json:"target_url,omitempty"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}
