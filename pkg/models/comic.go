package models

// ComicRecord is the normalized result of extracting a comic detail page
// from an external source. All adapters and the universal extractor map
// raw HTML into this structure first; the sync layer writes to the DB
// from this representation.
type ComicRecord struct {
	Title       string           `json:"title"`
	CoverURL    string           `json:"cover_url,omitempty"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"` // "Ongoing" or "Completed"
	Type        string           `json:"type"`   // manga, manhwa, manhua, novel
	Rating      *float64         `json:"rating,omitempty"`
	Genres      []string         `json:"genres,omitempty"`
	Author      string           `json:"author,omitempty"`
	Artist      string           `json:"artist,omitempty"`
	Chapters    []ChapterSummary `json:"chapters"`
}

// ChapterSummary is one entry of a comic's chapter list as seen on the
// source site.
type ChapterSummary struct {
	SourceURL       string  `json:"source_url"`
	SourceChapterID string  `json:"source_chapter_id"`
	ChapterNumber   float64 `json:"chapter_number"` // 0 when the label has no parseable number
	Title           string  `json:"title,omitempty"`
}

// ChapterPage is a single page image of a chapter. ImageURL points at the
// source site right after extraction and at the object store once cached.
type ChapterPage struct {
	PageNumber int    `json:"pageNumber"`
	ImageURL   string `json:"imageUrl"`
}

// CustomSelectors are per-comic overrides for the universal extractor.
// Any non-empty field takes precedence over auto-detection for that field
// only.
type CustomSelectors struct {
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Cover        string `json:"cover,omitempty" yaml:"cover,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Genres       string `json:"genres,omitempty" yaml:"genres,omitempty"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	Rating       string `json:"rating,omitempty" yaml:"rating,omitempty"`
	ChapterList  string `json:"chapterList,omitempty" yaml:"chapter_list,omitempty"`
	ChapterTitle string `json:"chapterTitle,omitempty" yaml:"chapter_title,omitempty"`
	PageImage    string `json:"pageImage,omitempty" yaml:"page_image,omitempty"`
}

// IsZero reports whether every override is blank. An all-blank set is
// treated the same as no overrides at all.
func (cs *CustomSelectors) IsZero() bool {
	if cs == nil {
		return true
	}
	return cs.Title == "" && cs.Cover == "" && cs.Description == "" &&
		cs.Genres == "" && cs.Status == "" && cs.Rating == "" &&
		cs.ChapterList == "" && cs.ChapterTitle == "" && cs.PageImage == ""
}
