package scrape

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"komikru/internal/fetch"
	"komikru/pkg/models"
)

// Fetcher retrieves raw HTML. Satisfied by *fetch.Client; tests supply
// canned documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts fetch.Options) (string, error)
}

// Adapter is source-specific extraction logic. Both methods are pure
// functions of the parsed document, so adapters stay trivially testable
// against HTML fixtures.
type Adapter interface {
	Code() string
	Comic(doc *goquery.Document, pageURL string) (*models.ComicRecord, error)
	Pages(doc *goquery.Document, pageURL string) []string
}

// Registry maps source codes to adapters. Unknown codes fall through to
// the universal extractor at dispatch time.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Code()] = a
}

func (r *Registry) Get(code string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[code]
	return a, ok
}

// DefaultRegistry holds every site adapter shipped with the crawler.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Manhwalist{})
	r.Register(Shinigami{})
	r.Register(Komikcast{})
	return r
}

// Dispatcher routes extraction requests to the right adapter and falls
// back to the universal extractor when the adapter is missing, fails, or
// comes back empty.
type Dispatcher struct {
	fetcher   Fetcher
	registry  *Registry
	universal *Universal
}

func NewDispatcher(f Fetcher, reg *Registry) *Dispatcher {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Dispatcher{
		fetcher:   f,
		registry:  reg,
		universal: NewUniversal(f),
	}
}

// ExtractComic scrapes a comic detail page. An adapter error or empty
// chapter list triggers the universal fallback for the whole request; the
// adapter's error is suppressed when the fallback succeeds.
func (d *Dispatcher) ExtractComic(ctx context.Context, sourceCode, pageURL string, sel *models.CustomSelectors) (*models.ComicRecord, error) {
	if a, ok := d.registry.Get(sourceCode); ok {
		rec, err := d.adapterComic(ctx, a, pageURL)
		switch {
		case err != nil:
			log.Printf("[scrape] adapter %s failed (%v), falling back to universal", sourceCode, err)
		case len(rec.Chapters) == 0:
			log.Printf("[scrape] adapter %s returned no chapters, falling back to universal", sourceCode)
		default:
			return rec, nil
		}
	} else if sourceCode != "" && sourceCode != "UNIVERSAL" {
		log.Printf("[scrape] unknown source %s: %v, using universal", sourceCode, ErrUnsupportedSource)
	}

	rec, err := d.universal.Comic(ctx, pageURL, sel)
	if err != nil {
		return nil, err
	}
	if len(rec.Chapters) == 0 {
		return nil, ErrNoChapters
	}
	return rec, nil
}

func (d *Dispatcher) adapterComic(ctx context.Context, a Adapter, pageURL string) (*models.ComicRecord, error) {
	doc, err := d.fetchDoc(ctx, pageURL, "")
	if err != nil {
		return nil, err
	}
	return a.Comic(doc, pageURL)
}

// ExtractPages scrapes a chapter's page images, numbering them 1..N in
// the order they appear in the markup.
func (d *Dispatcher) ExtractPages(ctx context.Context, sourceCode, chapterURL, selector string) ([]models.ChapterPage, error) {
	var images []string

	if a, ok := d.registry.Get(sourceCode); ok {
		doc, err := d.fetchDoc(ctx, chapterURL, chapterURL)
		if err != nil {
			log.Printf("[scrape] adapter %s page fetch failed (%v), falling back to universal", sourceCode, err)
		} else {
			images = a.Pages(doc, chapterURL)
		}
	}

	if len(images) == 0 {
		var err error
		images, err = d.universal.Images(ctx, chapterURL, selector)
		if err != nil {
			return nil, err
		}
	}
	if len(images) == 0 {
		return nil, ErrNoPages
	}

	pages := make([]models.ChapterPage, 0, len(images))
	for i, img := range images {
		pages = append(pages, models.ChapterPage{PageNumber: i + 1, ImageURL: img})
	}
	return pages, nil
}

func (d *Dispatcher) fetchDoc(ctx context.Context, pageURL, referer string) (*goquery.Document, error) {
	html, err := d.fetcher.Fetch(ctx, pageURL, fetch.Options{Referer: referer})
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
