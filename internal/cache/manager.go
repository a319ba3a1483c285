// Package cache populates and expires the chapter image cache: page
// images are pulled from the source site, written to object storage and
// tracked in chapter_pages with a TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"komikru/internal/fetch"
	"komikru/internal/objstore"
	"komikru/internal/store"
	"komikru/pkg/models"
)

const (
	// DefaultTTL is how long a cached page stays valid.
	DefaultTTL = 24 * time.Hour
	// DefaultWorkers bounds concurrent image downloads per chapter.
	DefaultWorkers = 4
	// CleanupBatch caps how many expired rows one cleanup pass handles.
	CleanupBatch = 500

	downloadTimeout = 30 * time.Second
)

// ErrNoSourceURL means the chapter row has no source URL to scrape from.
var ErrNoSourceURL = errors.New("source URL not found")

// Extractor scrapes a chapter's page image URLs. Satisfied by
// *scrape.Dispatcher.
type Extractor interface {
	ExtractPages(ctx context.Context, sourceCode, chapterURL, selector string) ([]models.ChapterPage, error)
}

// Result is the outcome of a cache request. Cached reports whether the
// pages were served from an existing fresh cache entry.
type Result struct {
	ChapterID string               `json:"chapterId"`
	Cached    bool                 `json:"cached"`
	Pages     []models.ChapterPage `json:"pages"`
}

// CleanupResult counts what one cleanup pass removed.
type CleanupResult struct {
	DeletedFiles int `json:"deletedFiles"`
	DeletedRows  int `json:"deletedRows"`
}

// Manager caches chapter pages. Image downloads go through their own
// HTTP client rather than the polite fetch client: the page HTML fetch
// already paid the per-host delay, and image CDNs are built for
// parallel pulls.
type Manager struct {
	Repo      *store.Repo
	Extractor Extractor
	Objects   objstore.Store
	Images    *http.Client

	TTL     time.Duration
	Workers int

	now func() time.Time
}

func NewManager(repo *store.Repo, ex Extractor, objects objstore.Store) *Manager {
	return &Manager{
		Repo:      repo,
		Extractor: ex,
		Objects:   objects,
		Images:    &http.Client{Timeout: downloadTimeout},
		TTL:       DefaultTTL,
		Workers:   DefaultWorkers,
		now:       time.Now,
	}
}

// CacheChapter serves a chapter's pages from cache when fresh, otherwise
// re-scrapes the chapter, downloads every page image into object storage
// and records the new cache entries.
func (m *Manager) CacheChapter(ctx context.Context, chapterID string) (*Result, error) {
	cs, err := m.Repo.ChapterWithSource(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	existing, err := m.Repo.PagesByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if fresh(existing, m.now()) {
		return &Result{
			ChapterID: chapterID,
			Cached:    true,
			Pages:     toPages(existing),
		}, nil
	}

	result, err := m.repopulate(ctx, cs, existing)
	m.audit(cs.SourceID, store.ActionCacheChapter, cs.Chapter.SourceURL, err)
	return result, err
}

// fresh reports whether the cached rows are all present and unexpired.
// Expiry is written once per population, so checking the earliest row is
// enough.
func fresh(rows []models.ChapterPageRow, now time.Time) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if r.CachedImageURL == "" || !r.ExpiresAt.After(now) {
			return false
		}
	}
	return true
}

func (m *Manager) repopulate(ctx context.Context, cs *store.ChapterSource, stale []models.ChapterPageRow) (*Result, error) {
	chapterID := cs.Chapter.ID
	if len(stale) > 0 {
		if err := m.purge(ctx, chapterID, stale); err != nil {
			return nil, err
		}
	}

	if cs.Chapter.SourceURL == "" {
		return nil, ErrNoSourceURL
	}

	selector := ""
	if cs.CustomSelectors != nil {
		selector = cs.CustomSelectors.PageImage
	}
	scraped, err := m.Extractor.ExtractPages(ctx, cs.SourceCode, cs.Chapter.SourceURL, selector)
	if err != nil {
		return nil, fmt.Errorf("extract pages for chapter %s: %w", chapterID, err)
	}

	cachedAt := m.now().UTC()
	expiresAt := cachedAt.Add(m.ttl())

	var (
		mu    sync.Mutex
		pages []models.ChapterPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers())
	for _, page := range scraped {
		g.Go(func() error {
			cachedURL, err := m.cachePage(gctx, chapterID, cs.Chapter.SourceURL, page)
			if err != nil {
				// one broken page must not sink the chapter
				log.Printf("[cache] page %d of chapter %s: %v", page.PageNumber, chapterID, err)
				return nil
			}
			row := &models.ChapterPageRow{
				ChapterID:      chapterID,
				PageNumber:     page.PageNumber,
				SourceImageURL: page.ImageURL,
				CachedImageURL: cachedURL,
				CachedAt:       cachedAt,
				ExpiresAt:      expiresAt,
			}
			if err := m.Repo.InsertPage(gctx, row); err != nil {
				log.Printf("[cache] page %d of chapter %s: %v", page.PageNumber, chapterID, err)
				return nil
			}
			mu.Lock()
			pages = append(pages, models.ChapterPage{PageNumber: page.PageNumber, ImageURL: cachedURL})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages cached for chapter %s", chapterID)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return &Result{ChapterID: chapterID, Cached: false, Pages: pages}, nil
}

// purge drops a chapter's stale objects and rows before repopulating.
func (m *Manager) purge(ctx context.Context, chapterID string, rows []models.ChapterPageRow) error {
	var paths []string
	for _, r := range rows {
		if p, ok := m.Objects.ParsePath(r.CachedImageURL); ok {
			paths = append(paths, p)
		}
	}
	if err := m.Objects.Remove(ctx, paths); err != nil {
		log.Printf("[cache] purge objects for chapter %s: %v", chapterID, err)
	}
	if _, err := m.Repo.DeletePagesByChapter(ctx, chapterID); err != nil {
		return err
	}
	return nil
}

// cachePage downloads one page image and stores it, returning the
// public cache URL.
func (m *Manager) cachePage(ctx context.Context, chapterID, chapterURL string, page models.ChapterPage) (string, error) {
	data, contentType, err := m.download(ctx, page.ImageURL, chapterURL)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s/page%d.%s", chapterID, page.PageNumber, extensionFor(contentType))
	if err := m.Objects.Put(ctx, path, data, contentType); err != nil {
		return "", fmt.Errorf("store %s: %w", path, err)
	}
	return m.Objects.PublicURL(path), nil
}

func (m *Manager) download(ctx context.Context, imageURL, referer string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("User-Agent", fetch.RandomUserAgent())
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := m.Images.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("download %s: unexpected status %s", imageURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", imageURL, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// extensionFor maps an image content type to the stored file extension,
// defaulting to jpg.
func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "webp"):
		return "webp"
	case strings.Contains(contentType, "png"):
		return "png"
	default:
		return "jpg"
	}
}

// Cleanup removes one batch of expired cache entries, grouped by chapter
// so each chapter's objects go in a single storage call.
func (m *Manager) Cleanup(ctx context.Context) (*CleanupResult, error) {
	expired, err := m.Repo.ExpiredPages(ctx, m.now().UTC(), CleanupBatch)
	if err != nil {
		m.audit("", store.ActionCleanupCache, "", err)
		return nil, err
	}

	byChapter := make(map[string][]models.ChapterPageRow)
	var order []string
	for _, row := range expired {
		if _, ok := byChapter[row.ChapterID]; !ok {
			order = append(order, row.ChapterID)
		}
		byChapter[row.ChapterID] = append(byChapter[row.ChapterID], row)
	}

	result := &CleanupResult{}
	for _, chapterID := range order {
		rows := byChapter[chapterID]

		var paths, ids []string
		for _, r := range rows {
			ids = append(ids, r.ID)
			if p, ok := m.Objects.ParsePath(r.CachedImageURL); ok {
				paths = append(paths, p)
			}
		}
		if err := m.Objects.Remove(ctx, paths); err != nil {
			log.Printf("[cache] cleanup objects for chapter %s: %v", chapterID, err)
			continue
		}
		deleted, err := m.Repo.DeletePages(ctx, ids)
		if err != nil {
			log.Printf("[cache] cleanup rows for chapter %s: %v", chapterID, err)
			continue
		}
		result.DeletedFiles += len(paths)
		result.DeletedRows += int(deleted)
	}

	m.audit("", store.ActionCleanupCache, "", nil)
	return result, nil
}

func (m *Manager) audit(sourceID, action, targetURL string, opErr error) {
	logRow := &models.ScrapeLog{
		SourceID:  sourceID,
		Action:    action,
		TargetURL: targetURL,
		Status:    store.StatusSuccess,
	}
	if opErr != nil {
		logRow.Status = store.StatusFailed
		logRow.ErrorMessage = opErr.Error()
	}
	// audit writes are best effort
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Repo.InsertScrapeLog(ctx, logRow); err != nil {
		log.Printf("[cache] scrape log: %v", err)
	}
}

func (m *Manager) ttl() time.Duration {
	if m.TTL > 0 {
		return m.TTL
	}
	return DefaultTTL
}

func (m *Manager) workers() int {
	if m.Workers > 0 {
		return m.Workers
	}
	return DefaultWorkers
}

// toPages converts stored rows to the API page shape.
func toPages(rows []models.ChapterPageRow) []models.ChapterPage {
	pages := make([]models.ChapterPage, 0, len(rows))
	for _, r := range rows {
		pages = append(pages, models.ChapterPage{PageNumber: r.PageNumber, ImageURL: r.CachedImageURL})
	}
	return pages
}
