// Package webapi exposes the sync and cache operations over HTTP.
package webapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"komikru/internal/cache"
	"komikru/internal/comic"
	"komikru/internal/scrape"
	"komikru/internal/store"
)

// SyncService runs a comic sync. Satisfied by *comic.Syncer.
type SyncService interface {
	SyncComic(ctx context.Context, sourceCode, sourceURL, komikID string) (*comic.SyncResult, error)
}

// CacheService serves and expires chapter page caches. Satisfied by
// *cache.Manager.
type CacheService interface {
	CacheChapter(ctx context.Context, chapterID string) (*cache.Result, error)
	Cleanup(ctx context.Context) (*cache.CleanupResult, error)
}

type Handler struct {
	Sync  SyncService
	Cache CacheService
}

func NewHandler(sync SyncService, cache CacheService) *Handler {
	return &Handler{Sync: sync, Cache: cache}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync-comic", h.syncComic)
	rg.POST("/cache-chapter", h.cacheChapter)
	rg.POST("/cleanup-cache", h.cleanupCache)
}

type syncReq struct {
	SourceCode string `json:"sourceCode"`
	SourceURL  string `json:"sourceUrl"`
	KomikID    string `json:"komikId"`
}

func (h *Handler) syncComic(c *gin.Context) {
	var req syncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.SourceCode = strings.TrimSpace(req.SourceCode)
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if req.SourceCode == "" || req.SourceURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceCode and sourceUrl required"})
		return
	}

	result, err := h.Sync.SyncComic(c.Request.Context(), req.SourceCode, req.SourceURL, strings.TrimSpace(req.KomikID))
	if err != nil {
		h.writeError(c, err, "source not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"komikId":       result.KomikID,
		"chaptersCount": result.Chapters,
	})
}

type cacheReq struct {
	ChapterID string `json:"chapterId"`
}

func (h *Handler) cacheChapter(c *gin.Context) {
	var req cacheReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.ChapterID = strings.TrimSpace(req.ChapterID)
	if req.ChapterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chapterId required"})
		return
	}

	result, err := h.Cache.CacheChapter(c.Request.Context(), req.ChapterID)
	if err != nil {
		h.writeError(c, err, "chapter not found")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) cleanupCache(c *gin.Context) {
	result, err := h.Cache.Cleanup(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "cleanup complete",
		"deletedFiles": result.DeletedFiles,
		"deletedRows":  result.DeletedRows,
	})
}

// writeError maps domain errors to status codes. notFoundMsg names what
// was being looked up when store.ErrNotFound comes back.
func (h *Handler) writeError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, cache.ErrNoSourceURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, scrape.ErrNoPages), errors.Is(err, scrape.ErrNoChapters):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
