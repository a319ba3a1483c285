package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"komikru/internal/cache"
	"komikru/internal/comic"
	"komikru/internal/fetch"
	"komikru/internal/objstore"
	"komikru/internal/scrape"
	"komikru/internal/store"
	"komikru/internal/webapi"
	"komikru/pkg/database"
	"komikru/pkg/utils"
)

func main() {
	configPath := flag.String("config", os.Getenv("KOMIKRU_CONFIG"), "path to yaml config (optional)")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	objects, err := objstore.NewDisk(cfg.CacheDir, cfg.CacheBaseURL)
	if err != nil {
		log.Fatalf("cache dir: %v", err)
	}

	repo := store.New(db)
	fetcher := fetch.NewClient(cfg.FetchTimeout())
	dispatcher := scrape.NewDispatcher(fetcher, scrape.DefaultRegistry())

	manager := cache.NewManager(repo, dispatcher, objects)
	manager.TTL = cfg.CacheTTL()
	manager.Workers = cfg.CacheWorkers

	syncer := comic.NewSyncer(repo, dispatcher)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	// cached page images are plain files under the cache dir
	router.Static("/cache", cfg.CacheDir)

	handler := webapi.NewHandler(syncer, manager)
	handler.RegisterRoutes(router.Group("/"))

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
