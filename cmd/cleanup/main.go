// Command cleanup removes one batch of expired chapter page caches.
// Run it on a schedule; each run handles at most one batch.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"komikru/internal/cache"
	"komikru/internal/objstore"
	"komikru/internal/store"
	"komikru/pkg/database"
	"komikru/pkg/utils"
)

func main() {
	configPath := flag.String("config", os.Getenv("KOMIKRU_CONFIG"), "path to yaml config (optional)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall cleanup timeout")
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

	manager := cache.NewManager(store.New(db), nil, objects)
	manager.TTL = cfg.CacheTTL()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := manager.Cleanup(ctx)
	if err != nil {
		log.Fatalf("cleanup failed: %v", err)
	}
	log.Printf("cleanup complete: %d files, %d rows", result.DeletedFiles, result.DeletedRows)
}
