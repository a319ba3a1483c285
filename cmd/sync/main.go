// Command sync runs one comic sync from the command line, for cron jobs
// and manual backfills.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"komikru/internal/comic"
	"komikru/internal/fetch"
	"komikru/internal/scrape"
	"komikru/internal/store"
	"komikru/pkg/database"
	"komikru/pkg/utils"
)

func main() {
	configPath := flag.String("config", os.Getenv("KOMIKRU_CONFIG"), "path to yaml config (optional)")
	sourceCode := flag.String("source", "", "source code, e.g. MANHWALIST")
	sourceURL := flag.String("url", "", "comic detail page URL")
	komikID := flag.String("komik", "", "existing comic id to update (optional)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall sync timeout")
	flag.Parse()

	if *sourceCode == "" || *sourceURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := store.New(db)
	dispatcher := scrape.NewDispatcher(fetch.NewClient(cfg.FetchTimeout()), scrape.DefaultRegistry())
	syncer := comic.NewSyncer(repo, dispatcher)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := syncer.SyncComic(ctx, *sourceCode, *sourceURL, *komikID)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	log.Printf("synced comic %s: %d chapters", result.KomikID, result.Chapters)
}
