package main

import (
	"context"
	"flag"
	"log"

	"tourism-chat-be/internal/config"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/internal/service"
	"tourism-chat-be/pkg/cache"
	"tourism-chat-be/pkg/database"

	"github.com/fatih/color"
)

// Scans every chat session for duplicated messages (same content, same
// sender, same second) and reports them. Pass --fix to persist the
// deduplicated message lists; without it this is a dry run.
func main() {
	fix := flag.Bool("fix", false, "persist deduplicated messages instead of only reporting")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	// No Redis here; the cache degrades to a no-op with a nil client.
	dedup := service.NewDedupService(uowFactory, cache.NewRedisShareCache(nil, 0), sysLogger)

	ctx := context.Background()

	run := dedup.Analyze
	if *fix {
		run = dedup.Cleanup
	}

	reports, err := run(ctx)
	if err != nil {
		log.Fatalf("Dedup scan failed: %v", err)
	}

	if len(reports) == 0 {
		color.Green("No duplicate messages found.")
		return
	}

	totalRemoved := 0
	for _, r := range reports {
		totalRemoved += r.DuplicatesRemoved
		color.Yellow("session %s: %d -> %d (%d duplicates)",
			r.SessionId, r.OriginalCount, r.FinalCount, r.DuplicatesRemoved)
	}

	if *fix {
		color.Green("Removed %d duplicate messages across %d sessions.", totalRemoved, len(reports))
	} else {
		color.Cyan("Found %d duplicate messages across %d sessions. Re-run with --fix to remove them.", totalRemoved, len(reports))
	}
}
