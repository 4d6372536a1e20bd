package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/vanshika/bnpltrace/backend/internal/app"
	"github.com/vanshika/bnpltrace/backend/internal/config"
	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/logging"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
	"github.com/vanshika/bnpltrace/backend/internal/service"
)

var errMissingDataset = errors.New("no mailbox files found")

// ingest bulk-loads every mailbox file in a directory, one user per file,
// into the configured store.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// run returns the process exit code so that deferred cleanup always happens
// before main exits.
func run(ctx context.Context, args []string) int {
	flags := flag.NewFlagSet("ingest", flag.ContinueOnError)
	var (
		datasetDir = flags.String("dataset-dir", "./testdata/mailbox", "Directory containing *.yaml mailbox files")
		pattern    = flags.String("pattern", "*.yaml", "Glob of mailbox files inside dataset-dir")
		workers    = flags.Int("workers", 0, "Extraction workers per mailbox (overrides sync.workers)")
		maxResults = flags.Int("max-results", 0, "Messages read per mailbox (overrides sync.max_results)")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *workers > 0 {
		cfg.Sync.Workers = *workers
	}
	if *maxResults > 0 {
		cfg.Sync.MaxResults = *maxResults
	}

	logger := logging.Component(logging.New(cfg.Logging), "ingest")

	files, err := resolveMailboxes(*datasetDir, *pattern)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		return 1
	}

	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	svc := app.NewServices(st, cfg.Sync, logger).Sync

	start := time.Now()
	logger.Info("ingesting mailboxes", "count", len(files), "workers", cfg.Sync.Workers)

	var inserted, duplicates, failed int
	for _, path := range files {
		report, err := ingestMailbox(ctx, svc, path, cfg.Sync.MaxResults)
		if err != nil {
			logger.Error("mailbox ingestion failed", "error", err, "path", path)
			return 1
		}
		inserted += report.Inserted
		duplicates += report.Duplicates
		failed += report.Failed()
		logger.Info("mailbox ingested",
			slog.String("path", path),
			slog.String("user", report.UserEmail),
			slog.Int("inserted", report.Inserted),
			slog.Int("duplicates", report.Duplicates),
			slog.Int("failed", report.Failed()),
		)
		if taskErr := service.ReportError(report); taskErr != nil {
			logger.Warn("messages failed", "path", path, "error", taskErr)
		}
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"mailboxes", len(files),
		"inserted", inserted,
		"duplicates", duplicates,
		"failed", failed,
	)
	if failed > 0 {
		return 1
	}
	return 0
}

func ingestMailbox(ctx context.Context, svc *service.SyncService, path string, maxResults int) (domain.SyncReport, error) {
	return svc.SyncFromSource(ctx, mailbox.NewFile(path), maxResults)
}

func resolveMailboxes(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", errMissingDataset, filepath.Join(dir, pattern))
	}
	sort.Strings(files)
	return files, nil
}
