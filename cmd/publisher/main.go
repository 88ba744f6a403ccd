// Package main hosts the publisher entrypoint, which pushes every stored record
// into the configured Notion database. With publish.dry_run set it publishes
// into an in-memory database instead and only logs what would have been created.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JakeFAU/bbw-directory/internal/config"
	"github.com/JakeFAU/bbw-directory/internal/id/uuid"
	"github.com/JakeFAU/bbw-directory/internal/logging"
	"github.com/JakeFAU/bbw-directory/internal/metrics"
	"github.com/JakeFAU/bbw-directory/internal/notion"
	"github.com/JakeFAU/bbw-directory/internal/publisher"
	"github.com/JakeFAU/bbw-directory/internal/publisher/memory"
	"github.com/JakeFAU/bbw-directory/internal/storage/jsonfile"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env failed: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err == nil {
		err = cfg.ValidatePublish()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New("publisher", cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	runID := uuid.New().RunID()
	logger = logging.WithRunID(logger, runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, runID, logger)
	stop()
	if err != nil {
		logger.Error("publish run failed", zap.Error(err))
	}
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, runID string, logger *zap.Logger) error {
	var (
		service publisher.Service
		dryRun  *memory.Service
	)
	if cfg.Publish.DryRun {
		dryRun = memory.NewWithDefaultSchema(cfg.Notion.Properties)
		service = dryRun
		logger.Info("dry run: publishing into memory")
	} else {
		client, err := notion.New(notion.Config{
			APIKey:     cfg.Notion.APIKey,
			DatabaseID: cfg.Notion.DatabaseID,
			Properties: cfg.Notion.Properties,
		})
		if err != nil {
			return fmt.Errorf("init notion client: %w", err)
		}
		service = client
	}

	rec := metrics.New()
	p := publisher.New(
		jsonfile.NewRecordStore(cfg.Storage.RecordsPath, logger.Named("records")),
		service,
		cfg.Notion.Properties,
		rec,
		logger.Named("publisher"),
	)
	runErr := p.Run(ctx)

	if dryRun != nil {
		for _, entry := range dryRun.Entries() {
			logger.Info("would create entry",
				zap.String("title", entry.Title),
				zap.String("region", entry.Region),
				zap.Strings("specializations", entry.Specializations),
			)
		}
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if err := rec.Push(context.Background(), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
			logger.Warn("metrics push failed", zap.Error(err))
		}
	}
	return runErr
}
