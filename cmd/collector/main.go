// Package main wires together the interactive scrape run.
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

	"github.com/JakeFAU/bbw-directory/internal/app"
	"github.com/JakeFAU/bbw-directory/internal/collector"
	"github.com/JakeFAU/bbw-directory/internal/config"
	"github.com/JakeFAU/bbw-directory/internal/directory"
	"github.com/JakeFAU/bbw-directory/internal/dispatcher"
	"github.com/JakeFAU/bbw-directory/internal/extract"
	collyfetcher "github.com/JakeFAU/bbw-directory/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/bbw-directory/internal/fetcher/headless"
	"github.com/JakeFAU/bbw-directory/internal/id/uuid"
	"github.com/JakeFAU/bbw-directory/internal/logging"
	"github.com/JakeFAU/bbw-directory/internal/metrics"
	"github.com/JakeFAU/bbw-directory/internal/storage/jsonfile"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env failed: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New("collector", cfg.Logging.Development)
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
		logger.Error("scrape run failed", zap.Error(err))
	}
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, runID string, logger *zap.Logger) error {
	fetcher, closeFetcher := buildFetcher(cfg, logger)
	defer closeFetcher()

	rec := metrics.New()
	a := app.New(app.Deps{
		Addresses: jsonfile.NewAddressStore(cfg.Storage.AddressesPath, logger.Named("addresses")),
		Records:   jsonfile.NewRecordStore(cfg.Storage.RecordsPath, logger.Named("records")),
		Prompter:  collector.New(os.Stdin, os.Stdout, logger.Named("prompt")),
		Scraper: dispatcher.New(
			fetcher,
			extract.New(extract.DefaultSelectors()),
			rec,
			logger.Named("dispatcher"),
		).WithHeaders(cfg.RequestHeaders()),
		Recorder: rec,
		Logger:   logger,
	})

	runErr := a.Run(ctx)
	pushMetrics(cfg, rec, runID, logger)
	return runErr
}

// buildFetcher prefers the headless fetcher when configured and falls back to
// plain HTTP if the browser cannot be prepared.
func buildFetcher(cfg config.Config, logger *zap.Logger) (directory.Fetcher, func()) {
	plain := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	if !cfg.Fetch.Headless {
		return plain, func() {}
	}

	headless, err := headlessfetcher.New(headlessfetcher.Config{
		MaxParallel:       cfg.Fetch.HeadlessMaxParallel,
		UserAgent:         cfg.Fetch.UserAgent,
		NavigationTimeout: cfg.HeadlessNavigationTimeout(),
		ReadySelector:     cfg.Fetch.HeadlessReady,
	})
	if err != nil {
		logger.Warn("headless fetcher init failed", zap.Error(err))
		return plain, func() {}
	}
	return headless, headless.Close
}

func pushMetrics(cfg config.Config, rec *metrics.Recorder, runID string, logger *zap.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := rec.Push(context.Background(), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
		logger.Warn("metrics push failed", zap.Error(err))
	}
}
