// Package app wires the stores, prompt loop and dispatcher into one scrape run.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

// AddressStore persists the operator's address list.
type AddressStore interface {
	Load(ctx context.Context) ([]directory.Address, error)
	Save(ctx context.Context, items []directory.Address) (int, error)
}

// RecordStore persists extracted records.
type RecordStore interface {
	Save(ctx context.Context, items []directory.Record) (int, error)
}

// Prompter asks the operator for more addresses.
type Prompter interface {
	Collect(seed []directory.Address) ([]directory.Address, error)
}

// Scraper fetches and extracts every address.
type Scraper interface {
	RunAll(ctx context.Context, addresses []directory.Address) []directory.Record
}

// Recorder receives storage counts. It may be nil.
type Recorder interface {
	ObserveAddressesSaved(n int)
	ObserveRecordsSaved(n int)
}

// Deps bundles the collaborators of a scrape run.
type Deps struct {
	Addresses AddressStore
	Records   RecordStore
	Prompter  Prompter
	Scraper   Scraper
	Recorder  Recorder
	Logger    *zap.Logger
}

// App holds the collaborators for one scrape run. All run state lives inside Run.
type App struct {
	addresses AddressStore
	records   RecordStore
	prompter  Prompter
	scraper   Scraper
	recorder  Recorder
	logger    *zap.Logger
}

// New creates an App from deps.
func New(deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		addresses: deps.Addresses,
		records:   deps.Records,
		prompter:  deps.Prompter,
		scraper:   deps.Scraper,
		recorder:  deps.Recorder,
		logger:    logger,
	}
}

// Run loads the stored addresses, lets the operator extend them, stores the
// result, scrapes every pending address and appends the records. Storage
// failures are logged and do not stop the run; only a failing prompt does.
func (a *App) Run(ctx context.Context) error {
	stored, err := a.addresses.Load(ctx)
	if err != nil {
		a.logger.Error("load addresses failed", zap.Error(err))
		stored = nil
	}
	a.logger.Info("loaded stored addresses", zap.Int("count", len(stored)))

	pending, err := a.prompter.Collect(stored)
	if err != nil {
		return fmt.Errorf("collect addresses: %w", err)
	}
	if len(pending) == 0 {
		a.logger.Info("no addresses to scrape")
		return nil
	}

	added, err := a.addresses.Save(ctx, pending)
	if err != nil {
		a.logger.Error("save addresses failed", zap.Error(err))
	} else if a.recorder != nil {
		a.recorder.ObserveAddressesSaved(added)
	}

	records := a.scraper.RunAll(ctx, pending)
	a.logger.Info("all pages done", zap.Int("addresses", len(pending)), zap.Int("records", len(records)))

	saved, err := a.records.Save(ctx, records)
	if err != nil {
		a.logger.Error("save records failed", zap.Error(err))
		return nil
	}
	if a.recorder != nil {
		a.recorder.ObserveRecordsSaved(saved)
	}
	return nil
}
