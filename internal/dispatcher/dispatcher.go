// Package dispatcher fans fetch-and-extract work out over a list of addresses.
package dispatcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

// Observer is notified about the outcome of each address.
type Observer interface {
	ObserveFetch(address string, err error)
}

// Dispatcher runs one fetch-and-extract task per address.
type Dispatcher struct {
	fetcher   directory.Fetcher
	extractor directory.Extractor
	observer  Observer
	headers   http.Header
	logger    *zap.Logger
}

// New creates a Dispatcher. observer may be nil.
func New(fetcher directory.Fetcher, extractor directory.Extractor, observer Observer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		fetcher:   fetcher,
		extractor: extractor,
		observer:  observer,
		logger:    logger,
	}
}

// WithHeaders sets request headers sent with every fetch.
func (d *Dispatcher) WithHeaders(headers http.Header) *Dispatcher {
	d.headers = headers.Clone()
	return d
}

// RunAll dispatches every address at once and waits for all of them. Records
// are returned in completion order. A failing address is logged and contributes
// nothing; it never affects the others. Once ctx is canceled, addresses that
// have not started are skipped and in-flight fetches are abandoned.
func (d *Dispatcher) RunAll(ctx context.Context, addresses []directory.Address) []directory.Record {
	var (
		mu      sync.Mutex
		records = make([]directory.Record, 0, len(addresses))
	)
	g, gctx := errgroup.WithContext(ctx)

	for _, address := range addresses {
		g.Go(func() error {
			// Only cancellation is returned; it stops the remaining tasks.
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := d.scrape(gctx, address)
			if d.observer != nil {
				d.observer.ObserveFetch(address, err)
			}
			if err != nil {
				d.logger.Error("scrape failed", zap.String("address", address), zap.Error(err))
				return nil
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			d.logger.Debug("scraped page", zap.String("address", address), zap.String("title", rec.Title))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.logger.Warn("scrape interrupted", zap.Int("completed", len(records)), zap.Error(err))
	}

	return records
}

func (d *Dispatcher) scrape(ctx context.Context, address directory.Address) (directory.Record, error) {
	resp, err := d.fetcher.Fetch(ctx, directory.FetchRequest{URL: address, Headers: d.headers.Clone()})
	if err != nil {
		return directory.Record{}, fmt.Errorf("fetch %s: %w", address, err)
	}
	rec, err := d.extractor.ExtractBytes(resp.Body)
	if err != nil {
		return directory.Record{}, fmt.Errorf("extract %s: %w", address, err)
	}
	return rec, nil
}
