// Package headless fetches detail pages through a headless Chrome instance for
// directories that render their content with JavaScript.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

const (
	defaultNavigationTimeout = 45 * time.Second
	defaultReadySelector     = "body"
)

// ErrUnexpectedStatus is returned when the detail page answered with a non-success status.
var ErrUnexpectedStatus = errors.New("unexpected document status")

// Config controls the behavior of the headless fetcher.
type Config struct {
	// MaxParallel caps open tabs; zero leaves them unbounded.
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
	// ReadySelector is the element whose presence marks the page as rendered.
	ReadySelector string
}

// Fetcher implements directory.Fetcher using chromedp.
type Fetcher struct {
	cfg     Config
	tabs    tabPool
	browser context.Context
	shut    context.CancelFunc
}

// New creates a headless fetcher. The browser itself starts lazily on the first fetch.
func New(cfg Config) (*Fetcher, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	if cfg.ReadySelector == "" {
		cfg.ReadySelector = defaultReadySelector
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	browser, shut := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:     cfg,
		tabs:    newTabPool(cfg.MaxParallel),
		browser: browser,
		shut:    shut,
	}, nil
}

// Close shuts the browser down.
func (f *Fetcher) Close() {
	f.shut()
}

// Fetch opens the address in a new tab, waits for the ready selector and
// returns the rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, request directory.FetchRequest) (directory.FetchResponse, error) {
	if err := f.tabs.take(ctx); err != nil {
		return directory.FetchResponse{}, err
	}
	defer f.tabs.give()

	tab, closeTab := chromedp.NewContext(f.browser)
	defer closeTab()
	tab, expire := context.WithTimeout(tab, f.cfg.NavigationTimeout)
	defer expire()
	defer context.AfterFunc(ctx, expire)()

	doc := &mainDocument{}
	chromedp.ListenTarget(tab, doc.observe)

	start := time.Now()
	var html, location string
	err := chromedp.Run(tab,
		f.setup(request.Headers),
		chromedp.Navigate(request.URL),
		chromedp.WaitVisible(f.cfg.ReadySelector, chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return directory.FetchResponse{}, fmt.Errorf("render %s: %w", request.URL, err)
	}

	resp := doc.response(request.URL, location)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return directory.FetchResponse{}, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, resp.URL)
	}
	resp.Body = []byte(html)
	resp.Duration = time.Since(start)
	return resp, nil
}

func (f *Fetcher) setup(headers http.Header) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if extra := toNetworkHeaders(headers); len(extra) > 0 {
			if err := network.SetExtraHTTPHeaders(extra).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

// tabPool bounds the number of concurrently open tabs. A nil pool is unbounded.
type tabPool chan struct{}

func newTabPool(size int) tabPool {
	if size <= 0 {
		return nil
	}
	return make(tabPool, size)
}

func (p tabPool) take(ctx context.Context) error {
	if p == nil {
		return nil
	}
	select {
	case p <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for a browser tab: %w", ctx.Err())
	}
}

func (p tabPool) give() {
	if p != nil {
		<-p
	}
}

// mainDocument remembers the response of the top-level document; images,
// scripts and XHRs are ignored.
type mainDocument struct {
	mu      sync.Mutex
	seen    bool
	status  int
	url     string
	headers http.Header
}

func (d *mainDocument) observe(ev any) {
	event, ok := ev.(*network.EventResponseReceived)
	if !ok || event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	headers := http.Header{}
	for key, value := range event.Response.Headers {
		if values, ok := value.([]any); ok {
			for _, v := range values {
				headers.Add(key, fmt.Sprint(v))
			}
			continue
		}
		headers.Add(key, fmt.Sprint(value))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = true
	d.status = int(event.Response.Status)
	d.url = event.Response.URL
	d.headers = headers
}

// response reports what was observed. Without an observed document the page
// counts as a 200 served from the browser location, or the requested URL.
func (d *mainDocument) response(requested, location string) directory.FetchResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp := directory.FetchResponse{
		URL:          requested,
		StatusCode:   http.StatusOK,
		Headers:      http.Header{},
		UsedHeadless: true,
	}
	if location != "" {
		resp.URL = location
	}
	if d.seen {
		resp.StatusCode = d.status
		resp.Headers = d.headers.Clone()
		if d.url != "" {
			resp.URL = d.url
		}
	}
	return resp
}

func toNetworkHeaders(h http.Header) network.Headers {
	out := network.Headers{}
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		// Chrome takes one comma-joined value per header.
		joined := values[0]
		for _, v := range values[1:] {
			joined += ", " + v
		}
		out[key] = joined
	}
	return out
}
