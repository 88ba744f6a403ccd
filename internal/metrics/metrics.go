// Package metrics records per-run counters for the scrape and publish runs.
package metrics

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Fetch outcome label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder owns a private registry so every run reports only its own counts.
type Recorder struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	recordsSaved   prometheus.Counter
	addressesSaved prometheus.Counter
	published      prometheus.Counter
	optionsAdded   *prometheus.CounterVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bbw_fetch_total",
				Help: "Detail page fetches, labeled by site and outcome.",
			},
			[]string{"site", "status"},
		),
		recordsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbw_records_saved_total",
			Help: "Records appended to the record collection.",
		}),
		addressesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbw_addresses_saved_total",
			Help: "New addresses appended to the address collection.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbw_entries_published_total",
			Help: "Entries created in the external database.",
		}),
		optionsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bbw_schema_options_added_total",
				Help: "Categorical options added to the external schema, labeled by property.",
			},
			[]string{"property"},
		),
	}
	reg.MustRegister(r.fetches, r.recordsSaved, r.addressesSaved, r.published, r.optionsAdded)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveFetch counts one fetch outcome for address.
func (r *Recorder) ObserveFetch(address string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	r.fetches.WithLabelValues(SanitizeSite(address), status).Inc()
}

// ObserveRecordsSaved counts records written to disk.
func (r *Recorder) ObserveRecordsSaved(n int) {
	if n > 0 {
		r.recordsSaved.Add(float64(n))
	}
}

// ObserveAddressesSaved counts addresses newly stored.
func (r *Recorder) ObserveAddressesSaved(n int) {
	if n > 0 {
		r.addressesSaved.Add(float64(n))
	}
}

// ObserveOptionsAdded counts options appended to a schema property.
func (r *Recorder) ObserveOptionsAdded(property string, count int) {
	if count > 0 {
		r.optionsAdded.WithLabelValues(property).Add(float64(count))
	}
}

// ObservePublished counts one created entry.
func (r *Recorder) ObservePublished() {
	r.published.Inc()
}

// Push sends the registry to a Pushgateway, grouped by run ID.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job, runID string) error {
	pusher := push.New(gatewayURL, job).Gatherer(r.registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
