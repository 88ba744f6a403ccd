// Package main hosts the interactive scrape entrypoint.
//
// Flow:
//   - Startup: an optional .env file is loaded, Viper populates config from config.yaml and BBW_* variables, and
//     zap builds a logger whose lines all carry the run_id of this invocation.
//   - Prompt loop: stored addresses from storage.addresses_path seed the pending list; the operator adds more over
//     stdin until answering anything other than "y".
//   - Fetch pipeline: every pending address is fetched at once through the Colly fetcher (or the chromedp fetcher
//     when fetch.headless is set), parsed with goquery and normalized into a record. Failed addresses are logged and
//     skipped.
//   - Persistence: new addresses are merged into the address file without duplicates; records are appended to
//     storage.records_path. Write failures are logged and do not change the exit code.
//   - Metrics: when metrics.pushgateway_url is set the run's counters are pushed once at the end.
//
// Run locally: go run ./cmd/collector (no flags).
package main
