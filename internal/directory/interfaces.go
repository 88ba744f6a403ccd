package directory

import (
	"context"
	"net/http"
	"time"
)

// Fetcher retrieves one page and returns its body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor turns a fetched page body into a Record.
type Extractor interface {
	ExtractBytes(body []byte) (Record, error)
}

// FetchRequest captures everything needed to fetch an address.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}
