package upstream

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default fetcher configuration constants.
const (
	defaultRetryCount  = 4
	defaultHTTPTimeout = 30 * time.Second
)

// Response is a decoded upstream reply. HTTP error statuses are carried
// through to the caller; only transport failures are retried.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the response carries a usable payload.
func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// Fetcher performs single GETs against the upstream API with a bounded
// retry count on transport failure. Exhausting the retry budget resolves
// to absent, never an error: callers must treat "no data" and "exhausted
// retries" identically.
type Fetcher struct {
	client  *http.Client
	token   string
	retries int
	logger  logger.Logger
}

// FetcherOption applies a configuration option to the Fetcher.
type FetcherOption func(*Fetcher)

// WithRetryCount sets the number of additional attempts after a failure.
func WithRetryCount(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewFetcher creates a Fetcher authorizing with the given bearer token.
func NewFetcher(token string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		token:   token,
		retries: defaultRetryCount,
		logger:  logger.Get().Named("fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get issues one GET against url, retrying transport failures up to the
// configured count. The total attempt budget is retries+1.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, bool) {
	attempts := f.retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.RecordUpstreamRetry()
			f.logger.Warn(ctx, "request failed, refetching",
				logger.String("url", url),
				logger.Int("attempt", attempt),
			)
		}
		resp, ok := f.getOnce(ctx, url)
		if ok {
			return resp, true
		}
		if ctx.Err() != nil {
			break
		}
	}
	metrics.RecordUpstreamFailure()
	f.logger.Warn(ctx, "retry budget exhausted", logger.String("url", url))
	return nil, false
}

func (f *Fetcher) getOnce(ctx context.Context, url string) (*Response, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordUpstreamRequest()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return &Response{Status: resp.StatusCode, Body: body}, true
}
