package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// defaultPageSize is the per_page parameter sent to paginated endpoints.
const defaultPageSize = 250

// pageEnvelope mirrors the upstream paged collection shape.
type pageEnvelope struct {
	Data []json.RawMessage `json:"data"`
	Meta struct {
		Total    int `json:"total"`
		LastPage int `json:"last_page"`
	} `json:"meta"`
}

// Client aggregates the upstream API: single fetches through Fetcher and
// multi-page collections through List.
type Client struct {
	fetcher  *Fetcher
	baseURL  string
	pageSize int
	logger   logger.Logger
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithPageSize sets the per_page parameter for paginated endpoints.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a Client rooted at baseURL.
func NewClient(fetcher *Fetcher, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		fetcher:  fetcher,
		baseURL:  baseURL,
		pageSize: defaultPageSize,
		logger:   logger.Get().Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches a single unpaginated resource relative to the base URL.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, bool) {
	return c.fetcher.Get(ctx, c.buildURL(path, query))
}

// List fetches every page of a paged collection and concatenates the
// items in ascending page order. Page 1 reveals the page count; the
// remaining pages are fetched concurrently. An interior page that fails
// or decodes badly contributes zero items, with no retry beyond the
// fetch level. The second return separates "empty collection" from a
// failed page-1 fetch: callers must not treat a failure as a durable
// empty result.
func (c *Client) List(ctx context.Context, path string, query url.Values) ([]json.RawMessage, bool) {
	first, ok := c.page(ctx, path, query, 1)
	if !ok {
		return nil, false
	}
	metrics.RecordPageFetched()
	if len(first.Data) == 0 {
		return nil, true
	}

	lastPage := first.Meta.LastPage
	if lastPage <= 1 {
		return first.Data, true
	}

	pages := make([][]json.RawMessage, lastPage+1)
	pages[1] = first.Data

	g, gctx := errgroup.WithContext(ctx)
	for p := 2; p <= lastPage; p++ {
		g.Go(func() error {
			env, ok := c.page(gctx, path, query, p)
			if !ok {
				// declared page missing; it contributes zero items
				return nil
			}
			metrics.RecordPageFetched()
			pages[p] = env.Data
			return nil
		})
	}
	_ = g.Wait()

	items := make([]json.RawMessage, 0, first.Meta.Total)
	for p := 1; p <= lastPage; p++ {
		items = append(items, pages[p]...)
	}
	return items, true
}

func (c *Client) page(ctx context.Context, path string, query url.Values, page int) (*pageEnvelope, bool) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("per_page", strconv.Itoa(c.pageSize))
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	resp, ok := c.fetcher.Get(ctx, c.buildURL(path, q))
	if !ok || !resp.OK() {
		return nil, false
	}
	var env pageEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		c.logger.Warn(ctx, "paged response malformed",
			logger.String("path", path), logger.Int("page", page), logger.Error(err))
		return nil, false
	}
	return &env, true
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
