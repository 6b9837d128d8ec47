// Package fbi provides a client for the FBI Crime Data Explorer summarized
// state endpoint.
package fbi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statemetrics/internal/fetcher"
)

const defaultBaseURL = "https://api.usa.gov/crime/fbi/cde"

// CrimeRow is one summarized record: a state, year, and offense category
// with its incident count. Population is reported on at least one row per
// state per year and omitted elsewhere.
type CrimeRow struct {
	State      string `json:"state_abbr"`
	Year       int    `json:"year"`
	Offense    string `json:"offense"`
	Count      int64  `json:"count"`
	Population *int64 `json:"population,omitempty"`
}

// Client fetches summarized crime statistics.
type Client interface {
	// Summarized performs the single authenticated request for the run and
	// returns all states' rows for the month window [from, to], given as
	// "MM-YYYY" bounds.
	Summarized(ctx context.Context, from, to string) ([]CrimeRow, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithFetcher overrides the default HTTP fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *client) {
		c.fetcher = f
	}
}

type client struct {
	apiKey  string
	baseURL string
	fetcher fetcher.Fetcher
}

// NewClient creates a Crime Data API client. The fetch is a single attempt:
// a transport error or non-2xx status is terminal for the run.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			MaxAttempts:  1,
			RateLimiters: fetcher.DefaultRateLimiters(),
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Summarized(ctx context.Context, from, to string) ([]CrimeRow, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("API_KEY", c.apiKey)
	endpoint := fmt.Sprintf("%s/summarized/state?%s", c.baseURL, q.Encode())

	body, err := c.fetcher.Download(ctx, endpoint)
	if err != nil {
		return nil, eris.Wrap(err, "fbi: fetch summarized")
	}
	defer body.Close() //nolint:errcheck

	rows, err := fetcher.DecodeJSONArray[CrimeRow](body)
	if err != nil {
		return nil, eris.Wrap(err, "fbi: decode summarized")
	}

	zap.L().Info("fetched crime rows",
		zap.Int("rows", len(rows)),
		zap.String("from", from),
		zap.String("to", to),
	)
	return rows, nil
}
