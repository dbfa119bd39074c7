package bgg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gamecatalog/backend/internal/logging"
	"gamecatalog/backend/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
)

const maxDocumentBytes = 5 << 20

// Fetcher retrieves the raw "thing" document for a BoardGameGeek ID.
type Fetcher interface {
	FetchThing(ctx context.Context, id string) (string, error)
}

// Client talks to the BoardGameGeek XML API v2.
//
// Requests are not retried. A circuit breaker makes calls fail fast while the
// API keeps erroring, so an outage does not tie up handler goroutines.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[string]
}

// NewClient creates a client for the thing endpoint at baseURL, e.g.
// https://boardgamegeek.com/xmlapi2/thing. token may be empty.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "bgg-xmlapi",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.BGGCircuitState.Set(stateValue(to))
		},
	})

	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// FetchThing returns the document body for id, including statistics
// (the average weight only appears with stats=1).
func (c *Client) FetchThing(ctx context.Context, id string) (string, error) {
	return c.cb.Execute(func() (string, error) {
		return c.fetch(ctx, id)
	})
}

func (c *Client) fetch(ctx context.Context, id string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("bad api url: %w", err)
	}
	q := u.Query()
	q.Set("id", id)
	q.Set("stats", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BGGFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream responded %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
