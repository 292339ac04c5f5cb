// Package fetch retrieves feed documents over HTTP. The Fetcher
// interface lets tests and offline runs swap the live client for a stub
// chosen once at process start.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is the outcome of one fetch. FinalURL is the URL after any
// redirects, which may differ from the requested one.
type Result struct {
	StatusCode int
	Body       []byte
	FinalURL   string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
}

// Client is the live HTTP fetcher.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

var _ Fetcher = (*Client)(nil)

func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 5,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch retrieves url, following redirects. Transport failures return an
// error; HTTP error statuses are reported through Result for the caller
// to judge.
func (c *Client) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}
