package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kbo_pickem/server/internal/metrics"
	"kbo_pickem/server/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrCrawlFailed is returned when the crawler answers but reports no usable data
var ErrCrawlFailed = errors.New("crawler returned no data")

// ErrNotConfigured is returned when no crawler URL is set
var ErrNotConfigured = errors.New("crawler is not configured")

// Client calls the external KBO game crawler
type Client struct {
	url         string
	httpClient  *http.Client
	rateLimiter chan struct{} // Concurrency semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a crawler client. An empty url yields a client whose calls fail
// with ErrNotConfigured.
func NewClient(url string, timeout time.Duration) *Client {
	// At most 4 crawls in flight; each one scrapes a full day of games
	rateLimiter := make(chan struct{}, 4)
	for i := 0; i < cap(rateLimiter); i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		url:         url,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Configured reports whether the client has a crawler URL
func (c *Client) Configured() bool {
	return c.url != ""
}

type crawlRequest struct {
	Date string `json:"date"`
}

// FetchGames asks the crawler for every game of date (YYYY-MM-DD)
func (c *Client) FetchGames(ctx context.Context, date string) ([]models.CrawledMatch, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	body, err := c.post(ctx, crawlRequest{Date: date})
	if err != nil {
		metrics.RecordCrawlerCall("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to crawl games for %s: %w", date, err)
	}

	var resp models.CrawlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.RecordCrawlerCall("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to unmarshal crawl response: %w", err)
	}

	if !resp.Success {
		metrics.RecordCrawlerCall("error", time.Since(start).Seconds())
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrCrawlFailed, resp.Error)
		}
		return nil, ErrCrawlFailed
	}

	metrics.RecordCrawlerCall("success", time.Since(start).Seconds())
	log.Info().
		Str("date", date).
		Int("matches", len(resp.Data)).
		Dur("took", time.Since(start)).
		Msg("Crawled games")

	return resp.Data, nil
}

// post sends payload as JSON with retry logic and rate limiting
func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	// Rate limiting: acquire semaphore for the whole call including retries
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", c.url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying crawler request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retry, err := c.do(ctx, reqBody, attempt)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	return nil, lastErr
}

// do performs one attempt; retry reports whether a failure is worth another attempt
func (c *Client) do(ctx context.Context, reqBody []byte, attempt int) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "kbo-pickem/1.0")

	log.Debug().
		Str("url", c.url).
		Int("attempt", attempt+1).
		Msg("Making crawler request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Retry on network errors unless the caller gave up
		return nil, ctx.Err() == nil, fmt.Errorf("crawler request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("url", c.url).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Msg("Received retryable error, will retry")
		return nil, true, fmt.Errorf("crawler returned retryable status %d: %s", resp.StatusCode, string(body))

	default:
		return nil, false, fmt.Errorf("crawler returned status %d: %s", resp.StatusCode, string(body))
	}
}
