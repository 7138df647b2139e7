package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"kbo_pickem/server/internal/api"
	"kbo_pickem/server/internal/config"
	"kbo_pickem/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stallingCrawler blocks until its caller gives up
type stallingCrawler struct{}

func (stallingCrawler) FetchGames(ctx context.Context, _ string) ([]models.CrawledMatch, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestNewHTTPServer_WriteTimeoutCoversRequests(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	cfg, err := config.Load()
	require.NoError(t, err)

	srv := newHTTPServer(cfg, http.NotFoundHandler())
	assert.Greater(t, srv.WriteTimeout, cfg.RequestTimeout)
	assert.Greater(t, cfg.RequestTimeout, cfg.CrawlBudget)
}

func TestNewHTTPServer_SlowCrawlGetsErrorResponse(t *testing.T) {
	cfg := &config.Config{
		RequestTimeout: 200 * time.Millisecond,
		CrawlBudget:    100 * time.Millisecond,
	}
	router := api.NewRouter(api.Options{
		Crawler:        stallingCrawler{},
		RequestTimeout: cfg.RequestTimeout,
		CrawlBudget:    cfg.CrawlBudget,
	})

	srv := newHTTPServer(cfg, router)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/crawl-games", "application/json",
		strings.NewReader(`{"date":"2025-07-24"}`))
	require.NoError(t, err, "Client should receive a response, not a dropped connection")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Failed to fetch game data", body["error"])
}
