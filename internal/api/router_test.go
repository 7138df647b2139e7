package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kbo_pickem/server/internal/auth"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminPassword = "mySecurePassword123"

var (
	// 12:00 KST on match day
	testNow         = time.Date(2025, 7, 24, 3, 0, 0, 0, time.UTC)
	leaderboardFrom = time.Date(2025, 7, 24, 0, 0, 0, 0, time.UTC)
	leaderboardTo   = time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)
)

type testServer struct {
	predictions *MockPredictionService
	admin       *MockAdminService
	crawler     *MockCrawler
	health      *MockHealthChecker
	gate        *auth.Gate
	handler     http.Handler
}

func newTestServer(t *testing.T, configure ...func(*Options)) *testServer {
	t.Helper()

	ts := &testServer{
		predictions: &MockPredictionService{now: testNow},
		admin:       new(MockAdminService),
		crawler:     new(MockCrawler),
		health:      new(MockHealthChecker),
		gate:        auth.NewGate(auth.HashPassword(adminPassword), "test-secret", time.Hour),
	}
	opts := Options{
		Predictions:     ts.predictions,
		Admin:           ts.admin,
		Crawler:         ts.crawler,
		Gate:            ts.gate,
		Health:          ts.health,
		LeaderboardFrom: leaderboardFrom,
		LeaderboardTo:   leaderboardTo,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	ts.handler = NewRouter(opts)

	t.Cleanup(func() {
		ts.predictions.AssertExpectations(t)
		ts.admin.AssertExpectations(t)
		ts.crawler.AssertExpectations(t)
	})
	return ts
}

func (ts *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	session, err := ts.gate.Login(adminPassword)
	require.NoError(t, err)
	return session.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	ts.health.On("Health", mock.Anything).Return(nil).Once()
	rec := ts.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	ts.health.On("Health", mock.Anything).Return(errors.New("pool closed")).Once()
	rec = ts.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
