package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"kbo_pickem/server/internal/config"
	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJobs struct {
	mock.Mock
}

func (m *MockJobs) SyncDate(ctx context.Context, date time.Time) (*models.AutoFillResult, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutoFillResult), args.Error(1)
}

func (m *MockJobs) SettleDate(ctx context.Context, date time.Time) (*service.SettlementReport, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettlementReport), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		EnableAutoFill:    true,
		AutoFillCron:      "*/10 17-23 * * *",
		EnableSettlement:  true,
		SettlementCron:    "30 0 * * *",
		PoolStatsInterval: 10 * time.Millisecond,
	}
}

func TestScheduler_JobsUseKSTDates(t *testing.T) {
	ctx := context.Background()
	jobs := new(MockJobs)
	s := NewScheduler(testConfig(), jobs, nil)

	// 00:30 KST on the 25th is 15:30 UTC on the 24th
	s.now = func() time.Time { return time.Date(2025, 7, 24, 15, 30, 0, 0, time.UTC) }

	today := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 7, 24, 0, 0, 0, 0, time.UTC)

	jobs.On("SyncDate", ctx, today).Return(&models.AutoFillResult{Updated: 5}, nil)
	jobs.On("SettleDate", ctx, yesterday).Return(&service.SettlementReport{Date: "2025-07-24", Settled: 12}, nil)

	s.runAutoFill(ctx)
	s.runSettlement(ctx)

	jobs.AssertExpectations(t)
}

func TestScheduler_JobFailureIsContained(t *testing.T) {
	ctx := context.Background()
	jobs := new(MockJobs)
	s := NewScheduler(testConfig(), jobs, nil)

	jobs.On("SyncDate", ctx, mock.Anything).Return(nil, errors.New("crawler down"))

	assert.NotPanics(t, func() { s.runAutoFill(ctx) })
	jobs.AssertExpectations(t)
}

func TestScheduler_InvalidCron(t *testing.T) {
	cfg := testConfig()
	cfg.AutoFillCron = "every ten minutes"

	s := NewScheduler(cfg, new(MockJobs), nil)
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auto-fill")
}

func TestScheduler_RunSamplesPoolStatsUntilCancelled(t *testing.T) {
	var samples int32
	stats := func() (int32, int32) {
		atomic.AddInt32(&samples, 1)
		return 3, 2
	}

	cfg := testConfig()
	cfg.EnableAutoFill = false
	cfg.EnableSettlement = false
	s := NewScheduler(cfg, new(MockJobs), stats)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&samples) >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
