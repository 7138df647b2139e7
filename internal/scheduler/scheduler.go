package scheduler

import (
	"context"
	"fmt"
	"time"

	"kbo_pickem/server/internal/config"
	"kbo_pickem/server/internal/metrics"
	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Jobs is the work the scheduler triggers
type Jobs interface {
	// SyncDate merges the crawler's results into the stored games of date and saves them
	SyncDate(ctx context.Context, date time.Time) (*models.AutoFillResult, error)

	// SettleDate scores the picks on the finished games of date
	SettleDate(ctx context.Context, date time.Time) (*service.SettlementReport, error)
}

// PoolStatsFunc reports acquired and idle database connections
type PoolStatsFunc func() (active, idle int32)

// Scheduler runs the background jobs:
// - auto-fill of today's games from the crawler during game hours
// - nightly settlement of yesterday's finished games
// - pool stats sampling for the connection gauges
type Scheduler struct {
	cfg       *config.Config
	jobs      Jobs
	poolStats PoolStatsFunc
	cron      *cron.Cron
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance. Cron expressions are evaluated in KST.
func NewScheduler(cfg *config.Config, jobs Jobs, poolStats PoolStatsFunc) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		jobs:      jobs,
		poolStats: poolStats,
		cron: cron.New(
			cron.WithLocation(service.KST),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
		),
		now: time.Now,
	}
}

// Run starts the jobs and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Start registers the enabled jobs and starts the cron loop and the stats ticker
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if s.cfg.EnableAutoFill {
		if _, err := s.cron.AddFunc(s.cfg.AutoFillCron, func() { s.runAutoFill(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule auto-fill: %w", err)
		}
		log.Info().Str("schedule", s.cfg.AutoFillCron).Msg("Auto-fill scheduled")
	}

	if s.cfg.EnableSettlement {
		if _, err := s.cron.AddFunc(s.cfg.SettlementCron, func() { s.runSettlement(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule settlement: %w", err)
		}
		log.Info().Str("schedule", s.cfg.SettlementCron).Msg("Settlement scheduled")
	}

	s.cron.Start()

	if s.poolStats != nil && s.cfg.PoolStatsInterval > 0 {
		go s.samplePoolStats(ctx, s.cfg.PoolStatsInterval)
		log.Info().Dur("interval", s.cfg.PoolStatsInterval).Msg("Pool stats sampling started")
	}

	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("Timed out waiting for running jobs")
	}

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) samplePoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active, idle := s.poolStats()
			metrics.UpdateDBConnectionStats(active, idle)
		}
	}
}

// runAutoFill syncs today's (KST) games with the crawler
func (s *Scheduler) runAutoFill(ctx context.Context) {
	date := service.Today(s.now())

	s.runJob("autofill", func() error {
		res, err := s.jobs.SyncDate(ctx, date)
		if err != nil {
			return err
		}
		log.Info().
			Str("date", service.FormatDate(date)).
			Int("updated", res.Updated).
			Int("added", res.Added).
			Int("unmatched", len(res.UnmatchedTeams)).
			Msg("Scheduled auto-fill complete")
		return nil
	})
}

// runSettlement settles the previous KST day
func (s *Scheduler) runSettlement(ctx context.Context) {
	date := service.Yesterday(s.now())

	s.runJob("settlement", func() error {
		report, err := s.jobs.SettleDate(ctx, date)
		if err != nil {
			return err
		}
		log.Info().
			Str("date", report.Date).
			Int("settled", report.Settled).
			Msg("Scheduled settlement complete")
		return nil
	})
}

func (s *Scheduler) runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("job", name).Dur("duration", duration).Msg("Scheduled job failed")
		metrics.RecordJob(name, "error", duration.Seconds(), float64(s.now().Unix()))
		metrics.RecordError("scheduler", name)
		return
	}
	metrics.RecordJob(name, "success", duration.Seconds(), float64(s.now().Unix()))
}

// cronLogger routes cron's own messages to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
