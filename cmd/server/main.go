package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"kbo_pickem/server/internal/api"
	"kbo_pickem/server/internal/auth"
	"kbo_pickem/server/internal/cache"
	"kbo_pickem/server/internal/client"
	"kbo_pickem/server/internal/config"
	"kbo_pickem/server/internal/metrics"
	"kbo_pickem/server/internal/repository"
	"kbo_pickem/server/internal/scheduler"
	"kbo_pickem/server/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("Migration command failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	log.Info().Msg("Starting KBO pick'em server")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	c := newCache(ctx, cfg)

	crawler := client.NewClient(cfg.CrawlerURL, cfg.CrawlerTimeout)
	if !crawler.Configured() {
		log.Warn().Msg("CRAWLER_URL not set - auto-fill and crawl proxy are disabled")
	}

	gate := auth.NewGate(cfg.AdminPasswordHash, cfg.AdminSessionSecret, cfg.AdminSessionTTL)
	if !cfg.AdminEnabled() {
		log.Warn().Msg("Admin password not configured - admin routes will answer 503")
	}

	predictions := service.NewPredictionService(db.Users, db.Games, db.Predictions, db.Scores, c, cfg.CacheTTLLeaderboard)
	admin := service.NewAdminService(db.Teams, db.Games, db.Predictions, db.Scores, crawler, c, cfg.CacheTTLTeams, cfg.SettlementPoints)

	// Validate() already checked both dates
	from, _ := service.ParseDate(cfg.LeaderboardFrom)
	to, _ := service.ParseDate(cfg.LeaderboardTo)

	router := api.NewRouter(api.Options{
		Predictions:     predictions,
		Admin:           admin,
		Crawler:         crawler,
		Gate:            gate,
		Health:          db,
		AllowedOrigins:  cfg.AllowedOrigins(),
		LeaderboardFrom: from,
		LeaderboardTo:   to,
		RequestTimeout:  cfg.RequestTimeout,
		CrawlBudget:     cfg.CrawlBudget,
	})

	srv := newHTTPServer(cfg, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.HTTPPort).Msg("Starting HTTP server")
		return serve(ctx, srv)
	})

	if cfg.EnableMetrics {
		g.Go(func() error {
			return serve(ctx, newMetricsServer(cfg.MetricsPort, db))
		})
	}

	if cfg.EnableScheduler {
		sched := scheduler.NewScheduler(cfg, admin, db.PoolStats)
		g.Go(func() error {
			log.Info().Msg("Starting scheduler...")
			return sched.Run(ctx)
		})
	}

	// Update system uptime metric
	startTime := time.Now()
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

// newHTTPServer applies the server timeouts. WriteTimeout must exceed the router's request
// deadline or slow crawls are cut off before their error response is written.
func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}
}

// newCache connects to Redis, falling back to an uncached server when it is unreachable
func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if !cfg.RedisEnabled {
		log.Info().Msg("Redis disabled - running without cache")
		return cache.Noop{}
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		return cache.Noop{}
	}

	go func() {
		<-ctx.Done()
		redisCache.Close()
	}()
	log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis cache connected")
	return redisCache
}

// newMetricsServer exposes Prometheus metrics and a liveness check on their own port
func newMetricsServer(port int, health api.HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := health.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	log.Info().Int("port", port).Msg("Starting metrics server")
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server on %s failed: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Str("addr", srv.Addr).Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}
