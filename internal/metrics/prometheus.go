package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the pick'em server

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbo_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Crawler metrics
	CrawlerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_crawler_calls_total",
			Help: "Total number of crawler calls",
		},
		[]string{"status"},
	)

	CrawlerCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kbo_crawler_call_duration_seconds",
			Help:    "Duration of crawler calls in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbo_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kbo_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kbo_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key"},
	)

	// Prediction metrics
	PredictionsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kbo_predictions_submitted_total",
			Help: "Total number of picks stored",
		},
	)

	// Job metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbo_job_duration_seconds",
			Help:    "Duration of scheduled jobs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"job"},
	)

	LastSuccessfulJob = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kbo_last_successful_job_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	// Errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbo_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "type"},
	)

	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kbo_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordHTTPRequest records an HTTP request outcome
func RecordHTTPRequest(route, method, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(duration)
}

// RecordCrawlerCall records a crawler call
func RecordCrawlerCall(status string, duration float64) {
	CrawlerCallsTotal.WithLabelValues(status).Inc()
	CrawlerCallDuration.Observe(duration)
}

// RecordDBQuery records a database query
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit(key string) {
	CacheHitsTotal.WithLabelValues(key).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(key string) {
	CacheMissesTotal.WithLabelValues(key).Inc()
}

// RecordJob records a scheduled job run
func RecordJob(job, status string, duration float64, unixNow float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration)
	if status == "success" {
		LastSuccessfulJob.WithLabelValues(job).Set(unixNow)
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool stats
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
