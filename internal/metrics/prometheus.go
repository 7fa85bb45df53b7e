package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the crawler

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tft_api_calls_total",
			Help: "Total number of Riot API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tft_api_call_duration_seconds",
			Help:    "Duration of Riot API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tft_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tft_cache_hits_total",
			Help: "Total number of match-id cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tft_cache_misses_total",
			Help: "Total number of match-id cache misses",
		},
	)

	// Collection metrics
	PlayersDiscovered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tft_players_discovered",
			Help: "Number of unique players found in the last discovery phase",
		},
	)

	MatchIDsCollected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tft_match_ids_collected",
			Help: "Number of new match ids found in the last collection phase",
		},
	)

	MatchesStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tft_matches_stored_total",
			Help: "Total number of matches stored",
		},
	)

	MatchesFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tft_matches_failed_total",
			Help: "Total number of match fetch/store failures",
		},
	)

	CollectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tft_collection_runs_total",
			Help: "Total number of collection pipeline runs",
		},
		[]string{"status"},
	)

	CollectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tft_collection_duration_seconds",
			Help:    "Duration of full collection runs in seconds",
			Buckets: []float64{30, 60, 300, 600, 1800, 3600, 7200},
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tft_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tft_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tft_last_successful_run_timestamp",
			Help: "Timestamp of the last successful collection run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCollectionRun records a completed pipeline run
func RecordCollectionRun(status string, duration float64) {
	CollectionRunsTotal.WithLabelValues(status).Inc()
	CollectionDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
