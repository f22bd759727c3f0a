package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "gasbalance_"

	resultSuccess  = "success"
	resultError    = "error"
	resultRejected = "rejected"
	resultDenied   = "denied"
)

var (
	registerOnce sync.Once

	alertTransitions *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	backendFetchTotal   *prometheus.CounterVec
	backendFetchLatency *prometheus.HistogramVec
	staleDiscarded      *prometheus.CounterVec

	sessionChanges *prometheus.CounterVec

	healthScore   prometheus.Gauge
	streamClients prometheus.Gauge
)

// Init registers observability metrics and, when db is set, pool statistics.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		alertTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_transitions_total",
				Help: "Total alert state transition requests by from, to and result",
			},
			[]string{"from", "to", "result"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		backendFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "backend_fetch_total",
				Help: "Total backend fetches by resource and result",
			},
			[]string{"resource", "result"},
		)
		backendFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "backend_fetch_latency_seconds",
				Help:    "Backend fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource"},
		)
		staleDiscarded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "backend_stale_responses_total",
				Help: "Backend responses discarded because a newer request resolved first",
			},
			[]string{"resource"},
		)

		sessionChanges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "session_changes_total",
				Help: "Total session changes by action",
			},
			[]string{"action"},
		)

		healthScore = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "network_health_score",
				Help: "Last computed network health score",
			},
		)
		streamClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "alert_stream_clients",
				Help: "Connected alert stream subscribers",
			},
		)

		prometheus.MustRegister(
			alertTransitions,
			reportExportTotal,
			reportExportLatency,
			backendFetchTotal,
			backendFetchLatency,
			staleDiscarded,
			sessionChanges,
			healthScore,
			streamClients,
		)

		if db != nil {
			if err := prometheus.Register(collectors.NewDBStatsCollector(db, "gasbalance")); err != nil && logger != nil {
				logger.Printf("metrics: db stats collector: %v", err)
			}
		}
	})
}

// IncAlertTransition counts a transition request.
func IncAlertTransition(from, to, result string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if alertTransitions != nil {
		alertTransitions.WithLabelValues(from, to, result).Inc()
	}
}

// ObserveReportExport records export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveBackendFetch records a backend call.
func ObserveBackendFetch(resource, result string, duration time.Duration) {
	if resource == "" {
		resource = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if backendFetchTotal != nil {
		backendFetchTotal.WithLabelValues(resource, result).Inc()
	}
	if backendFetchLatency != nil {
		backendFetchLatency.WithLabelValues(resource).Observe(duration.Seconds())
	}
}

// IncStaleDiscarded counts a response dropped in favor of a newer one.
func IncStaleDiscarded(resource string) {
	if resource == "" {
		resource = "unknown"
	}
	if staleDiscarded != nil {
		staleDiscarded.WithLabelValues(resource).Inc()
	}
}

// IncSessionChange counts a login or logout.
func IncSessionChange(action string) {
	if action == "" {
		action = "unknown"
	}
	if sessionChanges != nil {
		sessionChanges.WithLabelValues(action).Inc()
	}
}

// SetHealthScore publishes the last computed health score.
func SetHealthScore(score int) {
	if healthScore != nil {
		healthScore.Set(float64(score))
	}
}

// SetStreamClients records the number of alert stream subscribers.
func SetStreamClients(n int) {
	if streamClients != nil {
		streamClients.Set(float64(n))
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultRejected = resultRejected
	ResultDenied   = resultDenied
)
