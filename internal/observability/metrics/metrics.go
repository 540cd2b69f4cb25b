package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "chargemap_"

	resultSuccess     = "success"
	resultError       = "error"
	resultUnavailable = "unavailable"
)

var (
	registerOnce sync.Once

	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	rowsDropped     *prometheus.CounterVec
	postalCodes     *prometheus.GaugeVec
	populationRuns  *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	suggestionEvents *prometheus.CounterVec
	loginAttempts    *prometheus.CounterVec
)

// Init registers metrics. db, when set, backs the pending suggestion gauge.
func Init(db *sql.DB, logger *log.Logger, opts ...DBOption) {
	registerOnce.Do(func() {
		pipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_runs_total",
				Help: "Total demand pipeline runs by result",
			},
			[]string{"result"},
		)
		pipelineLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_latency_seconds",
				Help:    "Demand pipeline latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		rowsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_dropped_total",
				Help: "Source rows dropped during ingestion by source and reason",
			},
			[]string{"source", "reason"},
		)
		postalCodes = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "postal_codes",
				Help: "Postal codes in the last demand table by station coverage",
			},
			[]string{"coverage"},
		)
		populationRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "population_resolutions_total",
				Help: "Population resolutions by strategy",
			},
			[]string{"strategy"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total demand exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Demand export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		suggestionEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "suggestion_events_total",
				Help: "Total suggestion lifecycle events by type",
			},
			[]string{"event"},
		)
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Reviewer login attempts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			pipelineRuns,
			pipelineLatency,
			rowsDropped,
			postalCodes,
			populationRuns,
			exportTotal,
			exportLatency,
			suggestionEvents,
			loginAttempts,
		)

		if db != nil {
			registerDBMetrics(db, logger, opts...)
		}
	})
}

// ObservePipeline records pipeline duration and result.
func ObservePipeline(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if pipelineRuns != nil {
		pipelineRuns.WithLabelValues(result).Inc()
	}
	if pipelineLatency != nil {
		pipelineLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddDroppedRows adds count to the drop counter of source and reason.
func AddDroppedRows(source, reason string, count int) {
	if count <= 0 {
		return
	}
	if source == "" {
		source = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	if rowsDropped != nil {
		rowsDropped.WithLabelValues(source, reason).Add(float64(count))
	}
}

// SetPostalCodes publishes the size of the last demand table.
func SetPostalCodes(covered, uncovered int) {
	if postalCodes == nil {
		return
	}
	postalCodes.WithLabelValues("covered").Set(float64(covered))
	postalCodes.WithLabelValues("uncovered").Set(float64(uncovered))
}

// IncPopulationStrategy counts a population resolution.
func IncPopulationStrategy(strategy string) {
	if strategy == "" {
		strategy = "unknown"
	}
	if populationRuns != nil {
		populationRuns.WithLabelValues(strategy).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncSuggestionEvent increments suggestion lifecycle counters.
func IncSuggestionEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if suggestionEvents != nil {
		suggestionEvents.WithLabelValues(event).Inc()
	}
}

// IncLogin counts a login attempt.
func IncLogin(result string) {
	if result == "" {
		result = "unknown"
	}
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess     = resultSuccess
	ResultError       = resultError
	ResultUnavailable = resultUnavailable
)
