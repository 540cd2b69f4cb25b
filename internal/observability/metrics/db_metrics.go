package metrics

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultSuggestionsTable = "suggestions"

type dbOptions struct {
	suggestionsTable string
}

// DBOption configures DB-backed gauges.
type DBOption func(*dbOptions)

// WithSuggestionsTable overrides the table counted by the pending gauge.
func WithSuggestionsTable(table string) DBOption {
	return func(o *dbOptions) {
		if table != "" {
			o.suggestionsTable = table
		}
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger, opts ...DBOption) {
	o := dbOptions{suggestionsTable: defaultSuggestionsTable}
	for _, opt := range opts {
		opt(&o)
	}

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "suggestions_pending",
			Help: "Suggestions waiting for review",
		},
		func() float64 {
			return queryCount(db, logger, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = 'pending'", o.suggestionsTable))
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
