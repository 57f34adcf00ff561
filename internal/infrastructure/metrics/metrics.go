package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Engine metrics
	EngineOperations *prometheus.CounterVec
	EngineDuration   *prometheus.HistogramVec

	// Holding metrics
	LotsApplied              prometheus.Counter
	PricesUpdated            prometheus.Counter
	ReconciliationChecks     prometheus.Counter
	ReconciliationMismatches prometheus.Counter
	ValueFixes               prometheus.Counter

	// Portfolio metrics
	RebalanceAlerts *prometheus.CounterVec

	// Rate metrics
	RateCacheLookups *prometheus.CounterVec
	RateSetsSaved    prometheus.Counter

	// Performance metrics
	YearlyRecordsRebuilt prometheus.Counter

	// Database metrics
	DBRetries *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates metrics registered on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EngineOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wealthengine_operations_total",
				Help: "Total engine operations by name and outcome",
			},
			[]string{"operation", "status"},
		),
		EngineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wealthengine_operation_duration_seconds",
				Help:    "Duration of engine operations including storage round trips",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		LotsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_lots_applied_total",
			Help: "Total number of purchase lots applied to holdings",
		}),
		PricesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_prices_updated_total",
			Help: "Total number of current price updates",
		}),
		ReconciliationChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_reconciliation_checks_total",
			Help: "Total number of holdings checked for value consistency",
		}),
		ReconciliationMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_reconciliation_mismatches_total",
			Help: "Total number of holdings whose stored value exceeded tolerance",
		}),
		ValueFixes: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_value_fixes_total",
			Help: "Total number of stored values recomputed from quantity and price",
		}),

		RebalanceAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wealthengine_rebalance_alerts_total",
				Help: "Categories whose drift exceeded the rebalance threshold",
			},
			[]string{"category"},
		),

		RateCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wealthengine_rate_cache_lookups_total",
				Help: "Rate cache lookups by result",
			},
			[]string{"result"},
		),
		RateSetsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_rate_sets_saved_total",
			Help: "Total number of exchange rate snapshots stored",
		}),

		YearlyRecordsRebuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthengine_yearly_records_rebuilt_total",
			Help: "Total number of yearly records rebuilt from monthly snapshots",
		}),

		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wealthengine_db_retries_total",
				Help: "Total database retries by operation",
			},
			[]string{"operation"},
		),

		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wealthengine_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
