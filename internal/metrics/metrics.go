package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContractsCreated counts contract creations by resolved payment type
	ContractsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velox_contracts_created_total",
			Help: "Total number of contracts created",
		},
		[]string{"interest_type"},
	)

	// ContractsCompleted counts contracts that reached full repayment
	ContractsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velox_contracts_completed_total",
			Help: "Total number of contracts completed",
		},
	)

	// PaymentsRecorded counts recorded payments by resulting entry status
	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velox_payments_recorded_total",
			Help: "Total number of payments recorded",
		},
		[]string{"entry_status"},
	)

	// QuotesCalculated counts returns quotes served
	QuotesCalculated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velox_quotes_calculated_total",
			Help: "Total number of returns quotes calculated",
		},
	)

	// EntriesSweptOverdue counts schedule entries flipped to overdue
	EntriesSweptOverdue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velox_schedule_entries_overdue_total",
			Help: "Total number of schedule entries marked overdue",
		},
	)

	// ReconcileDuration observes end-to-end payment reconciliation latency
	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "velox_payment_reconcile_duration_seconds",
			Help:    "Duration of payment reconciliation including persistence",
			Buckets: prometheus.DefBuckets,
		},
	)
)
