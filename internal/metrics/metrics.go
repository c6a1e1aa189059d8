package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_ledger_entries_total",
			Help: "Total number of committed ledger entries",
		},
		[]string{"type"},
	)

	OperationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_operation_failures_total",
			Help: "Total number of failed ledger operations",
		},
		[]string{"operation", "reason"},
	)

	EscrowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_escrow_transitions_total",
			Help: "Total number of escrows entering a status",
		},
		[]string{"status"},
	)

	PaymentConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_payment_confirmations_total",
			Help: "Total number of gateway confirmations by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLedgerEntry(entryType string) {
	LedgerEntriesTotal.WithLabelValues(entryType).Inc()
}

func RecordOperationFailure(operation, reason string) {
	OperationFailuresTotal.WithLabelValues(operation, reason).Inc()
}

func RecordEscrowTransition(status string) {
	EscrowTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordPaymentConfirmation(outcome string) {
	PaymentConfirmationsTotal.WithLabelValues(outcome).Inc()
}
