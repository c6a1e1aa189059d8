// internal/service/observe.go
package service

import (
	"log/slog"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/metrics"
	"workid-wallet/internal/util"
)

// observeFailure counts and logs a failed operation. Attributes must carry
// identifiers only.
func observeFailure(logger *slog.Logger, op string, err error, attrs ...any) {
	reason := util.ErrorReason(err)
	metrics.RecordOperationFailure(op, reason)

	attrs = append([]any{"operation", op, "reason", reason}, attrs...)
	if reason == "storage" {
		logger.Error("Ledger operation failed", append(attrs, "error", err)...)
		return
	}
	logger.Warn("Ledger operation rejected", attrs...)
}

func observeEntries(transactions ...*domain.Transaction) {
	for _, t := range transactions {
		if t != nil {
			metrics.RecordLedgerEntry(string(t.Type))
		}
	}
}
