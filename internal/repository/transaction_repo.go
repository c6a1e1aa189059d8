// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"workid-wallet/internal/domain"

	"github.com/google/uuid"
)

// TransactionRepository defines the interface for ledger entry operations.
// Entries are append-only: there is no update or delete.
type TransactionRepository interface {
	// CreateTransaction appends a ledger entry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID retrieves a page of entries where the user is source or destination, newest first, plus the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	// GetTransactionTotals sums completed entries for the user by category.
	GetTransactionTotals(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.TransactionTotals, error)
}
