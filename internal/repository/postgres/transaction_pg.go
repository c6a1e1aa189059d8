// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/repository"

	"github.com/google/uuid"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a ledger entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (id, from_user_id, to_user_id, amount, type, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		transaction.FromUserID,
		transaction.ToUserID,
		transaction.Amount,
		transaction.Type,
		transaction.Status,
		transaction.CreatedAt,
	)
	if err != nil {
		if mapped := translateError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// pagedTransaction is a ledger row carrying the size of the whole result set.
type pagedTransaction struct {
	domain.Transaction
	TotalCount int64 `db:"total_count"`
}

// GetTransactionsByUserID retrieves a paginated list of entries touching a user.
// The page and its total come from one statement, so they share a snapshot.
// A page past the end carries no rows and falls back to a plain count.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	rows := []pagedTransaction{}

	query := `
		SELECT id, from_user_id, to_user_id, amount, type, status, created_at,
			COUNT(*) OVER () AS total_count
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %s: %w", userID, err)
	}

	transactions := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, row.Transaction)
	}
	if len(rows) > 0 {
		return transactions, rows[0].TotalCount, nil
	}
	if offset == 0 {
		return transactions, 0, nil
	}

	var totalCount int64
	countQuery := `
		SELECT COUNT(*)
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for user %s: %w", userID, err)
	}

	return transactions, totalCount, nil
}

// GetTransactionTotals sums the user's completed entries. Refunds are escrow
// releases with no source and are reported separately from earnings.
func (r *TransactionRepository) GetTransactionTotals(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.TransactionTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE to_user_id = $1 AND type = 'topup'), 0) AS deposited,
			COALESCE(SUM(amount) FILTER (WHERE from_user_id = $1 AND type = 'withdrawal'), 0) AS withdrawn,
			COALESCE(SUM(amount) FILTER (WHERE from_user_id = $1 AND type IN ('payment', 'escrow_hold')), 0) AS spent,
			COALESCE(SUM(amount) FILTER (WHERE to_user_id = $1 AND from_user_id IS NOT NULL AND type IN ('payment', 'escrow_release')), 0) AS earned,
			COALESCE(SUM(amount) FILTER (WHERE to_user_id = $1 AND from_user_id IS NULL AND type = 'escrow_release'), 0) AS refunded
		FROM transactions
		WHERE status = 'completed' AND (from_user_id = $1 OR to_user_id = $1)`

	var totals domain.TransactionTotals
	if err := q.GetContext(ctx, &totals, query, userID); err != nil {
		return nil, fmt.Errorf("failed to sum transactions for user %s: %w", userID, err)
	}
	return &totals, nil
}
