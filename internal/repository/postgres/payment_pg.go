// internal/repository/postgres/payment_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
)

const paymentColumns = `id, user_id, amount, provider, status, provider_reference, signature, created_at, updated_at`

// PaymentRepository implements repository.PaymentRepository for PostgreSQL.
type PaymentRepository struct{}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository() repository.PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	query := `INSERT INTO payments (id, user_id, amount, provider, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, query,
		payment.ID,
		payment.UserID,
		payment.Amount,
		payment.Provider,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if mapped := translateError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetPaymentByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Payment, error) {
	return r.getPayment(ctx, q, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *PaymentRepository) GetPaymentForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Payment, error) {
	return r.getPayment(ctx, q, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

func (r *PaymentRepository) getPayment(ctx context.Context, q repository.DBExecutor, query string, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	if err := q.GetContext(ctx, &payment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return &payment, nil
}

func (r *PaymentRepository) SettlePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	query := `UPDATE payments
              SET status = $1, provider_reference = $2, signature = $3, updated_at = $4
              WHERE id = $5 AND status = 'pending'`
	result, err := q.ExecContext(ctx, query,
		payment.Status,
		payment.ProviderReference,
		payment.Signature,
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle payment %s: %w", payment.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after settling payment %s: %w", payment.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrAlreadyProcessed
	}
	return nil
}
