// internal/repository/payment_repo.go
package repository

import (
	"context"

	"workid-wallet/internal/domain"

	"github.com/google/uuid"
)

// PaymentRepository defines the interface for gateway payment operations.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, q DBExecutor, payment *domain.Payment) error
	GetPaymentByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Payment, error)
	GetPaymentForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Payment, error)
	// SettlePayment moves a pending payment to status, recording the gateway
	// reference and signature. It fails with util.ErrAlreadyProcessed if the
	// payment is no longer pending.
	SettlePayment(ctx context.Context, q DBExecutor, payment *domain.Payment) error
}
