// internal/domain/payment.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a gateway payment session.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is an external gateway session backing a wallet top-up.
type Payment struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	UserID            uuid.UUID       `db:"user_id" json:"user_id"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Provider          string          `db:"provider" json:"provider"`
	Status            PaymentStatus   `db:"status" json:"status"`
	ProviderReference *string         `db:"provider_reference" json:"provider_reference"`
	Signature         *string         `db:"signature" json:"-"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// NewPayment creates a pending Payment.
func NewPayment(userID uuid.UUID, amount decimal.Decimal, provider string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Provider:  provider,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
