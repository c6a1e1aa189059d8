// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet represents a user's custodial balance. One per user.
type Wallet struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"` // Unique per wallet
	Balance   decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(12, 2), never negative
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new zero-balance Wallet for userID.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WalletSummary is a wallet balance with lifetime totals derived from the ledger.
type WalletSummary struct {
	Wallet         *Wallet         `json:"wallet"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
}

// TransactionTotals holds per-user sums over completed ledger entries.
type TransactionTotals struct {
	Deposited decimal.Decimal `db:"deposited"`
	Withdrawn decimal.Decimal `db:"withdrawn"`
	Spent     decimal.Decimal `db:"spent"`
	Earned    decimal.Decimal `db:"earned"`
	Refunded  decimal.Decimal `db:"refunded"`
}
