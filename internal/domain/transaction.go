// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a ledger entry.
type TransactionType string

const (
	TransactionTypeTopUp         TransactionType = "topup"
	TransactionTypeWithdrawal    TransactionType = "withdrawal"
	TransactionTypePayment       TransactionType = "payment"
	TransactionTypeEscrowHold    TransactionType = "escrow_hold"
	TransactionTypeEscrowRelease TransactionType = "escrow_release"
)

// TransactionStatus defines the status of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry recording one balance-affecting event.
// At most one of FromUserID/ToUserID is nil: system top-ups have no source,
// withdrawals have no destination.
type Transaction struct {
	ID         uuid.UUID         `db:"id" json:"id"`
	FromUserID *uuid.UUID        `db:"from_user_id" json:"from_user_id"`
	ToUserID   *uuid.UUID        `db:"to_user_id" json:"to_user_id"`
	Amount     decimal.Decimal   `db:"amount" json:"amount"` // NUMERIC(12, 2), always positive
	Type       TransactionType   `db:"type" json:"type"`
	Status     TransactionStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// NewTransaction creates a completed Transaction.
func NewTransaction(from, to *uuid.UUID, amount decimal.Decimal, txType TransactionType) *Transaction {
	return &Transaction{
		ID:         uuid.New(),
		FromUserID: from,
		ToUserID:   to,
		Amount:     amount,
		Type:       txType,
		Status:     TransactionStatusCompleted,
		CreatedAt:  time.Now().UTC(),
	}
}

// LedgerEntry describes the Transaction a balance mutation appends.
// The mutated user fills whichever side the mutation implies.
type LedgerEntry struct {
	Type         TransactionType
	Counterparty *uuid.UUID
}
