// internal/domain/escrow.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowStatus is the state of an escrow. Released and refunded are terminal.
type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s EscrowStatus) IsTerminal() bool {
	return s == EscrowStatusReleased || s == EscrowStatusRefunded
}

// Escrow is money taken from an employer and held against a job until it is
// released to the worker or refunded.
type Escrow struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	JobID      uuid.UUID       `db:"job_id" json:"job_id"`
	EmployerID uuid.UUID       `db:"employer_id" json:"employer_id"`
	WorkerID   uuid.UUID       `db:"worker_id" json:"worker_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Status     EscrowStatus    `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	ReleasedAt *time.Time      `db:"released_at" json:"released_at"` // Set when leaving held
}

// NewEscrow creates a held Escrow.
func NewEscrow(jobID, employerID, workerID uuid.UUID, amount decimal.Decimal) *Escrow {
	return &Escrow{
		ID:         uuid.New(),
		JobID:      jobID,
		EmployerID: employerID,
		WorkerID:   workerID,
		Amount:     amount,
		Status:     EscrowStatusHeld,
		CreatedAt:  time.Now().UTC(),
	}
}
