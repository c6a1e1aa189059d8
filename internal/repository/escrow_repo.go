// internal/repository/escrow_repo.go
package repository

import (
	"context"
	"time"

	"workid-wallet/internal/domain"

	"github.com/google/uuid"
)

// EscrowRepository defines the interface for escrow data operations.
type EscrowRepository interface {
	CreateEscrow(ctx context.Context, q DBExecutor, escrow *domain.Escrow) error
	GetEscrowByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Escrow, error)
	// GetEscrowForUpdate row-locks the escrow with id owned by employerID.
	GetEscrowForUpdate(ctx context.Context, q DBExecutor, id, employerID uuid.UUID) (*domain.Escrow, error)
	ListEscrowsByJobID(ctx context.Context, q DBExecutor, jobID uuid.UUID) ([]domain.Escrow, error)
	// ResolveEscrow moves a held escrow to a terminal status. It fails with
	// util.ErrAlreadyProcessed if the escrow is no longer held.
	ResolveEscrow(ctx context.Context, q DBExecutor, id uuid.UUID, status domain.EscrowStatus, resolvedAt time.Time) error
}
