// internal/repository/postgres/escrow_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
)

const escrowColumns = `id, job_id, employer_id, worker_id, amount, status, created_at, released_at`

// EscrowRepository implements repository.EscrowRepository for PostgreSQL.
type EscrowRepository struct{}

// NewEscrowRepository creates a new EscrowRepository.
func NewEscrowRepository() repository.EscrowRepository {
	return &EscrowRepository{}
}

func (r *EscrowRepository) CreateEscrow(ctx context.Context, q repository.DBExecutor, escrow *domain.Escrow) error {
	query := `INSERT INTO escrows (id, job_id, employer_id, worker_id, amount, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, query,
		escrow.ID,
		escrow.JobID,
		escrow.EmployerID,
		escrow.WorkerID,
		escrow.Amount,
		escrow.Status,
		escrow.CreatedAt,
	)
	if err != nil {
		if mapped := translateError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create escrow: %w", err)
	}
	return nil
}

func (r *EscrowRepository) GetEscrowByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Escrow, error) {
	var escrow domain.Escrow
	err := q.GetContext(ctx, &escrow, `SELECT `+escrowColumns+` FROM escrows WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get escrow %s: %w", id, err)
	}
	return &escrow, nil
}

func (r *EscrowRepository) GetEscrowForUpdate(ctx context.Context, q repository.DBExecutor, id, employerID uuid.UUID) (*domain.Escrow, error) {
	var escrow domain.Escrow
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1 AND employer_id = $2 FOR UPDATE`
	err := q.GetContext(ctx, &escrow, query, id, employerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock escrow %s: %w", id, err)
	}
	return &escrow, nil
}

func (r *EscrowRepository) ListEscrowsByJobID(ctx context.Context, q repository.DBExecutor, jobID uuid.UUID) ([]domain.Escrow, error) {
	escrows := []domain.Escrow{}
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE job_id = $1 ORDER BY created_at`
	if err := q.SelectContext(ctx, &escrows, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list escrows for job %s: %w", jobID, err)
	}
	return escrows, nil
}

func (r *EscrowRepository) ResolveEscrow(ctx context.Context, q repository.DBExecutor, id uuid.UUID, status domain.EscrowStatus, resolvedAt time.Time) error {
	query := `UPDATE escrows SET status = $1, released_at = $2 WHERE id = $3 AND status = 'held'`
	result, err := q.ExecContext(ctx, query, status, resolvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to resolve escrow %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after resolving escrow %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrAlreadyProcessed
	}
	return nil
}
