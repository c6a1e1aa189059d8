// internal/service/escrow_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/metrics"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowService holds employer funds against a job and resolves them.
// An escrow moves from held to released or refunded exactly once.
type EscrowService interface {
	Fund(ctx context.Context, jobID, employerID, workerID uuid.UUID, amount decimal.Decimal) (*domain.Escrow, error)
	Release(ctx context.Context, escrowID, employerID uuid.UUID) (*domain.Escrow, error)
	Refund(ctx context.Context, escrowID, employerID uuid.UUID) (*domain.Escrow, error)
	Get(ctx context.Context, escrowID uuid.UUID) (*domain.Escrow, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Escrow, error)
}

type escrowService struct {
	uow        *UnitOfWork
	escrowRepo repository.EscrowRepository
	mutator    *balanceMutator
	logger     *slog.Logger
}

// NewEscrowService creates a new instance of EscrowService.
func NewEscrowService(
	uow *UnitOfWork,
	escrowRepo repository.EscrowRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	logger *slog.Logger,
) EscrowService {
	return &escrowService{
		uow:        uow,
		escrowRepo: escrowRepo,
		mutator:    &balanceMutator{walletRepo: walletRepo, transactionRepo: transactionRepo},
		logger:     logger,
	}
}

// Fund debits the employer and creates a held escrow. The debit's ledger
// entry is the escrow hold, with the worker as destination.
func (s *escrowService) Fund(ctx context.Context, jobID, employerID, workerID uuid.UUID, amount decimal.Decimal) (*domain.Escrow, error) {
	if !domain.IsValidAmount(amount) {
		observeFailure(s.logger, "fund_escrow", util.ErrInvalidAmount, "job_id", jobID, "employer_id", employerID)
		return nil, util.ErrInvalidAmount
	}
	if employerID == workerID {
		observeFailure(s.logger, "fund_escrow", util.ErrInvalidInput, "job_id", jobID, "employer_id", employerID)
		return nil, fmt.Errorf("fund escrow: employer and worker must differ: %w", util.ErrInvalidInput)
	}

	escrow := domain.NewEscrow(jobID, employerID, workerID, amount)
	var transaction *domain.Transaction
	err := s.uow.InTx(ctx, "fund escrow", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		_, transaction, err = s.mutator.debit(ctx, q, employerID, amount, domain.LedgerEntry{
			Type:         domain.TransactionTypeEscrowHold,
			Counterparty: &workerID,
		})
		if err != nil {
			return err
		}
		return s.escrowRepo.CreateEscrow(ctx, q, escrow)
	})
	if err != nil {
		observeFailure(s.logger, "fund_escrow", err, "job_id", jobID, "employer_id", employerID)
		return nil, err
	}

	observeEntries(transaction)
	metrics.RecordEscrowTransition(string(domain.EscrowStatusHeld))
	s.logger.Info("Escrow funded", "escrow_id", escrow.ID, "job_id", jobID, "employer_id", employerID, "worker_id", workerID)
	return escrow, nil
}

// Release pays a held escrow out to its worker.
func (s *escrowService) Release(ctx context.Context, escrowID, employerID uuid.UUID) (*domain.Escrow, error) {
	return s.resolve(ctx, "release_escrow", escrowID, employerID, domain.EscrowStatusReleased)
}

// Refund returns a held escrow to its employer. The ledger entry has no
// source, which distinguishes it from a release.
func (s *escrowService) Refund(ctx context.Context, escrowID, employerID uuid.UUID) (*domain.Escrow, error) {
	return s.resolve(ctx, "refund_escrow", escrowID, employerID, domain.EscrowStatusRefunded)
}

func (s *escrowService) resolve(ctx context.Context, op string, escrowID, employerID uuid.UUID, status domain.EscrowStatus) (*domain.Escrow, error) {
	var (
		escrow      *domain.Escrow
		transaction *domain.Transaction
	)
	err := s.uow.InTx(ctx, op, func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		escrow, err = s.escrowRepo.GetEscrowForUpdate(ctx, q, escrowID, employerID)
		if err != nil {
			return err
		}
		if escrow.Status != domain.EscrowStatusHeld {
			return util.ErrAlreadyProcessed
		}

		beneficiary, entry := escrow.WorkerID, domain.LedgerEntry{
			Type:         domain.TransactionTypeEscrowRelease,
			Counterparty: &escrow.EmployerID,
		}
		if status == domain.EscrowStatusRefunded {
			beneficiary, entry.Counterparty = escrow.EmployerID, nil
		}
		_, transaction, err = s.mutator.credit(ctx, q, beneficiary, escrow.Amount, entry)
		if err != nil {
			return err
		}

		resolvedAt := time.Now().UTC()
		if err := s.escrowRepo.ResolveEscrow(ctx, q, escrow.ID, status, resolvedAt); err != nil {
			return err
		}
		escrow.Status = status
		escrow.ReleasedAt = &resolvedAt
		return nil
	})
	if err != nil {
		observeFailure(s.logger, op, err, "escrow_id", escrowID, "employer_id", employerID)
		return nil, err
	}

	observeEntries(transaction)
	metrics.RecordEscrowTransition(string(status))
	s.logger.Info("Escrow resolved", "escrow_id", escrow.ID, "status", status, "transaction_id", transaction.ID)
	return escrow, nil
}

func (s *escrowService) Get(ctx context.Context, escrowID uuid.UUID) (*domain.Escrow, error) {
	var escrow *domain.Escrow
	err := s.uow.Read(ctx, "get escrow", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		escrow, err = s.escrowRepo.GetEscrowByID(ctx, q, escrowID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return escrow, nil
}

func (s *escrowService) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Escrow, error) {
	var escrows []domain.Escrow
	err := s.uow.Read(ctx, "list escrows by job", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		escrows, err = s.escrowRepo.ListEscrowsByJobID(ctx, q, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return escrows, nil
}
