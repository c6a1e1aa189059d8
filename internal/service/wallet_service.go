// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// Credit adds amount to the user's wallet, recording entry.Type with the
	// counterparty as source. Valid types: topup, payment, escrow_release.
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error)
	// Debit removes amount from the user's wallet, recording entry.Type with the
	// counterparty as destination. Valid types: withdrawal, payment, escrow_hold.
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error)
	Pay(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Wallet, *domain.Transaction, error)
	GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*domain.WalletSummary, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	uow             *UnitOfWork
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	mutator         *balanceMutator
	logger          *slog.Logger
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	uow *UnitOfWork,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	logger *slog.Logger,
) WalletService {
	return &walletService{
		uow:             uow,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		mutator:         &balanceMutator{walletRepo: walletRepo, transactionRepo: transactionRepo},
		logger:          logger,
	}
}

// GetOrCreateWallet returns the user's wallet, creating a zero-balance one if absent.
func (s *walletService) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := s.uow.InTx(ctx, "get or create wallet", func(ctx context.Context, q repository.DBExecutor) error {
		if err := s.walletRepo.EnsureWallet(ctx, q, domain.NewWallet(userID)); err != nil {
			return err
		}
		var err error
		wallet, err = s.walletRepo.GetWalletByUserID(ctx, q, userID)
		return err
	})
	if err != nil {
		observeFailure(s.logger, "get_or_create_wallet", err, "user_id", userID)
		return nil, err
	}
	return wallet, nil
}

var (
	creditTypes = map[domain.TransactionType]bool{
		domain.TransactionTypeTopUp:         true,
		domain.TransactionTypePayment:       true,
		domain.TransactionTypeEscrowRelease: true,
	}
	debitTypes = map[domain.TransactionType]bool{
		domain.TransactionTypeWithdrawal: true,
		domain.TransactionTypePayment:    true,
		domain.TransactionTypeEscrowHold: true,
	}
)

func (s *walletService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error) {
	if !creditTypes[entry.Type] {
		return nil, nil, fmt.Errorf("credit: unsupported entry type %q: %w", entry.Type, util.ErrInvalidInput)
	}
	return s.mutate(ctx, "credit", userID, amount, entry, s.mutator.credit)
}

func (s *walletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error) {
	if !debitTypes[entry.Type] {
		return nil, nil, fmt.Errorf("debit: unsupported entry type %q: %w", entry.Type, util.ErrInvalidInput)
	}
	return s.mutate(ctx, "debit", userID, amount, entry, s.mutator.debit)
}

// Deposit credits the wallet as a system top-up.
func (s *walletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	return s.Credit(ctx, userID, amount, domain.LedgerEntry{Type: domain.TransactionTypeTopUp})
}

// Withdraw debits the wallet out of the system.
func (s *walletService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	return s.Debit(ctx, userID, amount, domain.LedgerEntry{Type: domain.TransactionTypeWithdrawal})
}

type mutation func(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error)

func (s *walletService) mutate(ctx context.Context, op string, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry, apply mutation) (*domain.Wallet, *domain.Transaction, error) {
	if !domain.IsValidAmount(amount) {
		observeFailure(s.logger, op, util.ErrInvalidAmount, "user_id", userID)
		return nil, nil, util.ErrInvalidAmount
	}

	var (
		wallet      *domain.Wallet
		transaction *domain.Transaction
	)
	err := s.uow.InTx(ctx, op, func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		wallet, transaction, err = apply(ctx, q, userID, amount, entry)
		return err
	})
	if err != nil {
		observeFailure(s.logger, op, err, "user_id", userID)
		return nil, nil, err
	}

	observeEntries(transaction)
	s.logger.Info("Wallet balance updated", "operation", op, "user_id", userID, "wallet_id", wallet.ID, "transaction_id", transaction.ID)
	return wallet, transaction, nil
}

// Pay moves amount from one user's wallet to another's as a single payment entry.
func (s *walletService) Pay(ctx context.Context, fromUserID, toUserID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Wallet, *domain.Transaction, error) {
	if !domain.IsValidAmount(amount) {
		observeFailure(s.logger, "pay", util.ErrInvalidAmount, "from_user_id", fromUserID, "to_user_id", toUserID)
		return nil, nil, nil, util.ErrInvalidAmount
	}
	if fromUserID == toUserID {
		observeFailure(s.logger, "pay", util.ErrInvalidInput, "from_user_id", fromUserID)
		return nil, nil, nil, fmt.Errorf("pay: cannot pay own wallet: %w", util.ErrInvalidInput)
	}

	var (
		fromWallet, toWallet *domain.Wallet
		transaction          *domain.Transaction
	)
	err := s.uow.InTx(ctx, "pay", func(ctx context.Context, q repository.DBExecutor) error {
		var err error
		fromWallet, toWallet, transaction, err = s.mutator.transfer(ctx, q, fromUserID, toUserID, amount, domain.TransactionTypePayment)
		return err
	})
	if err != nil {
		observeFailure(s.logger, "pay", err, "from_user_id", fromUserID, "to_user_id", toUserID)
		return nil, nil, nil, err
	}

	observeEntries(transaction)
	s.logger.Info("Payment between wallets completed", "from_user_id", fromUserID, "to_user_id", toUserID, "transaction_id", transaction.ID)
	return fromWallet, toWallet, transaction, nil
}

// GetTransactionHistory retrieves a paginated list of entries touching the user.
func (s *walletService) GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	if limit <= 0 || offset < 0 {
		return nil, 0, util.ErrInvalidInput
	}

	var (
		transactions []domain.Transaction
		totalCount   int64
	)
	err := s.uow.Read(ctx, "get transaction history", func(ctx context.Context, q repository.DBExecutor) error {
		// First, check if the wallet exists
		if _, err := s.walletRepo.GetWalletByUserID(ctx, q, userID); err != nil {
			return err
		}
		var err error
		transactions, totalCount, err = s.transactionRepo.GetTransactionsByUserID(ctx, q, userID, limit, offset)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return transactions, totalCount, nil
}

// GetSummary returns the wallet with lifetime totals. Refunded escrow holds
// are netted out of the spent total.
func (s *walletService) GetSummary(ctx context.Context, userID uuid.UUID) (*domain.WalletSummary, error) {
	var summary *domain.WalletSummary
	err := s.uow.Read(ctx, "get wallet summary", func(ctx context.Context, q repository.DBExecutor) error {
		wallet, err := s.walletRepo.GetWalletByUserID(ctx, q, userID)
		if err != nil {
			return err
		}
		totals, err := s.transactionRepo.GetTransactionTotals(ctx, q, userID)
		if err != nil {
			return err
		}
		summary = &domain.WalletSummary{
			Wallet:         wallet,
			TotalDeposited: totals.Deposited,
			TotalWithdrawn: totals.Withdrawn,
			TotalSpent:     totals.Spent.Sub(totals.Refunded),
			TotalEarned:    totals.Earned,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
