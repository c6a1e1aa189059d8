// internal/service/balance_mutator.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// balanceMutator is the only code that writes wallet balances. Every method
// must run inside a unit of work: it locks the wallet rows it touches and
// appends the ledger entry on the same executor.
type balanceMutator struct {
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
}

// lockWallet returns the user's wallet, creating it first if needed, and
// holds its row lock until the enclosing transaction ends.
func (m *balanceMutator) lockWallet(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	if err := m.walletRepo.EnsureWallet(ctx, q, domain.NewWallet(userID)); err != nil {
		return nil, err
	}
	wallet, err := m.walletRepo.GetWalletByUserIDForUpdate(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// adjust applies delta to a locked wallet. A balance above domain.MaxAmount
// cannot be stored and is rejected as an invalid amount.
func (m *balanceMutator) adjust(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, delta decimal.Decimal) (*domain.Wallet, error) {
	newBalance := wallet.Balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, util.ErrInsufficientFunds
	}
	if newBalance.GreaterThan(domain.MaxAmount) {
		return nil, util.ErrInvalidAmount
	}
	if err := m.walletRepo.UpdateWalletBalance(ctx, q, wallet.ID, newBalance); err != nil {
		return nil, err
	}

	updated := *wallet
	updated.Balance = newBalance
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

func (m *balanceMutator) record(ctx context.Context, q repository.DBExecutor, from, to *uuid.UUID, amount decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error) {
	transaction := domain.NewTransaction(from, to, amount, txType)
	if err := m.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// credit increases the user's balance and appends entry with the user as
// destination and the counterparty, if any, as source.
func (m *balanceMutator) credit(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error) {
	if !domain.IsValidAmount(amount) {
		return nil, nil, util.ErrInvalidAmount
	}
	wallet, err := m.lockWallet(ctx, q, userID)
	if err != nil {
		return nil, nil, err
	}
	updated, err := m.adjust(ctx, q, wallet, amount)
	if err != nil {
		return nil, nil, err
	}
	transaction, err := m.record(ctx, q, entry.Counterparty, &userID, amount, entry.Type)
	if err != nil {
		return nil, nil, err
	}
	return updated, transaction, nil
}

// debit decreases the user's balance and appends entry with the user as
// source and the counterparty, if any, as destination.
func (m *balanceMutator) debit(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, amount decimal.Decimal, entry domain.LedgerEntry) (*domain.Wallet, *domain.Transaction, error) {
	if !domain.IsValidAmount(amount) {
		return nil, nil, util.ErrInvalidAmount
	}
	wallet, err := m.lockWallet(ctx, q, userID)
	if err != nil {
		return nil, nil, err
	}
	if wallet.Balance.LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}
	updated, err := m.adjust(ctx, q, wallet, amount.Neg())
	if err != nil {
		return nil, nil, err
	}
	transaction, err := m.record(ctx, q, &userID, entry.Counterparty, amount, entry.Type)
	if err != nil {
		return nil, nil, err
	}
	return updated, transaction, nil
}

// transfer moves amount between two wallets under a single ledger entry.
// Rows are locked in ascending user id order so opposing transfers cannot
// deadlock.
func (m *balanceMutator) transfer(ctx context.Context, q repository.DBExecutor, fromUserID, toUserID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType) (*domain.Wallet, *domain.Wallet, *domain.Transaction, error) {
	if !domain.IsValidAmount(amount) {
		return nil, nil, nil, util.ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, nil, nil, util.ErrInvalidInput
	}

	first, second := fromUserID, toUserID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, userID := range []uuid.UUID{first, second} {
		wallet, err := m.lockWallet(ctx, q, userID)
		if err != nil {
			return nil, nil, nil, err
		}
		locked[userID] = wallet
	}

	if locked[fromUserID].Balance.LessThan(amount) {
		return nil, nil, nil, util.ErrInsufficientFunds
	}
	fromWallet, err := m.adjust(ctx, q, locked[fromUserID], amount.Neg())
	if err != nil {
		return nil, nil, nil, err
	}
	toWallet, err := m.adjust(ctx, q, locked[toUserID], amount)
	if err != nil {
		return nil, nil, nil, err
	}
	transaction, err := m.record(ctx, q, &fromUserID, &toUserID, amount, txType)
	if err != nil {
		return nil, nil, nil, err
	}
	return fromWallet, toWallet, transaction, nil
}
