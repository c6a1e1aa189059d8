package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/repository"
	"workid-wallet/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var errUnexpectedQuery = errors.New("unexpected direct query on stub transaction")

// stubTx stands in for *sqlx.Tx. Repositories are mocked, so the executor
// methods are never expected to run.
type stubTx struct {
	began      bool
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *stubTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *stubTx) Rollback() error {
	if t.committed {
		return sql.ErrTxDone
	}
	t.rolledBack = true
	return nil
}

func (t *stubTx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errUnexpectedQuery
}

func (t *stubTx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errUnexpectedQuery
}

func (t *stubTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errUnexpectedQuery
}

func (t *stubTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return &sql.Row{}
}

// newTestUnitOfWork wires a UnitOfWork whose transactions are tx and whose
// reads go through tx as well.
func newTestUnitOfWork(tx *stubTx) *UnitOfWork {
	return NewUnitOfWork(
		nil,
		tx,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			tx.began = true
			return tx, nil
		},
		db.CommitTx,
		db.RollbackTx,
		time.Second,
	)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, balance)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) GetTransactionTotals(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.TransactionTotals, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionTotals), args.Error(1)
}

// MockEscrowRepository is a mock implementation of repository.EscrowRepository.
type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) CreateEscrow(ctx context.Context, q repository.DBExecutor, escrow *domain.Escrow) error {
	args := m.Called(ctx, q, escrow)
	return args.Error(0)
}

func (m *MockEscrowRepository) GetEscrowByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Escrow, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Escrow), args.Error(1)
}

func (m *MockEscrowRepository) GetEscrowForUpdate(ctx context.Context, q repository.DBExecutor, id, employerID uuid.UUID) (*domain.Escrow, error) {
	args := m.Called(ctx, q, id, employerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Escrow), args.Error(1)
}

func (m *MockEscrowRepository) ListEscrowsByJobID(ctx context.Context, q repository.DBExecutor, jobID uuid.UUID) ([]domain.Escrow, error) {
	args := m.Called(ctx, q, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Escrow), args.Error(1)
}

func (m *MockEscrowRepository) ResolveEscrow(ctx context.Context, q repository.DBExecutor, id uuid.UUID, status domain.EscrowStatus, resolvedAt time.Time) error {
	args := m.Called(ctx, q, id, status, resolvedAt)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of repository.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	args := m.Called(ctx, q, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetPaymentForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SettlePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	args := m.Called(ctx, q, payment)
	return args.Error(0)
}

// decimalEq matches a decimal argument by value rather than representation.
func decimalEq(want string) interface{} {
	expected := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}

// entryOf matches a ledger entry by type, source and destination.
func entryOf(txType domain.TransactionType, from, to *uuid.UUID, amount string) interface{} {
	expected := decimal.RequireFromString(amount)
	return mock.MatchedBy(func(t *domain.Transaction) bool {
		return t.Type == txType &&
			sameUser(t.FromUserID, from) &&
			sameUser(t.ToUserID, to) &&
			t.Amount.Equal(expected) &&
			t.Status == domain.TransactionStatusCompleted
	})
}

func sameUser(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func walletWithBalance(userID uuid.UUID, balance string) *domain.Wallet {
	wallet := domain.NewWallet(userID)
	wallet.Balance = decimal.RequireFromString(balance)
	return wallet
}

// expectLock sets up the get-or-create plus row lock the mutator performs.
func expectLock(walletRepo *MockWalletRepository, wallet *domain.Wallet) {
	walletRepo.On("EnsureWallet", mock.Anything, mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool { return w.UserID == wallet.UserID })).Return(nil).Once()
	walletRepo.On("GetWalletByUserIDForUpdate", mock.Anything, mock.Anything, wallet.UserID).Return(wallet, nil).Once()
}
