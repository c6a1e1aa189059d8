package service

import (
	"context"
	"errors"
	"testing"

	"workid-wallet/internal/domain"
	"workid-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestWalletService(tx *stubTx) (WalletService, *MockWalletRepository, *MockTransactionRepository) {
	walletRepo := new(MockWalletRepository)
	transactionRepo := new(MockTransactionRepository)
	svc := NewWalletService(newTestUnitOfWork(tx), walletRepo, transactionRepo, util.DiscardLogger())
	return svc, walletRepo, transactionRepo
}

// TestDeposit tests the Deposit method of WalletService.
func TestDeposit(t *testing.T) {
	userID := uuid.New()
	amount := decimal.RequireFromString("100.00")

	t.Run("SuccessfulDeposit", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "500.00")

		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, decimalEq("600.00")).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, entryOf(domain.TransactionTypeTopUp, nil, &userID, "100.00")).Return(nil).Once()

		resWallet, resTx, err := svc.Deposit(context.Background(), userID, amount)

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("600.00").Equal(resWallet.Balance))
		assert.Equal(t, domain.TransactionTypeTopUp, resTx.Type)
		assert.Nil(t, resTx.FromUserID)
		assert.True(t, tx.committed)
		mock.AssertExpectationsForObjects(t, walletRepo, transactionRepo)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		for _, raw := range []string{"0", "-10.00", "10.001", "10000000000.00"} {
			tx := &stubTx{}
			svc, walletRepo, transactionRepo := newTestWalletService(tx)

			resWallet, resTx, err := svc.Deposit(context.Background(), userID, decimal.RequireFromString(raw))

			assert.ErrorIs(t, err, util.ErrInvalidAmount, raw)
			assert.Nil(t, resWallet)
			assert.Nil(t, resTx)
			// Rejected before a transaction is begun.
			assert.False(t, tx.began)
			walletRepo.AssertNotCalled(t, "EnsureWallet", mock.Anything, mock.Anything, mock.Anything)
			transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("BalanceAboveColumnMaximum", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "9999999950.00")

		expectLock(walletRepo, wallet)

		resWallet, _, err := svc.Deposit(context.Background(), userID, amount)

		assert.ErrorIs(t, err, util.ErrInvalidAmount)
		assert.NotErrorIs(t, err, util.ErrStorage)
		assert.Nil(t, resWallet)
		assert.True(t, tx.rolledBack)
		walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LedgerAppendFailureRollsBack", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "500.00")

		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, decimalEq("600.00")).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, mock.Anything).Return(errors.New("connection reset")).Once()

		_, _, err := svc.Deposit(context.Background(), userID, amount)

		assert.ErrorIs(t, err, util.ErrStorage)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})

	t.Run("CommitFailure", func(t *testing.T) {
		tx := &stubTx{commitErr: errors.New("commit refused")}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "0.00")

		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, decimalEq("100.00")).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, mock.Anything).Return(nil).Once()

		_, _, err := svc.Deposit(context.Background(), userID, amount)

		var storageErr *util.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "credit", storageErr.Op)
		assert.True(t, tx.rolledBack)
	})

	t.Run("Timeout", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, _ := newTestWalletService(tx)

		walletRepo.On("EnsureWallet", mock.Anything, tx, mock.Anything).Return(context.DeadlineExceeded).Once()

		_, _, err := svc.Deposit(context.Background(), userID, amount)

		assert.ErrorIs(t, err, util.ErrStorage)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, tx.rolledBack)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "0.00")

		ctx, cancel := context.WithCancel(context.Background())
		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, mock.Anything).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(nil).Once()

		_, _, err := svc.Deposit(ctx, userID, amount)

		assert.ErrorIs(t, err, util.ErrStorage)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})
}

func TestWithdraw(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "1000.00")

		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, decimalEq("400.00")).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, entryOf(domain.TransactionTypeWithdrawal, &userID, nil, "600.00")).Return(nil).Once()

		resWallet, _, err := svc.Withdraw(context.Background(), userID, decimal.RequireFromString("600.00"))

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("400").Equal(resWallet.Balance))
		assert.True(t, tx.committed)
		mock.AssertExpectationsForObjects(t, walletRepo, transactionRepo)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "50.00")

		expectLock(walletRepo, wallet)

		resWallet, resTx, err := svc.Withdraw(context.Background(), userID, decimal.RequireFromString("100.00"))

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Nil(t, resWallet)
		assert.Nil(t, resTx)
		assert.True(t, tx.rolledBack)
		walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BalanceConstraintViolation", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, _ := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "100.00")

		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, mock.Anything).Return(util.ErrInsufficientFunds).Once()

		_, _, err := svc.Withdraw(context.Background(), userID, decimal.RequireFromString("100.00"))

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.False(t, errors.Is(err, util.ErrStorage))
	})
}

func TestCreditAndDebitEntryTypes(t *testing.T) {
	userID := uuid.New()
	counterparty := uuid.New()
	amount := decimal.RequireFromString("25.00")

	t.Run("CreditWithCounterparty", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		wallet := walletWithBalance(userID, "0")

		expectLock(walletRepo, wallet)
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, wallet.ID, decimalEq("25")).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, entryOf(domain.TransactionTypePayment, &counterparty, &userID, "25")).Return(nil).Once()

		_, resTx, err := svc.Credit(context.Background(), userID, amount, domain.LedgerEntry{Type: domain.TransactionTypePayment, Counterparty: &counterparty})

		require.NoError(t, err)
		assert.Equal(t, counterparty, *resTx.FromUserID)
	})

	t.Run("RejectsMismatchedType", func(t *testing.T) {
		tx := &stubTx{}
		svc, _, _ := newTestWalletService(tx)

		_, _, err := svc.Credit(context.Background(), userID, amount, domain.LedgerEntry{Type: domain.TransactionTypeWithdrawal})
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		_, _, err = svc.Debit(context.Background(), userID, amount, domain.LedgerEntry{Type: domain.TransactionTypeTopUp})
		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.False(t, tx.began)
	})
}

func TestPay(t *testing.T) {
	payer := uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	payee := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")

	t.Run("LocksInUserIDOrderAndRecordsOneEntry", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		payerWallet := walletWithBalance(payer, "100.00")
		payeeWallet := walletWithBalance(payee, "10.00")

		var lockOrder []uuid.UUID
		walletRepo.On("EnsureWallet", mock.Anything, tx, mock.Anything).Return(nil).Twice()
		walletRepo.On("GetWalletByUserIDForUpdate", mock.Anything, tx, payee).
			Run(func(args mock.Arguments) { lockOrder = append(lockOrder, payee) }).
			Return(payeeWallet, nil).Once()
		walletRepo.On("GetWalletByUserIDForUpdate", mock.Anything, tx, payer).
			Run(func(args mock.Arguments) { lockOrder = append(lockOrder, payer) }).
			Return(payerWallet, nil).Once()
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, payerWallet.ID, decimalEq("60.00")).Return(nil).Once()
		walletRepo.On("UpdateWalletBalance", mock.Anything, tx, payeeWallet.ID, decimalEq("50.00")).Return(nil).Once()
		transactionRepo.On("CreateTransaction", mock.Anything, tx, entryOf(domain.TransactionTypePayment, &payer, &payee, "40.00")).Return(nil).Once()

		fromWallet, toWallet, resTx, err := svc.Pay(context.Background(), payer, payee, decimal.RequireFromString("40.00"))

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{payee, payer}, lockOrder)
		assert.True(t, decimal.RequireFromString("60").Equal(fromWallet.Balance))
		assert.True(t, decimal.RequireFromString("50").Equal(toWallet.Balance))
		assert.Equal(t, domain.TransactionTypePayment, resTx.Type)
		assert.True(t, tx.committed)
		mock.AssertExpectationsForObjects(t, walletRepo, transactionRepo)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)

		expectLock(walletRepo, walletWithBalance(payee, "0"))
		expectLock(walletRepo, walletWithBalance(payer, "10.00"))

		_, _, _, err := svc.Pay(context.Background(), payer, payee, decimal.RequireFromString("40.00"))

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.True(t, tx.rolledBack)
		walletRepo.AssertNotCalled(t, "UpdateWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		transactionRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SelfPayment", func(t *testing.T) {
		tx := &stubTx{}
		svc, _, _ := newTestWalletService(tx)

		_, _, _, err := svc.Pay(context.Background(), payer, payer, decimal.RequireFromString("1.00"))

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.False(t, tx.began)
	})
}

func TestGetOrCreateWallet(t *testing.T) {
	tx := &stubTx{}
	svc, walletRepo, _ := newTestWalletService(tx)
	userID := uuid.New()
	existing := walletWithBalance(userID, "12.50")

	walletRepo.On("EnsureWallet", mock.Anything, tx, mock.MatchedBy(func(w *domain.Wallet) bool {
		return w.UserID == userID && w.Balance.IsZero()
	})).Return(nil).Once()
	walletRepo.On("GetWalletByUserID", mock.Anything, tx, userID).Return(existing, nil).Once()

	wallet, err := svc.GetOrCreateWallet(context.Background(), userID)

	require.NoError(t, err)
	assert.Same(t, existing, wallet)
	assert.True(t, tx.committed)
}

func TestGetTransactionHistory(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)
		entries := []domain.Transaction{*domain.NewTransaction(nil, &userID, decimal.NewFromInt(5), domain.TransactionTypeTopUp)}

		walletRepo.On("GetWalletByUserID", mock.Anything, tx, userID).Return(walletWithBalance(userID, "5"), nil).Once()
		transactionRepo.On("GetTransactionsByUserID", mock.Anything, tx, userID, 20, 0).Return(entries, int64(1), nil).Once()

		transactions, total, err := svc.GetTransactionHistory(context.Background(), userID, 20, 0)

		require.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.EqualValues(t, 1, total)
		assert.False(t, tx.began)
	})

	t.Run("WalletNotFound", func(t *testing.T) {
		tx := &stubTx{}
		svc, walletRepo, transactionRepo := newTestWalletService(tx)

		walletRepo.On("GetWalletByUserID", mock.Anything, tx, userID).Return(nil, util.ErrNotFound).Once()

		_, _, err := svc.GetTransactionHistory(context.Background(), userID, 20, 0)

		assert.ErrorIs(t, err, util.ErrNotFound)
		transactionRepo.AssertNotCalled(t, "GetTransactionsByUserID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidPaging", func(t *testing.T) {
		svc, _, _ := newTestWalletService(&stubTx{})

		_, _, err := svc.GetTransactionHistory(context.Background(), userID, 0, 0)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})
}

func TestGetSummary(t *testing.T) {
	tx := &stubTx{}
	svc, walletRepo, transactionRepo := newTestWalletService(tx)
	userID := uuid.New()

	walletRepo.On("GetWalletByUserID", mock.Anything, tx, userID).Return(walletWithBalance(userID, "370.00"), nil).Once()
	transactionRepo.On("GetTransactionTotals", mock.Anything, tx, userID).Return(&domain.TransactionTotals{
		Deposited: decimal.RequireFromString("500.00"),
		Withdrawn: decimal.RequireFromString("20.00"),
		Spent:     decimal.RequireFromString("140.00"),
		Earned:    decimal.RequireFromString("0"),
		Refunded:  decimal.RequireFromString("30.00"),
	}, nil).Once()

	summary, err := svc.GetSummary(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("370").Equal(summary.Wallet.Balance))
	assert.True(t, decimal.RequireFromString("500").Equal(summary.TotalDeposited))
	assert.True(t, decimal.RequireFromString("20").Equal(summary.TotalWithdrawn))
	assert.True(t, decimal.RequireFromString("110").Equal(summary.TotalSpent))
	assert.True(t, summary.TotalEarned.IsZero())
}
