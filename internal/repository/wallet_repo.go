// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"workid-wallet/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// EnsureWallet inserts wallet unless one already exists for wallet.UserID.
	// Concurrent callers for the same user never produce two rows.
	EnsureWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves a user's wallet without locking it.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Wallet, error)
	// GetWalletByUserIDForUpdate retrieves and row-locks a user's wallet until the enclosing transaction ends.
	GetWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Wallet, error)
	// UpdateWalletBalance sets the balance of a wallet.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID uuid.UUID, balance decimal.Decimal) error
}
