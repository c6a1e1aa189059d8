// internal/service/unit_of_work.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workid-wallet/internal/repository"
	"workid-wallet/internal/util"
	"workid-wallet/pkg/db"
)

// DefaultStorageTimeout bounds storage calls when no timeout is configured.
const DefaultStorageTimeout = 5 * time.Second

// UnitOfWork runs ledger operations against the store. Mutations run inside a
// single database transaction; reads use the plain executor.
type UnitOfWork struct {
	dbBeginner     db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor     repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	beginTx        db.BeginTxFunc
	commitTx       db.CommitTxFunc
	rollbackTx     db.RollbackTxFunc
	storageTimeout time.Duration
}

// NewUnitOfWork creates a UnitOfWork. A non-positive storageTimeout falls back
// to DefaultStorageTimeout.
func NewUnitOfWork(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	storageTimeout time.Duration,
) *UnitOfWork {
	if storageTimeout <= 0 {
		storageTimeout = DefaultStorageTimeout
	}
	return &UnitOfWork{
		dbBeginner:     dbBeginner,
		dbExecutor:     dbExecutor,
		beginTx:        beginTx,
		commitTx:       commitTx,
		rollbackTx:     rollbackTx,
		storageTimeout: storageTimeout,
	}
}

// InTx runs fn inside one transaction and commits if fn succeeds. Any error
// from fn, or a context cancelled before commit, rolls everything back.
// Errors outside the domain taxonomy come back as *util.StorageError.
func (u *UnitOfWork) InTx(ctx context.Context, op string, fn func(ctx context.Context, q repository.DBExecutor) error) error {
	ctx, cancel := context.WithTimeout(ctx, u.storageTimeout)
	defer cancel()

	txController, err := u.beginTx(ctx, u.dbBeginner)
	if err != nil {
		return util.NewStorageError(op, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer u.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return util.NewStorageError(op, errors.New("transaction controller does not implement DBExecutor"))
	}

	if err := fn(ctx, txExecutor); err != nil {
		return util.NewStorageError(op, err)
	}

	if err := ctx.Err(); err != nil {
		return util.NewStorageError(op, err)
	}

	if err := u.commitTx(txController); err != nil {
		return util.NewStorageError(op, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// Read runs fn against the non-transactional executor under the storage timeout.
func (u *UnitOfWork) Read(ctx context.Context, op string, fn func(ctx context.Context, q repository.DBExecutor) error) error {
	ctx, cancel := context.WithTimeout(ctx, u.storageTimeout)
	defer cancel()

	return util.NewStorageError(op, fn(ctx, u.dbExecutor))
}
