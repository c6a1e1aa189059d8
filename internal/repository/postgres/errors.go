// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"github.com/lib/pq"

	"workid-wallet/internal/util"
)

const (
	checkViolation      pq.ErrorCode = "23514"
	numericOutOfRange   pq.ErrorCode = "22003"
	walletBalanceCheck               = "wallets_balance_check"
)

// translateError maps PostgreSQL errors that carry domain meaning onto the
// ledger taxonomy. Everything else is returned unchanged.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == checkViolation && pqErr.Constraint == walletBalanceCheck:
			return util.ErrInsufficientFunds
		case pqErr.Code == numericOutOfRange:
			return util.ErrInvalidAmount
		}
	}
	return err
}
