// internal/domain/money.go
package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of fraction digits persisted for monetary amounts.
const AmountScale = 2

// MaxAmount is the largest value a NUMERIC(12, 2) column holds. It bounds
// both single amounts and wallet balances.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// IsValidAmount reports whether amount is strictly positive, representable
// with AmountScale fraction digits and no larger than MaxAmount.
func IsValidAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() || amount.GreaterThan(MaxAmount) {
		return false
	}
	return amount.Equal(amount.Round(AmountScale))
}
