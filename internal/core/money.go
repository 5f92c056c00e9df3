// Package core holds the budgeting domain: money, transactions, accounts,
// goals and the reconciliation arithmetic that keeps account balances and
// goal progress consistent with the transaction log.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents caps a single transaction amount. Anything above this is
// almost certainly a typo rather than a real money movement.
const MaxAmountCents int64 = 100_000_000_000

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding to the smallest currency unit. Both dot (12.34) and comma
// (12,34) separators are accepted. Only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || !cents.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	v := cents.IntPart()
	if v <= 0 || v > MaxAmountCents {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// String formats the amount as a plain decimal ("12.34"), suitable for
// API payloads. Use cents for arithmetic.
func (m Money) String() string {
	return FormatCents(m.Cents)
}

// FormatCents renders cents as a decimal string with two fraction digits.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
