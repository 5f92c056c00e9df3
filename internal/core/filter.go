package core

import (
	"errors"
	"time"
)

// Sortable transaction list columns.
const (
	SortByDate   = "date"
	SortByAmount = "amount"
)

// Filter describes one transaction query: the list endpoint and the
// summary endpoint compile the same filter to the same predicates, so the
// aggregate always covers every matching row, not just the current page.
type Filter struct {
	UserID     string
	Type       TransactionType // empty = all types
	AccountID  string
	CategoryID string
	GoalID     string
	From       time.Time // inclusive, zero = open
	To         time.Time // inclusive, zero = open
	MinCents   int64     // 0 = open
	MaxCents   int64     // 0 = open
	Search     string    // substring match on notes
	SortBy     string    // date (default) or amount
	SortAsc    bool
	Limit      int
	Offset     int
}

func (f Filter) Validate() error {
	if f.UserID == "" {
		return errors.New("filter requires a user")
	}
	if f.Type != "" && !f.Type.Valid() {
		return ErrInvalidType
	}
	switch f.SortBy {
	case "", SortByDate, SortByAmount:
	default:
		return errors.New("unsupported sort column")
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return errors.New("date range end before start")
	}
	if f.MinCents < 0 || f.MaxCents < 0 {
		return ErrInvalidAmount
	}
	if f.Limit < 0 || f.Offset < 0 {
		return errors.New("negative pagination")
	}
	return nil
}

// Summary aggregates every transaction matching a filter.
type Summary struct {
	IncomeCents       int64
	ExpenseCents      int64
	ContributionCents int64
	IncomeCount       int64
	ExpenseCount      int64
	ContributionCount int64
}

// Count is the total number of matching transactions.
func (s Summary) Count() int64 {
	return s.IncomeCount + s.ExpenseCount + s.ContributionCount
}

// NetCents is the combined cash effect of all matching transactions.
func (s Summary) NetCents() int64 {
	return s.IncomeCents - s.ExpenseCents - s.ContributionCents
}

// AverageCents is the mean absolute amount, zero when nothing matched.
func (s Summary) AverageCents() int64 {
	n := s.Count()
	if n == 0 {
		return 0
	}
	return (s.IncomeCents + s.ExpenseCents + s.ContributionCents) / n
}
