package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income       TransactionType = "income"
	Expense      TransactionType = "expense"
	Contribution TransactionType = "contribution"
)

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountClosed   AccountStatus = "closed"
)

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalPaused     GoalStatus = "paused"
)

type (
	TransactionType string
	AccountType     string
	AccountStatus   string
	GoalStatus      string

	Money struct {
		Cents int64
	}

	// Transaction is one money movement against an account, optionally
	// linked to a savings goal.
	Transaction struct {
		ID        string
		UserID    string
		AccountID string
		Type      TransactionType
		Amount    Money
		Date      time.Time
		Category  CategoryRef
		GoalID    string // empty when not goal-linked
		Notes     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Account struct {
		ID        string
		UserID    string
		Name      string
		Type      AccountType
		Balance   Money
		Currency  string
		IsDefault bool
		Status    AccountStatus
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Goal struct {
		ID            string
		UserID        string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    time.Time
		Priority      string
		Status        GoalStatus
		IsFamilyGoal  bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	Category struct {
		ID   string
		Name string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrMissingDate     = errors.New("missing date")
	ErrMissingAccount  = errors.New("missing account")
	ErrMissingCategory = errors.New("missing category")
	ErrMissingGoal     = errors.New("contribution requires a goal")
	ErrCategoryOnGoal  = errors.New("contribution cannot carry a category")
	ErrEmptyName       = errors.New("empty name")
	ErrNotesTooLong    = errors.New("notes too long (max 500 characters)")
	ErrNotFound        = errors.New("not found")
	ErrNotOwner        = errors.New("row does not belong to user")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Contribution:
		return true
	}
	return false
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// Reached reports whether the goal's progress has crossed its target.
func (g Goal) Reached() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if tx.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(tx.AccountID) == "" {
		return ErrMissingAccount
	}
	if len(tx.Notes) > 500 {
		return ErrNotesTooLong
	}
	switch tx.Type {
	case Contribution:
		if strings.TrimSpace(tx.GoalID) == "" {
			return ErrMissingGoal
		}
		if !tx.Category.Empty() {
			return ErrCategoryOnGoal
		}
	default:
		if tx.Category.Empty() {
			return ErrMissingCategory
		}
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("account name too long (max 100 characters)")
	}
	if !a.Type.Valid() {
		return errors.New("invalid account type")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return errors.New("goal name too long (max 100 characters)")
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	return nil
}
