package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, email string) string {
	t.Helper()

	id := uuid.NewString()
	err := repo.CreateUser(context.Background(), User{
		ID: id, Email: email, PasswordHash: "x", CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func seedAccount(t *testing.T, repo *Repository, userID string) string {
	t.Helper()

	now := time.Now().UTC()
	a := core.Account{
		ID: uuid.NewString(), UserID: userID, Name: "Checking",
		Type: core.AccountChecking, Currency: "EUR", Status: core.AccountActive,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a.ID
}

func makeTransaction(userID, accountID string, txType core.TransactionType, cents int64, date time.Time) core.Transaction {
	now := time.Now().UTC()
	tx := core.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		AccountID: accountID,
		Type:      txType,
		Amount:    core.Money{Cents: cents},
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch txType {
	case core.Income:
		tx.Category = core.CategoryRef{IncomeCategoryID: "inc-salary"}
	case core.Expense:
		tx.Category = core.CategoryRef{ExpenseCategoryID: "exp-other"}
	}
	return tx
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	tx := makeTransaction(userID, accountID, core.Expense, 1234, date)
	tx.Notes = "weekly shop"

	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, userID, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != 1234 || got.Notes != "weekly shop" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %v, want %v", got.Date, date)
	}
	if got.Category.ExpenseCategoryID != "exp-other" || got.Category.IncomeCategoryID != "" {
		t.Errorf("category columns = %+v", got.Category)
	}
}

func TestGetTransactionOwnership(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "anna@example.com")
	other := seedUser(t, repo, "bruno@example.com")
	accountID := seedAccount(t, repo, owner)

	tx := makeTransaction(owner, accountID, core.Expense, 500, time.Now().UTC())
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := repo.GetTransaction(ctx, other, tx.ID); !errors.Is(err, core.ErrNotOwner) {
		t.Errorf("foreign get = %v, want ErrNotOwner", err)
	}
	if _, err := repo.GetTransaction(ctx, owner, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing get = %v, want ErrNotFound", err)
	}
}

func TestApplyBalanceDelta(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	if err := repo.ApplyBalanceDelta(ctx, userID, core.BalanceDelta{AccountID: accountID, Cents: 2500}); err != nil {
		t.Fatalf("ApplyBalanceDelta: %v", err)
	}
	if err := repo.ApplyBalanceDelta(ctx, userID, core.BalanceDelta{AccountID: accountID, Cents: -1000}); err != nil {
		t.Fatalf("ApplyBalanceDelta: %v", err)
	}

	a, err := repo.GetAccount(ctx, userID, accountID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if a.Balance.Cents != 1500 {
		t.Errorf("balance = %d, want 1500", a.Balance.Cents)
	}

	err = repo.ApplyBalanceDelta(ctx, userID, core.BalanceDelta{AccountID: "missing", Cents: 100})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delta on missing account = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsFilterAndSort(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	dates := []time.Time{
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	cents := []int64{5000, 1000, 3000}
	for i, d := range dates {
		tx := makeTransaction(userID, accountID, core.Expense, cents[i], d)
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	// Default ordering is date descending.
	txs, err := repo.ListTransactions(ctx, core.Filter{UserID: userID})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d rows, want 3", len(txs))
	}
	if !txs[0].Date.After(txs[2].Date) {
		t.Errorf("default order not date descending: %v, %v", txs[0].Date, txs[2].Date)
	}

	// Sort by amount ascending.
	txs, err = repo.ListTransactions(ctx, core.Filter{
		UserID: userID, SortBy: core.SortByAmount, SortAsc: true,
	})
	if err != nil {
		t.Fatalf("ListTransactions by amount: %v", err)
	}
	if txs[0].Amount.Cents != 1000 || txs[2].Amount.Cents != 5000 {
		t.Errorf("amount order = %d..%d, want 1000..5000", txs[0].Amount.Cents, txs[2].Amount.Cents)
	}

	// Date range is inclusive on both ends.
	txs, err = repo.ListTransactions(ctx, core.Filter{
		UserID: userID,
		From:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ListTransactions with range: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("range returned %d rows, want 2", len(txs))
	}

	// Amount bounds.
	txs, err = repo.ListTransactions(ctx, core.Filter{
		UserID: userID, MinCents: 2000, MaxCents: 4000,
	})
	if err != nil {
		t.Fatalf("ListTransactions with bounds: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount.Cents != 3000 {
		t.Errorf("bounds returned %d rows", len(txs))
	}

	// Pagination.
	txs, err = repo.ListTransactions(ctx, core.Filter{UserID: userID, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListTransactions with pagination: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("page returned %d rows, want 1", len(txs))
	}
}

func TestSearchEscapesLikeWildcards(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	tx := makeTransaction(userID, accountID, core.Expense, 100, time.Now().UTC())
	tx.Notes = "50% discount"
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	other := makeTransaction(userID, accountID, core.Expense, 200, time.Now().UTC())
	other.Notes = "regular price"
	if err := repo.CreateTransaction(ctx, other); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	txs, err := repo.ListTransactions(ctx, core.Filter{UserID: userID, Search: "50%"})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Notes != "50% discount" {
		t.Errorf("literal %% search returned %d rows", len(txs))
	}
}

func TestSummarizeTransactions(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	rows := []struct {
		txType core.TransactionType
		cents  int64
	}{
		{core.Income, 100000},
		{core.Expense, 30000},
		{core.Expense, 20000},
	}
	for _, row := range rows {
		tx := makeTransaction(userID, accountID, row.txType, row.cents, time.Now().UTC())
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	sum, err := repo.SummarizeTransactions(ctx, core.Filter{UserID: userID})
	if err != nil {
		t.Fatalf("SummarizeTransactions: %v", err)
	}
	if sum.IncomeCents != 100000 || sum.IncomeCount != 1 {
		t.Errorf("income = %d/%d", sum.IncomeCents, sum.IncomeCount)
	}
	if sum.ExpenseCents != 50000 || sum.ExpenseCount != 2 {
		t.Errorf("expenses = %d/%d", sum.ExpenseCents, sum.ExpenseCount)
	}
	if sum.NetCents() != 50000 {
		t.Errorf("net = %d, want 50000", sum.NetCents())
	}

	// Empty filter result yields a zero summary, not an error.
	empty, err := repo.SummarizeTransactions(ctx, core.Filter{UserID: userID, Type: core.Contribution})
	if err != nil {
		t.Fatalf("SummarizeTransactions empty: %v", err)
	}
	if empty.Count() != 0 {
		t.Errorf("empty summary count = %d", empty.Count())
	}
}

func TestInTxRollsBack(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(q *Queries) error {
		if err := q.ApplyBalanceDelta(ctx, userID, core.BalanceDelta{AccountID: accountID, Cents: 1000}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx = %v, want boom", err)
	}

	a, err := repo.GetAccount(ctx, userID, accountID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if a.Balance.Cents != 0 {
		t.Errorf("balance = %d after rollback, want 0", a.Balance.Cents)
	}
}

func TestSessions(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")

	if err := repo.CreateSession(ctx, "tok-live", userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := repo.CreateSession(ctx, "tok-dead", userID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	u, err := repo.GetSessionUser(ctx, "tok-live")
	if err != nil {
		t.Fatalf("GetSessionUser: %v", err)
	}
	if u.ID != userID {
		t.Errorf("session user = %s, want %s", u.ID, userID)
	}

	if _, err := repo.GetSessionUser(ctx, "tok-dead"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expired session = %v, want ErrNotFound", err)
	}

	n, err := repo.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d sessions, want 1", n)
	}
}

func TestCategoryExists(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		txType core.TransactionType
		id     string
		want   bool
	}{
		{core.Income, "inc-salary", true},
		{core.Expense, "exp-groceries", true},
		{core.Income, "exp-groceries", false},
		{core.Expense, "inc-salary", false},
		{core.Expense, "nope", false},
	}
	for _, tt := range tests {
		ok, err := repo.CategoryExists(ctx, tt.txType, tt.id)
		if err != nil {
			t.Fatalf("CategoryExists(%s, %s): %v", tt.txType, tt.id, err)
		}
		if ok != tt.want {
			t.Errorf("CategoryExists(%s, %s) = %v, want %v", tt.txType, tt.id, ok, tt.want)
		}
	}
}

func TestAdminOverview(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo, "anna@example.com")
	accountID := seedAccount(t, repo, userID)

	for _, cents := range []int64{100000, 4000} {
		txType := core.Expense
		if cents > 50000 {
			txType = core.Income
		}
		tx := makeTransaction(userID, accountID, txType, cents, time.Now().UTC())
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	ov, err := repo.AdminOverview(ctx)
	if err != nil {
		t.Fatalf("AdminOverview: %v", err)
	}
	if ov.UserCount != 1 || ov.AccountCount != 1 || ov.TransactionCount != 2 {
		t.Errorf("counts = %d/%d/%d", ov.UserCount, ov.AccountCount, ov.TransactionCount)
	}
	if ov.TotalIncomeCents != 100000 || ov.TotalExpenseCents != 4000 {
		t.Errorf("totals = %d/%d", ov.TotalIncomeCents, ov.TotalExpenseCents)
	}
	if len(ov.PerUser) != 1 || ov.PerUser[0].TransactionCount != 2 {
		t.Errorf("per-user activity = %+v", ov.PerUser)
	}
}
