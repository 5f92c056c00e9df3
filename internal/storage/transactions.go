package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bilancio/internal/core"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

const transactionColumns = `id, user_id, account_id, type, amount_cents, tx_date,
	income_category_id, expense_category_id, goal_id, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                time.Time
		tx               core.Transaction
		txDate           string
		incomeCat        sql.NullString
		expenseCat       sql.NullString
		goalID           sql.NullString
		created, updated string
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.AccountID, &tx.Type, &tx.Amount.Cents, &txDate,
		&incomeCat, &expenseCat, &goalID, &tx.Notes, &created, &updated)
	if err != nil {
		return core.Transaction{}, err
	}
	if t, err = time.Parse(dateLayout, txDate); err != nil {
		return core.Transaction{}, fmt.Errorf("parse tx_date %q: %w", txDate, err)
	}
	tx.Date = t
	tx.Category = core.CategoryRef{
		IncomeCategoryID:  incomeCat.String,
		ExpenseCategoryID: expenseCat.String,
	}
	tx.GoalID = goalID.String
	if t, err = time.Parse(timeLayout, created); err == nil {
		tx.CreatedAt = t
	}
	if t, err = time.Parse(timeLayout, updated); err == nil {
		tx.UpdatedAt = t
	}
	return tx, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateTransaction inserts a row. ID and timestamps must be set by the
// caller so the row returned to clients matches what was stored.
func (q *Queries) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.AccountID, string(tx.Type), tx.Amount.Cents,
		tx.Date.Format(dateLayout),
		nullable(tx.Category.IncomeCategoryID), nullable(tx.Category.ExpenseCategoryID),
		nullable(tx.GoalID), tx.Notes,
		tx.CreatedAt.Format(timeLayout), tx.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetTransaction fetches the authoritative row and verifies ownership.
func (q *Queries) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if tx.UserID != userID {
		return core.Transaction{}, core.ErrNotOwner
	}
	return tx, nil
}

// UpdateTransaction persists the new state of a row, writing both category
// columns so the one the previous type used is cleared.
func (q *Queries) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, type = ?, amount_cents = ?, tx_date = ?,
		    income_category_id = ?, expense_category_id = ?, goal_id = ?,
		    notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		tx.AccountID, string(tx.Type), tx.Amount.Cents, tx.Date.Format(dateLayout),
		nullable(tx.Category.IncomeCategoryID), nullable(tx.Category.ExpenseCategoryID),
		nullable(tx.GoalID), tx.Notes, tx.UpdatedAt.Format(timeLayout),
		tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ApplyBalanceDelta increments an account balance by a signed delta. The
// increment is additive in SQL, never an absolute overwrite, so overlapping
// flows cannot lose each other's updates.
func (q *Queries) ApplyBalanceDelta(ctx context.Context, userID string, d core.BalanceDelta) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		d.Cents, time.Now().UTC().Format(timeLayout), d.AccountID, userID)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", d.AccountID, core.ErrNotFound)
	}
	return nil
}

// ApplyGoalDelta increments a goal's progress by a signed delta.
func (q *Queries) ApplyGoalDelta(ctx context.Context, userID string, d core.GoalDelta) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE goals SET current_cents = current_cents + ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		d.Cents, time.Now().UTC().Format(timeLayout), d.GoalID, userID)
	if err != nil {
		return fmt.Errorf("apply goal delta: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("goal %s: %w", d.GoalID, core.ErrNotFound)
	}
	return nil
}

// buildFilterWhere compiles a filter into predicates shared by the list
// and summary queries.
func buildFilterWhere(f core.Filter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.AccountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		conds = append(conds, "(income_category_id = ? OR expense_category_id = ?)")
		args = append(args, f.CategoryID, f.CategoryID)
	}
	if f.GoalID != "" {
		conds = append(conds, "goal_id = ?")
		args = append(args, f.GoalID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "tx_date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "tx_date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	if f.MinCents > 0 {
		conds = append(conds, "amount_cents >= ?")
		args = append(args, f.MinCents)
	}
	if f.MaxCents > 0 {
		conds = append(conds, "amount_cents <= ?")
		args = append(args, f.MaxCents)
	}
	if f.Search != "" {
		conds = append(conds, "notes LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}

	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// ListTransactions returns the page of rows the filter selects.
func (q *Queries) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	where, args := buildFilterWhere(f)

	orderCol := "tx_date"
	if f.SortBy == core.SortByAmount {
		orderCol = "amount_cents"
	}
	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + where +
		` ORDER BY ` + orderCol + ` ` + dir + `, created_at DESC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// SummarizeTransactions aggregates every row the filter matches, ignoring
// pagination. The reduction happens in SQL rather than over fetched rows.
func (q *Queries) SummarizeTransactions(ctx context.Context, f core.Filter) (core.Summary, error) {
	where, args := buildFilterWhere(f)

	rows, err := q.db.QueryContext(ctx, `
		SELECT type, COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM transactions WHERE `+where+` GROUP BY type`, args...)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	defer rows.Close()

	var s core.Summary
	for rows.Next() {
		var (
			txType string
			count  int64
			cents  int64
		)
		if err := rows.Scan(&txType, &count, &cents); err != nil {
			return core.Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch core.TransactionType(txType) {
		case core.Income:
			s.IncomeCount, s.IncomeCents = count, cents
		case core.Expense:
			s.ExpenseCount, s.ExpenseCents = count, cents
		case core.Contribution:
			s.ContributionCount, s.ContributionCents = count, cents
		}
	}
	if err := rows.Err(); err != nil {
		return core.Summary{}, fmt.Errorf("iterate summary rows: %w", err)
	}
	return s, nil
}
