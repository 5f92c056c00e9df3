package storage

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

func (q *Queries) listCategories(ctx context.Context, table string) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func (q *Queries) ListIncomeCategories(ctx context.Context) ([]core.Category, error) {
	return q.listCategories(ctx, "income_categories")
}

func (q *Queries) ListExpenseCategories(ctx context.Context) ([]core.Category, error) {
	return q.listCategories(ctx, "expense_categories")
}

// CategoryExists checks an id against the table the transaction type
// implies, so an expense can never point at an income category.
func (q *Queries) CategoryExists(ctx context.Context, txType core.TransactionType, id string) (bool, error) {
	table := "expense_categories"
	if txType == core.Income {
		table = "income_categories"
	}
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return n > 0, nil
}
