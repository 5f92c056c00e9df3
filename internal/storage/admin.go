package storage

import (
	"context"
	"fmt"
)

// AdminOverview aggregates system-wide figures for the admin dashboard.
type AdminOverview struct {
	UserCount         int64
	AccountCount      int64
	GoalCount         int64
	TransactionCount  int64
	TotalIncomeCents  int64
	TotalExpenseCents int64
	PerUser           []UserActivity
}

// UserActivity is one user's transaction volume.
type UserActivity struct {
	UserID           string
	Email            string
	TransactionCount int64
	VolumeCents      int64
}

func (q *Queries) AdminOverview(ctx context.Context) (AdminOverview, error) {
	var ov AdminOverview

	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM accounts),
			(SELECT COUNT(*) FROM goals),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE type = 'income'),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE type IN ('expense', 'contribution'))`).
		Scan(&ov.UserCount, &ov.AccountCount, &ov.GoalCount, &ov.TransactionCount,
			&ov.TotalIncomeCents, &ov.TotalExpenseCents)
	if err != nil {
		return AdminOverview{}, fmt.Errorf("admin totals: %w", err)
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT u.id, u.email, COUNT(t.id), COALESCE(SUM(t.amount_cents), 0)
		FROM users u
		LEFT JOIN transactions t ON t.user_id = u.id
		GROUP BY u.id, u.email
		ORDER BY COUNT(t.id) DESC`)
	if err != nil {
		return AdminOverview{}, fmt.Errorf("admin per-user activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ua UserActivity
		if err := rows.Scan(&ua.UserID, &ua.Email, &ua.TransactionCount, &ua.VolumeCents); err != nil {
			return AdminOverview{}, fmt.Errorf("scan user activity: %w", err)
		}
		ov.PerUser = append(ov.PerUser, ua)
	}
	if err := rows.Err(); err != nil {
		return AdminOverview{}, fmt.Errorf("iterate user activity: %w", err)
	}
	return ov, nil
}
