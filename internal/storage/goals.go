package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
)

const goalColumns = `id, user_id, goal_name, target_cents, current_cents,
	target_date, priority, status, is_family_goal, created_at, updated_at`

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g                core.Goal
		targetDate       string
		created, updated string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&targetDate, &g.Priority, &g.Status, &g.IsFamilyGoal, &created, &updated)
	if err != nil {
		return core.Goal{}, err
	}
	if targetDate != "" {
		if t, err := time.Parse(dateLayout, targetDate); err == nil {
			g.TargetDate = t
		}
	}
	if t, err := time.Parse(timeLayout, created); err == nil {
		g.CreatedAt = t
	}
	if t, err := time.Parse(timeLayout, updated); err == nil {
		g.UpdatedAt = t
	}
	return g, nil
}

func (q *Queries) CreateGoal(ctx context.Context, g core.Goal) error {
	targetDate := ""
	if !g.TargetDate.IsZero() {
		targetDate = g.TargetDate.Format(dateLayout)
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		targetDate, g.Priority, string(g.Status), g.IsFamilyGoal,
		g.CreatedAt.Format(timeLayout), g.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (q *Queries) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, core.ErrNotFound
		}
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (q *Queries) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY goal_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// SetGoalStatus flips a goal's lifecycle state, used when progress crosses
// the target inside a reconciliation transaction.
func (q *Queries) SetGoalStatus(ctx context.Context, userID, id string, status core.GoalStatus) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE goals SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(status), time.Now().UTC().Format(timeLayout), id, userID)
	if err != nil {
		return fmt.Errorf("set goal status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
