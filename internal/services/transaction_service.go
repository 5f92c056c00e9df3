// Package services orchestrates the reconciliation flows: every create,
// edit and delete runs its row write and all balance/goal adjustments
// inside one storage transaction, so a failure at any step leaves nothing
// half-applied.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/amqp"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

const (
	summaryCacheSize = 256
	summaryCacheTTL  = time.Minute
)

// TransactionService owns the transaction lifecycle and the denormalized
// aggregates it drags along: account balances, goal progress, summaries.
type TransactionService struct {
	storage   *storage.Repository
	events    *amqp.Client
	summaries *cache.LRUCache[core.Summary]
}

func NewTransactionService(repo *storage.Repository, events *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:   repo,
		events:    events,
		summaries: cache.NewLRUCache[core.Summary](summaryCacheSize, summaryCacheTTL),
	}
}

// TransactionInput is the desired state of a transaction. Amounts arrive
// already rounded to cents by the transport layer.
type TransactionInput struct {
	Type        core.TransactionType
	AccountID   string
	CategoryID  string
	GoalID      string
	AmountCents int64
	Date        time.Time
	Notes       string
}

func (in TransactionInput) toTransaction(id, userID string, createdAt time.Time) core.Transaction {
	now := time.Now().UTC()
	return core.Transaction{
		ID:        id,
		UserID:    userID,
		AccountID: in.AccountID,
		Type:      in.Type,
		Amount:    core.Money{Cents: in.AmountCents},
		Date:      in.Date,
		Category:  core.SplitCategory(in.Type, in.CategoryID),
		GoalID:    in.GoalID,
		Notes:     in.Notes,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

// Create persists a new transaction and applies its cash effect to the
// account and, when goal-linked, its amount to the goal, atomically.
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error) {
	now := time.Now().UTC()
	tx := in.toTransaction(uuid.NewString(), userID, now)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var completed []core.Goal
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		if err := s.checkReferences(ctx, q, tx, in.CategoryID); err != nil {
			return err
		}
		if err := q.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		var err error
		completed, err = s.applyDeltas(ctx, q, userID,
			core.ReconcileBalances(nil, &tx), core.ReconcileGoals(nil, &tx))
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.invalidateSummaries(userID)
	s.notifyCreated(ctx, tx)
	s.notifyCompleted(ctx, userID, completed)

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", tx.ID,
		"type", string(tx.Type),
		"amount_cents", tx.Amount.Cents,
		"account_id", tx.AccountID,
		"goal_id", tx.GoalID)

	return tx, nil
}

// Update reconciles balances and goal progress to the difference between
// the stored state and the desired state, then persists the new row.
func (s *TransactionService) Update(ctx context.Context, userID, id string, in TransactionInput) (core.Transaction, error) {
	var (
		updated   core.Transaction
		completed []core.Goal
	)
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}

		updated = in.toTransaction(old.ID, old.UserID, old.CreatedAt)
		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, q, updated, in.CategoryID); err != nil {
			return err
		}
		if err := q.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		completed, err = s.applyDeltas(ctx, q, userID,
			core.ReconcileBalances(&old, &updated), core.ReconcileGoals(&old, &updated))
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.invalidateSummaries(userID)
	s.notifyCompleted(ctx, userID, completed)

	slog.InfoContext(ctx, "Transaction updated",
		"transaction_id", id,
		"type", string(updated.Type),
		"amount_cents", updated.Amount.Cents)

	return updated, nil
}

// Delete removes a transaction and fully reverses its effects. The row is
// re-fetched inside the transaction so the reversal uses authoritative
// amounts, not whatever the client last saw.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := q.DeleteTransaction(ctx, userID, id); err != nil {
			return err
		}
		_, err = s.applyDeltas(ctx, q, userID,
			core.ReconcileBalances(&old, nil), core.ReconcileGoals(&old, nil))
		return err
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.invalidateSummaries(userID)
	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// Get returns one transaction, ownership-checked.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

// List returns the page of transactions the filter selects.
func (s *TransactionService) List(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.storage.ListTransactions(ctx, f)
}

// Summarize aggregates all rows matching the filter, ignoring pagination.
// Results are cached briefly; any mutation for the user drops the cache.
func (s *TransactionService) Summarize(ctx context.Context, f core.Filter) (core.Summary, error) {
	if err := f.Validate(); err != nil {
		return core.Summary{}, err
	}

	key := summaryKey(f)
	if sum, ok := s.summaries.Get(key); ok {
		return sum, nil
	}

	sum, err := s.storage.SummarizeTransactions(ctx, f)
	if err != nil {
		return core.Summary{}, err
	}
	s.summaries.Set(key, sum)
	return sum, nil
}

// checkReferences verifies that the account, category and goal a
// transaction points at exist and belong to the user. Run inside the flow
// transaction so the references cannot disappear under the insert.
func (s *TransactionService) checkReferences(ctx context.Context, q *storage.Queries, tx core.Transaction, categoryID string) error {
	if _, err := q.GetAccount(ctx, tx.UserID, tx.AccountID); err != nil {
		return fmt.Errorf("account %s: %w", tx.AccountID, err)
	}
	if categoryID != "" {
		ok, err := q.CategoryExists(ctx, tx.Type, categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %s: %w", categoryID, core.ErrNotFound)
		}
	}
	if tx.GoalID != "" {
		if _, err := q.GetGoal(ctx, tx.UserID, tx.GoalID); err != nil {
			return fmt.Errorf("goal %s: %w", tx.GoalID, err)
		}
	}
	return nil
}

// applyDeltas applies every balance and goal adjustment, flipping any goal
// that crossed its target to completed. Returns the goals that completed.
func (s *TransactionService) applyDeltas(ctx context.Context, q *storage.Queries, userID string, balances []core.BalanceDelta, goals []core.GoalDelta) ([]core.Goal, error) {
	for _, d := range balances {
		if err := q.ApplyBalanceDelta(ctx, userID, d); err != nil {
			return nil, err
		}
	}

	var completed []core.Goal
	for _, d := range goals {
		if err := q.ApplyGoalDelta(ctx, userID, d); err != nil {
			return nil, err
		}
		if d.Cents <= 0 {
			continue
		}
		g, err := q.GetGoal(ctx, userID, d.GoalID)
		if err != nil {
			return nil, err
		}
		if g.Reached() && g.Status != core.GoalCompleted {
			if err := q.SetGoalStatus(ctx, userID, g.ID, core.GoalCompleted); err != nil {
				return nil, err
			}
			g.Status = core.GoalCompleted
			completed = append(completed, g)
		}
	}
	return completed, nil
}

func (s *TransactionService) invalidateSummaries(userID string) {
	s.summaries.DeletePrefix(userID + "|")
}

func summaryKey(f core.Filter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d|%d|%d|%s",
		f.UserID, f.Type, f.AccountID, f.CategoryID, f.GoalID,
		f.From.Unix(), f.To.Unix(), f.MinCents, f.MaxCents, f.Search)
}

// Notifications ride outside the flow transaction: the mutation is already
// durable, so a broker failure costs an email, never consistency.
func (s *TransactionService) notifyCreated(ctx context.Context, tx core.Transaction) {
	if s.events == nil {
		return
	}
	n := &amqp.Notification{
		Kind:            amqp.KindTransactionCreated,
		UserID:          tx.UserID,
		TransactionID:   tx.ID,
		TransactionType: string(tx.Type),
		AmountCents:     tx.Amount.Cents,
		GoalID:          tx.GoalID,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, n); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction notification",
			"transaction_id", tx.ID, "error", err)
	}
}

func (s *TransactionService) notifyCompleted(ctx context.Context, userID string, goals []core.Goal) {
	if s.events == nil {
		return
	}
	for _, g := range goals {
		n := &amqp.Notification{
			Kind:        amqp.KindGoalCompleted,
			UserID:      userID,
			GoalID:      g.ID,
			GoalName:    g.Name,
			TargetCents: g.TargetAmount.Cents,
			Timestamp:   time.Now().UTC(),
		}
		if err := s.events.Publish(ctx, n); err != nil {
			slog.ErrorContext(ctx, "Failed to publish goal completion notification",
				"goal_id", g.ID, "error", err)
		}
	}
}
