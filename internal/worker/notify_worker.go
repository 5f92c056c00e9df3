// Package worker consumes notification messages and turns them into
// emails.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/mail"
	"bilancio/internal/storage"
)

// RecipientLookup resolves a user id to the address mail goes to.
type RecipientLookup interface {
	GetUser(ctx context.Context, id string) (storage.User, error)
}

// NotifyWorker handles notification messages from the AMQP queue.
type NotifyWorker struct {
	users  RecipientLookup
	sender mail.Sender
}

func NewNotifyWorker(users RecipientLookup, sender mail.Sender) *NotifyWorker {
	return &NotifyWorker{users: users, sender: sender}
}

// HandleNotification processes a single notification message. Unknown
// kinds are dropped with a warning rather than requeued.
func (w *NotifyWorker) HandleNotification(ctx context.Context, n *amqp.Notification) error {
	slog.InfoContext(ctx, "Processing notification",
		"kind", n.Kind,
		"user_id", n.UserID)

	user, err := w.users.GetUser(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("look up recipient %s: %w", n.UserID, err)
	}

	var subject, body string
	switch n.Kind {
	case amqp.KindTransactionCreated:
		subject, body = transactionCreatedMail(n)
	case amqp.KindGoalCompleted:
		subject, body = goalCompletedMail(n)
	default:
		slog.WarnContext(ctx, "Dropping notification of unknown kind", "kind", n.Kind)
		return nil
	}

	if err := w.sender.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send %s mail: %w", n.Kind, err)
	}

	slog.InfoContext(ctx, "Notification delivered",
		"kind", n.Kind,
		"to", user.Email)
	return nil
}

func transactionCreatedMail(n *amqp.Notification) (subject, body string) {
	subject = fmt.Sprintf("New %s recorded: %s", n.TransactionType, core.FormatCents(n.AmountCents))
	body = fmt.Sprintf(
		"A new %s of %s was recorded on %s.\n\nTransaction id: %s\n",
		n.TransactionType,
		core.FormatCents(n.AmountCents),
		n.Timestamp.Format("2006-01-02"),
		n.TransactionID,
	)
	return subject, body
}

func goalCompletedMail(n *amqp.Notification) (subject, body string) {
	subject = fmt.Sprintf("Goal reached: %s", n.GoalName)
	body = fmt.Sprintf(
		"Congratulations, your goal %q reached its target of %s.\n\nGoal id: %s\n",
		n.GoalName,
		core.FormatCents(n.TargetCents),
		n.GoalID,
	)
	return subject, body
}
