package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type fakeUsers struct {
	users map[string]storage.User
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (storage.User, error) {
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, core.ErrNotFound
	}
	return u, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestHandleTransactionCreated(t *testing.T) {
	users := &fakeUsers{users: map[string]storage.User{
		"u1": {ID: "u1", Email: "anna@example.com"},
	}}
	sender := &fakeSender{}
	w := NewNotifyWorker(users, sender)

	err := w.HandleNotification(context.Background(), &amqp.Notification{
		Kind:            amqp.KindTransactionCreated,
		UserID:          "u1",
		TransactionID:   "tx1",
		TransactionType: "expense",
		AmountCents:     12345,
		Timestamp:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sender.sent))
	}
	m := sender.sent[0]
	if m.to != "anna@example.com" {
		t.Errorf("to = %q", m.to)
	}
	if !strings.Contains(m.subject, "123.45") {
		t.Errorf("subject %q missing amount", m.subject)
	}
	if !strings.Contains(m.body, "2026-03-14") {
		t.Errorf("body %q missing date", m.body)
	}
}

func TestHandleGoalCompleted(t *testing.T) {
	users := &fakeUsers{users: map[string]storage.User{
		"u1": {ID: "u1", Email: "anna@example.com"},
	}}
	sender := &fakeSender{}
	w := NewNotifyWorker(users, sender)

	err := w.HandleNotification(context.Background(), &amqp.Notification{
		Kind:        amqp.KindGoalCompleted,
		UserID:      "u1",
		GoalID:      "g1",
		GoalName:    "Vacation",
		TargetCents: 200000,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].subject, "Vacation") {
		t.Errorf("subject %q missing goal name", sender.sent[0].subject)
	}
}

func TestUnknownKindDropped(t *testing.T) {
	users := &fakeUsers{users: map[string]storage.User{
		"u1": {ID: "u1", Email: "anna@example.com"},
	}}
	sender := &fakeSender{}
	w := NewNotifyWorker(users, sender)

	err := w.HandleNotification(context.Background(), &amqp.Notification{
		Kind:   "something.else",
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("unknown kind should be dropped without error, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d mails for unknown kind, want 0", len(sender.sent))
	}
}

func TestUnknownRecipientFails(t *testing.T) {
	w := NewNotifyWorker(&fakeUsers{users: map[string]storage.User{}}, &fakeSender{})

	err := w.HandleNotification(context.Background(), &amqp.Notification{
		Kind:   amqp.KindTransactionCreated,
		UserID: "missing",
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("HandleNotification = %v, want ErrNotFound", err)
	}
}

func TestSendFailurePropagates(t *testing.T) {
	users := &fakeUsers{users: map[string]storage.User{
		"u1": {ID: "u1", Email: "anna@example.com"},
	}}
	sendErr := errors.New("smtp down")
	w := NewNotifyWorker(users, &fakeSender{err: sendErr})

	err := w.HandleNotification(context.Background(), &amqp.Notification{
		Kind:   amqp.KindGoalCompleted,
		UserID: "u1",
	})
	if !errors.Is(err, sendErr) {
		t.Errorf("HandleNotification = %v, want wrapped send error", err)
	}
}
