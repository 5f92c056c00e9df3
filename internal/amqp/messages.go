package amqp

import (
	"encoding/json"
	"time"
)

// Notification kinds routed through the mail queue.
const (
	KindTransactionCreated = "transaction.created"
	KindGoalCompleted      = "goal.completed"
)

// Notification is the envelope consumed by the mail worker. It carries the
// ids and display fields the worker needs; anything else it fetches from
// storage.
type Notification struct {
	Kind            string    `json:"kind"`
	UserID          string    `json:"user_id"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	TransactionType string    `json:"transaction_type,omitempty"`
	AmountCents     int64     `json:"amount_cents,omitempty"`
	GoalID          string    `json:"goal_id,omitempty"`
	GoalName        string    `json:"goal_name,omitempty"`
	TargetCents     int64     `json:"target_cents,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func NotificationFromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
