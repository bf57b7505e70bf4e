package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spending/internal/core"
)

// EventType names the lifecycle change an ExpenseEvent reports.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

func (t EventType) valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// ExpenseEvent is published after an expense write commits. It carries the
// expense as it is after the change (as it was, for deletions).
type ExpenseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	ExpenseID   int64          `json:"expense_id"`
	ChildID     int64          `json:"child_id"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Date        core.Timestamp `json:"date"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewExpenseEvent builds an event with a fresh id for e.
func NewExpenseEvent(eventType EventType, e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		ExpenseID:   e.ID,
		ChildID:     e.ChildID,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Category:    string(e.Category),
		Description: e.Description,
		Date:        e.Date,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and checks an event body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("event without id")
	}
	if !msg.Type.valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
