package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgettracker/internal/core"
)

// EventType names what happened to a ledger transaction.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
)

// TransactionEvent carries a full snapshot of the transaction so consumers
// never need to read the ledger database, which is local to the producer.
type TransactionEvent struct {
	Type        EventType       `json:"type"`
	ID          int64           `json:"id"`
	Kind        core.Kind       `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewTransactionEvent builds an event of type t from a stored transaction.
func NewTransactionEvent(t EventType, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:        t,
		ID:          tx.ID,
		Kind:        tx.Kind,
		Amount:      tx.Amount,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.String(),
		CreatedAt:   tx.CreatedAt,
		Timestamp:   time.Now(),
	}
}

// Transaction rebuilds the ledger record the event describes.
func (e *TransactionEvent) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          e.ID,
		Kind:        e.Kind,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        date,
		CreatedAt:   e.CreatedAt,
	}, nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case TransactionCreated, TransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", ev.ID)
	}
	return &ev, nil
}
