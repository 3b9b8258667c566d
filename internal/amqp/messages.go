package amqp

import (
	"encoding/json"
	"time"

	"expensetracker/internal/ledger"
)

// LedgerChangedMessage announces a committed ledger mutation. It carries
// counts only; consumers read the ledger itself from storage.
type LedgerChangedMessage struct {
	Op           string    `json:"op"`
	Transactions int       `json:"transactions"`
	Categories   int       `json:"categories"`
	Budgets      int       `json:"budgets"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage builds the message for a store change. A zero
// change time is replaced by now.
func NewLedgerChangedMessage(c ledger.Change) *LedgerChangedMessage {
	ts := c.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &LedgerChangedMessage{
		Op:           c.Op,
		Transactions: c.Transactions,
		Categories:   c.Categories,
		Budgets:      c.Budgets,
		Timestamp:    ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
