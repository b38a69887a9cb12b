package amqp

import (
	"encoding/json"
	"time"

	"gastobot/internal/core"
)

// ExpenseRecordedMessage carries a newly recorded expense to the backup
// worker. It holds the full expense data so the worker never has to read
// the ledger snapshot (the server owns it).
type ExpenseRecordedMessage struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amountCents"`
	Category    string    `json:"category"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage builds a message from a stored expense.
func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:          e.ID,
		UserID:      e.UserID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Date:        e.Date.String(),
		Timestamp:   e.Timestamp,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a message from JSON bytes.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
