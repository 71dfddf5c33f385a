package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// LedgerEventMessage announces a committed transaction change. Consumers fetch
// the current transaction from the store; the message only carries identifiers.
type LedgerEventMessage struct {
	Type          core.EventType `json:"type"`
	UserID        string         `json:"user_id"`
	TransactionID string         `json:"transaction_id"`
	AccountID     string         `json:"account_id,omitempty"`
	TemplateID    string         `json:"template_id,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Timestamp     time.Time      `json:"timestamp"`
}

func NewLedgerEventMessage(ev core.LedgerEvent) *LedgerEventMessage {
	return &LedgerEventMessage{
		Type:          ev.Type,
		UserID:        string(ev.Owner),
		TransactionID: ev.TransactionID,
		AccountID:     ev.AccountID,
		TemplateID:    ev.TemplateID,
		OccurredAt:    ev.OccurredAt,
		Timestamp:     time.Now(),
	}
}

// Event converts the message back into the domain event.
func (m *LedgerEventMessage) Event() core.LedgerEvent {
	return core.LedgerEvent{
		Type:          m.Type,
		Owner:         core.UserID(m.UserID),
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		TemplateID:    m.TemplateID,
		OccurredAt:    m.OccurredAt,
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case core.EventTransactionCreated, core.EventTransactionUpdated, core.EventTransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown ledger event type %q", msg.Type)
	}
	if msg.TransactionID == "" {
		return nil, fmt.Errorf("ledger event without transaction id")
	}
	return &msg, nil
}

// SweepTriggerMessage asks the recurring worker to run a sweep now.
type SweepTriggerMessage struct {
	RequestedBy string    `json:"requested_by,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewSweepTriggerMessage(requestedBy string) *SweepTriggerMessage {
	return &SweepTriggerMessage{RequestedBy: requestedBy, Timestamp: time.Now()}
}

func (m *SweepTriggerMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SweepTriggerMessageFromJSON(data []byte) (*SweepTriggerMessage, error) {
	var msg SweepTriggerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
