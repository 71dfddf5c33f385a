package core

import "time"

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
)

type EventType string

// LedgerEvent announces a committed ledger change to downstream consumers.
type LedgerEvent struct {
	Type          EventType
	Owner         UserID
	TransactionID string
	AccountID     string
	TemplateID    string
	OccurredAt    time.Time
}
