package ledger

import (
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryRecordedEvent is raised when a new ledger entry is recorded
type EntryRecordedEvent struct {
	shared.BaseDomainEvent
	EntryID         uuid.UUID       `json:"entry_id"`
	PaymentType     PaymentType     `json:"payment_type"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	LeadID          *uuid.UUID      `json:"lead_id,omitempty"`
}

// EventType returns the event type name
func (e *EntryRecordedEvent) EventType() string {
	return "LedgerEntryRecorded"
}

// NewEntryRecordedEvent creates a new EntryRecordedEvent
func NewEntryRecordedEvent(entry *Entry) *EntryRecordedEvent {
	return &EntryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryRecorded", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		PaymentType:     entry.PaymentType,
		PaymentMode:     entry.PaymentMode,
		TransactionType: entry.TransactionType,
		Amount:          entry.Amount,
		InvoiceID:       entry.InvoiceID,
		LeadID:          entry.LeadID,
	}
}

// EntryUpdatedEvent is raised when a ledger entry is reclassified
type EntryUpdatedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	PaymentType PaymentType     `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
}

// EventType returns the event type name
func (e *EntryUpdatedEvent) EventType() string {
	return "LedgerEntryUpdated"
}

// NewEntryUpdatedEvent creates a new EntryUpdatedEvent
func NewEntryUpdatedEvent(entry *Entry) *EntryUpdatedEvent {
	return &EntryUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryUpdated", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		PaymentType:     entry.PaymentType,
		Amount:          entry.Amount,
		InvoiceID:       entry.InvoiceID,
	}
}

// EntryDeletedEvent is raised when a ledger entry is removed
type EntryDeletedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	PaymentType PaymentType     `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *EntryDeletedEvent) EventType() string {
	return "LedgerEntryDeleted"
}

// NewEntryDeletedEvent creates a new EntryDeletedEvent
func NewEntryDeletedEvent(entry *Entry) *EntryDeletedEvent {
	return &EntryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryDeleted", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		PaymentType:     entry.PaymentType,
		Amount:          entry.Amount,
	}
}
