package billing

import (
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LeadID        uuid.UUID       `json:"lead_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		LeadID:          invoice.LeadID,
		TotalAmount:     invoice.TotalAmount,
		Status:          invoice.Status,
	}
}

// PaymentAddedEvent is raised when a payment lands on an invoice
type PaymentAddedEvent struct {
	shared.BaseDomainEvent
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	Status          InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *PaymentAddedEvent) EventType() string {
	return "InvoicePaymentAdded"
}

// NewPaymentAddedEvent creates a new PaymentAddedEvent
func NewPaymentAddedEvent(invoice *Invoice, payment *InvoicePayment) *PaymentAddedEvent {
	return &PaymentAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentAdded", "Invoice", invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		AmountReceived:  invoice.AmountReceived,
		AmountRemaining: invoice.AmountRemaining,
		Status:          invoice.Status,
	}
}

// PaymentRemovedEvent is raised when a payment is deleted from an invoice
type PaymentRemovedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Status         InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *PaymentRemovedEvent) EventType() string {
	return "InvoicePaymentRemoved"
}

// NewPaymentRemovedEvent creates a new PaymentRemovedEvent
func NewPaymentRemovedEvent(invoice *Invoice, payment *InvoicePayment) *PaymentRemovedEvent {
	return &PaymentRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentRemoved", "Invoice", invoice.ID),
		InvoiceID:       invoice.ID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		AmountReceived:  invoice.AmountReceived,
		Status:          invoice.Status,
	}
}

// RefundAppliedEvent is raised when a refund is applied to an invoice
type RefundAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Status         InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *RefundAppliedEvent) EventType() string {
	return "InvoiceRefundApplied"
}

// NewRefundAppliedEvent creates a new RefundAppliedEvent
func NewRefundAppliedEvent(invoice *Invoice, payment *InvoicePayment) *RefundAppliedEvent {
	return &RefundAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceRefundApplied", "Invoice", invoice.ID),
		InvoiceID:       invoice.ID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		AmountReceived:  invoice.AmountReceived,
		Status:          invoice.Status,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(invoice *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}
