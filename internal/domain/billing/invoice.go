package billing

import (
	"fmt"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// StatusFor derives the invoice status from the received and total amounts.
// Status is always a pure function of these two values; callers never
// supply it directly except for draft at creation.
func StatusFor(amountReceived, totalAmount decimal.Decimal) InvoiceStatus {
	switch {
	case amountReceived.LessThanOrEqual(decimal.Zero):
		return InvoiceStatusPending
	case amountReceived.GreaterThanOrEqual(totalAmount):
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartiallyPaid
	}
}

// PaymentMethod represents how an invoice payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// LedgerMode maps the payment method to the ledger payment mode
func (m PaymentMethod) LedgerMode() ledger.PaymentMode {
	switch m {
	case PaymentMethodBankTransfer:
		return ledger.PaymentModeOnline
	case PaymentMethodCheque:
		return ledger.PaymentModeCheque
	default:
		return ledger.PaymentModeCash
	}
}

// InvoiceItem is a single billed line on an invoice
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ServiceName string          `json:"service_name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewInvoiceItem creates a new invoice line item
func NewInvoiceItem(serviceName, description string, amount decimal.Decimal) (*InvoiceItem, error) {
	if serviceName == "" {
		return nil, shared.NewDomainError("INVALID_SERVICE_NAME", "Service name cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Item amount must be positive")
	}
	return &InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		ServiceName: serviceName,
		Description: description,
		Amount:      amount,
	}, nil
}

// InvoicePayment is one row in an invoice's payment history.
// Refund rows carry a negative amount.
type InvoicePayment struct {
	shared.BaseEntity
	InvoiceID            uuid.UUID       `json:"invoice_id"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentDate          time.Time       `json:"payment_date"`
	PaymentMethod        PaymentMethod   `json:"payment_method"`
	TransactionReference string          `json:"transaction_reference"`
	Notes                string          `json:"notes"`
}

// Invoice is the billing aggregate root. The invoice, its line items and
// its payment history form one consistency unit: amount_received always
// equals the sum of the payment rows after any mutation completes.
type Invoice struct {
	shared.AuditedAggregateRoot
	LeadID          uuid.UUID        `json:"lead_id"`
	InvoiceNumber   string           `json:"invoice_number"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	AmountReceived  decimal.Decimal  `json:"amount_received"`
	AmountRemaining decimal.Decimal  `json:"amount_remaining"`
	Status          InvoiceStatus    `json:"status"`
	Notes           string           `json:"notes"`
	Items           []InvoiceItem    `json:"items"`
	Payments        []InvoicePayment `json:"payments"`
	DeletedAt       *time.Time       `json:"deleted_at"`
}

// FormatInvoiceNumber builds an invoice number from a point in time and a
// monthly sequence value: 2-digit year, 2-digit month, 2-digit sequence.
func FormatInvoiceNumber(at time.Time, sequence int) string {
	return fmt.Sprintf("%02d%02d%02d", at.Year()%100, int(at.Month()), sequence)
}

// NewInvoice creates a new invoice from its line items. The total is the
// sum of item amounts and is immutable thereafter. A freshly created
// invoice with no opening payment starts in draft.
func NewInvoice(leadID uuid.UUID, invoiceNumber string, items []*InvoiceItem, notes string) (*Invoice, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}

	invoice := &Invoice{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		LeadID:               leadID,
		InvoiceNumber:        invoiceNumber,
		TotalAmount:          total,
		AmountReceived:       decimal.Zero,
		AmountRemaining:      total,
		Status:               InvoiceStatusDraft,
		Notes:                notes,
		Items:                make([]InvoiceItem, 0, len(items)),
		Payments:             make([]InvoicePayment, 0),
	}

	for _, item := range items {
		item.InvoiceID = invoice.ID
		invoice.Items = append(invoice.Items, *item)
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// Recalculate resums amount_received from the payment history and derives
// amount_remaining and status from it. Every payment mutation ends here,
// so the derived fields can never drift from the rows they summarize.
func (i *Invoice) Recalculate() {
	sum := decimal.Zero
	for _, p := range i.Payments {
		sum = sum.Add(p.Amount)
	}
	i.AmountReceived = sum
	i.AmountRemaining = i.TotalAmount.Sub(sum)
	i.Status = StatusFor(i.AmountReceived, i.TotalAmount)
	i.IncrementVersion()
}

// AddPayment appends a payment to the history and reconciles the derived
// fields. Returns the created payment row so callers can mirror it into
// the ledger.
func (i *Invoice) AddPayment(
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	reference string,
	notes string,
) (*InvoicePayment, error) {
	if i.Status == InvoiceStatusCancelled {
		return nil, shared.ErrInvoiceNotEditable
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := InvoicePayment{
		BaseEntity:           shared.NewBaseEntity(),
		InvoiceID:            i.ID,
		Amount:               amount,
		PaymentDate:          paymentDate,
		PaymentMethod:        method,
		TransactionReference: reference,
		Notes:                notes,
	}
	i.Payments = append(i.Payments, payment)
	i.Recalculate()

	i.AddDomainEvent(NewPaymentAddedEvent(i, &payment))

	return &payment, nil
}

// RemovePayment deletes a payment from the history and reconciles. The
// removed row is returned so the caller can delete its ledger mirror.
// An invoice drained back to zero goes to pending, never back to draft.
func (i *Invoice) RemovePayment(paymentID uuid.UUID) (*InvoicePayment, error) {
	for idx, p := range i.Payments {
		if p.ID == paymentID {
			removed := p
			i.Payments = append(i.Payments[:idx], i.Payments[idx+1:]...)
			i.Recalculate()
			i.AddDomainEvent(NewPaymentRemovedEvent(i, &removed))
			return &removed, nil
		}
	}
	return nil, shared.ErrNotFound
}

// ApplyRefund appends a negative payment row for the refunded amount and
// forces the status to partially_paid regardless of the resulting ratio.
// The forced status matches longstanding ledger behavior, including when
// the refund drains amount_received to zero.
func (i *Invoice) ApplyRefund(
	amount decimal.Decimal,
	refundDate time.Time,
	method PaymentMethod,
	notes string,
) (*InvoicePayment, error) {
	if i.Status == InvoiceStatusCancelled {
		return nil, shared.ErrInvoiceNotEditable
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if amount.GreaterThan(i.AmountReceived) {
		return nil, shared.NewDomainError("REFUND_EXCEEDS_RECEIVED", "Refund amount exceeds the amount received")
	}
	if refundDate.IsZero() {
		refundDate = time.Now()
	}

	payment := InvoicePayment{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     i.ID,
		Amount:        amount.Neg(),
		PaymentDate:   refundDate,
		PaymentMethod: method,
		Notes:         notes,
	}
	i.Payments = append(i.Payments, payment)
	i.Recalculate()
	i.Status = InvoiceStatusPartiallyPaid

	i.AddDomainEvent(NewRefundAppliedEvent(i, &payment))

	return &payment, nil
}

// ApplyPaymentDelta appends a signed adjustment row for the difference
// produced by a transaction edit, then reconciles. The adjustment flows
// through the same resum as every other mutation.
func (i *Invoice) ApplyPaymentDelta(
	delta decimal.Decimal,
	method PaymentMethod,
	notes string,
) (*InvoicePayment, error) {
	if i.Status == InvoiceStatusCancelled {
		return nil, shared.ErrInvoiceNotEditable
	}
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}

	payment := InvoicePayment{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     i.ID,
		Amount:        delta,
		PaymentDate:   time.Now(),
		PaymentMethod: method,
		Notes:         notes,
	}
	i.Payments = append(i.Payments, payment)
	i.Recalculate()

	i.AddDomainEvent(NewPaymentAddedEvent(i, &payment))

	return &payment, nil
}

// Cancel marks the invoice cancelled
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a paid invoice")
	}
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	i.Status = InvoiceStatusCancelled
	i.IncrementVersion()
	i.AddDomainEvent(NewInvoiceCancelledEvent(i))
	return nil
}

// SetNotes updates the free-form notes
func (i *Invoice) SetNotes(notes string) {
	i.Notes = notes
	i.Touch()
}

// FindPayment returns the payment with the given ID, if present
func (i *Invoice) FindPayment(paymentID uuid.UUID) *InvoicePayment {
	for idx := range i.Payments {
		if i.Payments[idx].ID == paymentID {
			return &i.Payments[idx]
		}
	}
	return nil
}

// IsPaid returns true when the invoice is fully settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// IsCancelled returns true when the invoice is cancelled
func (i *Invoice) IsCancelled() bool {
	return i.Status == InvoiceStatusCancelled
}
