package ledger

import (
	"time"

	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType represents the kind of financial transaction
type PaymentType string

const (
	PaymentTypeReceived      PaymentType = "Received"      // Money received against an invoice
	PaymentTypeRefunded      PaymentType = "Refunded"      // Money returned against an invoice
	PaymentTypeExpenses      PaymentType = "Expenses"      // General business expense
	PaymentTypeVendorPayment PaymentType = "VendorPayment" // Payment made to a vendor
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeReceived, PaymentTypeRefunded, PaymentTypeExpenses, PaymentTypeVendorPayment:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// RequiresInvoice returns true if entries of this type must reference an invoice
func (t PaymentType) RequiresInvoice() bool {
	return t == PaymentTypeReceived || t == PaymentTypeRefunded
}

// PaymentMode represents how the money moved
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeOnline PaymentMode = "Online"
	PaymentModeCheque PaymentMode = "Cheque"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeOnline, PaymentModeCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMode
func (m PaymentMode) String() string {
	return string(m)
}

// TransactionType represents the accounting direction of an entry
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "Debit"
	TransactionTypeCredit TransactionType = "Credit"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Entry represents a single row in the financial ledger.
// Entries are append-mostly: corrections go through delete plus re-record,
// except the guarded amount edit used by transaction editing.
type Entry struct {
	shared.AuditedAggregateRoot
	PaymentType     PaymentType     `json:"payment_type"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	LeadID          *uuid.UUID      `json:"lead_id"`
	InvoiceID       *uuid.UUID      `json:"invoice_id"`
	// PaymentID links the entry to the invoice payment it mirrors,
	// so deleting a payment can locate its ledger row exactly.
	PaymentID    *uuid.UUID `json:"payment_id"`
	VendorName   string     `json:"vendor_name"`
	Description  string     `json:"description"`
	DocumentPath string     `json:"document_path"`
}

// NewEntry creates a new ledger entry
func NewEntry(
	paymentType PaymentType,
	paymentMode PaymentMode,
	transactionType TransactionType,
	amount decimal.Decimal,
	transactionDate time.Time,
) (*Entry, error) {
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}
	if !paymentMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode is not valid")
	}
	if !transactionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if transactionDate.IsZero() {
		transactionDate = time.Now()
	}

	entry := &Entry{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		PaymentType:          paymentType,
		PaymentMode:          paymentMode,
		TransactionType:      transactionType,
		Amount:               amount,
		TransactionDate:      transactionDate,
	}

	entry.AddDomainEvent(NewEntryRecordedEvent(entry))

	return entry, nil
}

// LinkInvoice attaches the entry to an invoice
func (e *Entry) LinkInvoice(invoiceID uuid.UUID) error {
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	e.InvoiceID = &invoiceID
	e.Touch()
	return nil
}

// LinkPayment attaches the entry to the invoice payment it mirrors
func (e *Entry) LinkPayment(paymentID uuid.UUID) error {
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	e.PaymentID = &paymentID
	e.Touch()
	return nil
}

// LinkLead attaches the entry to a lead
func (e *Entry) LinkLead(leadID uuid.UUID) {
	e.LeadID = &leadID
	e.Touch()
}

// SetVendorName sets the vendor name for vendor payments
func (e *Entry) SetVendorName(name string) {
	e.VendorName = name
	e.Touch()
}

// SetDescription sets the free-form description
func (e *Entry) SetDescription(description string) {
	e.Description = description
	e.Touch()
}

// AttachDocument records the storage path of an uploaded receipt or proof
func (e *Entry) AttachDocument(path string) {
	e.DocumentPath = path
	e.Touch()
}

// GetAmountMoney returns the entry amount as Money
func (e *Entry) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPKR(e.Amount)
}

// Validate checks the cross-field invariants that depend on linkage
func (e *Entry) Validate() error {
	if e.PaymentType == PaymentTypeVendorPayment && e.VendorName == "" {
		return shared.NewDomainError("VENDOR_NAME_REQUIRED", "Vendor name is required for vendor payments")
	}
	if e.PaymentType.RequiresInvoice() && e.InvoiceID == nil {
		return shared.NewDomainError("INVOICE_REQUIRED", "Invoice is required for received and refunded entries")
	}
	return nil
}

// Reclassify changes the payment type and amount of an existing entry.
// Used by the guarded transaction-edit path only.
func (e *Entry) Reclassify(paymentType PaymentType, amount decimal.Decimal) error {
	if !paymentType.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}

	e.PaymentType = paymentType
	e.Amount = amount
	e.Touch()

	e.AddDomainEvent(NewEntryUpdatedEvent(e))

	return nil
}

// IsIncome returns true for entries that count towards income
func (e *Entry) IsIncome() bool {
	return e.PaymentType == PaymentTypeReceived
}

// IsExpense returns true for entries that count towards expenses
func (e *Entry) IsExpense() bool {
	return e.PaymentType == PaymentTypeExpenses || e.PaymentType == PaymentTypeVendorPayment
}

// IsRefund returns true for refund entries
func (e *Entry) IsRefund() bool {
	return e.PaymentType == PaymentTypeRefunded
}
