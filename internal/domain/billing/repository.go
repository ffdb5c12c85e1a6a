package billing

import (
	"context"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	LeadID   *uuid.UUID     // Filter by lead
	Status   *InvoiceStatus // Filter by status
	FromDate *time.Time     // Filter by creation date range start
	ToDate   *time.Time     // Filter by creation date range end
}

// InvoiceRepository defines the interface for invoice persistence.
// Implementations load and save the full aggregate, items and payments
// included.
type InvoiceRepository interface {
	// FindByID finds an invoice with its items and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its unique invoice number
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindByPaymentID finds the invoice owning a specific payment row
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindByLead finds all invoices for a lead
	FindByLead(ctx context.Context, leadID uuid.UUID) ([]Invoice, error)

	// Save creates or updates the invoice aggregate
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete soft deletes the invoice and cascades to items and payments
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
}

// SequenceRepository hands out monthly invoice-number sequence values.
// Next must be atomic under concurrent callers: two invoices created in
// the same month never receive the same value.
type SequenceRepository interface {
	// Next reserves and returns the next sequence value for a year+month
	Next(ctx context.Context, year int, month time.Month) (int, error)
}
