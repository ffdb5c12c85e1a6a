package ledger

import (
	"context"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryFilter defines filtering options for ledger queries
type EntryFilter struct {
	shared.Filter
	PaymentType     *PaymentType     // Filter by payment type
	PaymentMode     *PaymentMode     // Filter by payment mode
	TransactionType *TransactionType // Filter by accounting direction
	InvoiceID       *uuid.UUID       // Filter by linked invoice
	LeadID          *uuid.UUID       // Filter by linked lead
	FromDate        *time.Time       // Filter by transaction date range start
	ToDate          *time.Time       // Filter by transaction date range end
}

// DashboardStats holds the headline ledger aggregates
type DashboardStats struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	NetBalance    decimal.Decimal `json:"net_balance"`
}

// ComputeNetBalance derives the net balance from the three totals:
// income less expenses less refunds.
func (s *DashboardStats) ComputeNetBalance() {
	income := valueobject.NewMoneyPKR(s.TotalIncome)
	outflow := valueobject.NewMoneyPKR(s.TotalExpenses).
		MustAdd(valueobject.NewMoneyPKR(s.TotalRefunds))
	s.NetBalance = income.MustSubtract(outflow).Amount()
}

// EntryRepository defines the interface for ledger entry persistence
type EntryRepository interface {
	// FindByID finds a ledger entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// FindByPaymentID finds the entry mirroring a specific invoice payment
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Entry, error)

	// FindAll finds ledger entries with filtering. The filter's Search term
	// matches against the linked invoice number or lead name.
	FindAll(ctx context.Context, filter EntryFilter) ([]Entry, error)

	// FindByInvoice finds all entries linked to an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Entry, error)

	// Save creates or updates a ledger entry
	Save(ctx context.Context, entry *Entry) error

	// Delete removes a ledger entry
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByPaymentID removes the entry mirroring a specific invoice payment
	DeleteByPaymentID(ctx context.Context, paymentID uuid.UUID) error

	// Count counts entries matching the filter
	Count(ctx context.Context, filter EntryFilter) (int64, error)

	// Sum totals entry amounts matching the filter
	Sum(ctx context.Context, filter EntryFilter) (decimal.Decimal, error)

	// Stats computes the dashboard aggregates for an optional date range
	Stats(ctx context.Context, from, to *time.Time) (*DashboardStats, error)
}
