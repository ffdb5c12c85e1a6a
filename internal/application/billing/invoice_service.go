package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/domain/shared/valueobject"
)

// InvoiceService provides application-level invoice and payment operations.
// Every mutation that touches an invoice together with its ledger mirror
// runs inside a TransactionScope so the triple commits or rolls back as
// one unit.
type InvoiceService struct {
	scope          TransactionScope
	invoiceRepo    billing.InvoiceRepository
	ledgerRepo     ledger.EntryRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	scope TransactionScope,
	invoiceRepo billing.InvoiceRepository,
	ledgerRepo ledger.EntryRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		scope:       scope,
		invoiceRepo: invoiceRepo,
		ledgerRepo:  ledgerRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// InvoiceItemRequest is one line item on an invoice creation request
type InvoiceItemRequest struct {
	ServiceName string          `json:"service_name" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// OpeningPaymentRequest is the optional payment recorded at creation
type OpeningPaymentRequest struct {
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate          time.Time       `json:"payment_date"`
	PaymentMethod        string          `json:"payment_method" binding:"required"`
	TransactionReference string          `json:"transaction_reference"`
	Notes                string          `json:"notes"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	LeadID         uuid.UUID              `json:"lead_id" binding:"required"`
	Items          []InvoiceItemRequest   `json:"items" binding:"required,min=1,dive"`
	Notes          string                 `json:"notes"`
	OpeningPayment *OpeningPaymentRequest `json:"opening_payment"`
	CreatedBy      *uuid.UUID             `json:"-"` // Set from JWT context, not from request body
}

// AddPaymentRequest represents a request to add a payment to an invoice
type AddPaymentRequest struct {
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate          time.Time       `json:"payment_date"`
	PaymentMethod        string          `json:"payment_method" binding:"required"`
	TransactionReference string          `json:"transaction_reference"`
	Notes                string          `json:"notes"`
}

// RecordTransactionRequest is the general-ledger entry path. Received and
// Refunded entries must reference an invoice and mutate it alongside the
// ledger row.
type RecordTransactionRequest struct {
	PaymentType     string          `json:"payment_type" binding:"required"`
	PaymentMode     string          `json:"payment_mode" binding:"required"`
	TransactionType string          `json:"transaction_type" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate time.Time       `json:"transaction_date"`
	InvoiceID       *uuid.UUID      `json:"invoice_id"`
	LeadID          *uuid.UUID      `json:"lead_id"`
	VendorName      string          `json:"vendor_name"`
	Description     string          `json:"description"`
	CreatedBy       *uuid.UUID      `json:"-"`
}

// EditTransactionRequest changes the type and amount of a ledger entry.
// Invoice-linked edits flow the signed difference through the invoice as
// an adjustment payment.
type EditTransactionRequest struct {
	PaymentType string          `json:"payment_type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search   string     `form:"search"`
	LeadID   *uuid.UUID `form:"lead_id"`
	Status   string     `form:"status"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
}

// InvoicePaymentResponse represents one payment row in API responses
type InvoicePaymentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	InvoiceID            uuid.UUID       `json:"invoice_id"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentDate          time.Time       `json:"payment_date"`
	PaymentMethod        string          `json:"payment_method"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// InvoiceItemResponse represents one line item in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ServiceName string          `json:"service_name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID                `json:"id"`
	LeadID          uuid.UUID                `json:"lead_id"`
	InvoiceNumber   string                   `json:"invoice_number"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	AmountReceived  decimal.Decimal          `json:"amount_received"`
	AmountRemaining decimal.Decimal          `json:"amount_remaining"`
	Status          string                   `json:"status"`
	Notes           string                   `json:"notes,omitempty"`
	Items           []InvoiceItemResponse    `json:"items"`
	Payments        []InvoicePaymentResponse `json:"payments"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Version         int                      `json:"version"`
}

// Create creates an invoice with an optional opening payment. The invoice
// number is reserved from the per-month sequence inside the same
// transaction that inserts the invoice, so concurrent creations in one
// month can never collide.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	items := make([]*billing.InvoiceItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item, err := billing.NewInvoiceItem(itemReq.ServiceName, itemReq.Description, itemReq.Amount)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	var invoice *billing.Invoice

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		now := time.Now()
		seq, err := repos.SequenceRepo().Next(ctx, now.Year(), now.Month())
		if err != nil {
			return err
		}

		invoice, err = billing.NewInvoice(req.LeadID, billing.FormatInvoiceNumber(now, seq), items, req.Notes)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			invoice.SetCreatedBy(*req.CreatedBy)
		}

		var payment *billing.InvoicePayment
		if req.OpeningPayment != nil && req.OpeningPayment.Amount.IsPositive() {
			payment, err = invoice.AddPayment(
				req.OpeningPayment.Amount,
				req.OpeningPayment.PaymentDate,
				billing.PaymentMethod(req.OpeningPayment.PaymentMethod),
				req.OpeningPayment.TransactionReference,
				req.OpeningPayment.Notes,
			)
			if err != nil {
				return err
			}
		} else {
			// No money moved yet: the invoice starts as a draft.
			invoice.Status = billing.InvoiceStatusDraft
		}

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		if payment != nil {
			entry, err := s.mirrorPayment(invoice, payment, req.CreatedBy)
			if err != nil {
				return err
			}
			if err := repos.LedgerRepo().Save(ctx, entry); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	return toInvoiceResponse(invoice), nil
}

// GetByID gets an invoice with its items and payments
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// GetAggregate returns the full domain aggregate, used by the PDF renderer
func (s *InvoiceService) GetAggregate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// List lists invoices with filtering
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := billing.InvoiceFilter{
		LeadID:   filter.LeadID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invoice status is not valid")
		}
		domainFilter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}

	return responses, total, nil
}

// ListByLead lists all invoices belonging to a lead
func (s *InvoiceService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, nil
}

// AddPayment records a payment against an invoice and mirrors it into the
// ledger. The derived invoice fields are resummed from the full payment
// history, never incremented.
func (s *InvoiceService) AddPayment(ctx context.Context, invoiceID uuid.UUID, req AddPaymentRequest, actorID *uuid.UUID) (*InvoiceResponse, error) {
	var invoice *billing.Invoice

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		payment, err := invoice.AddPayment(
			req.Amount,
			req.PaymentDate,
			billing.PaymentMethod(req.PaymentMethod),
			req.TransactionReference,
			req.Notes,
		)
		if err != nil {
			return err
		}
		if actorID != nil {
			invoice.SetUpdatedBy(*actorID)
		}

		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
			return err
		}

		entry, err := s.mirrorPayment(invoice, payment, actorID)
		if err != nil {
			return err
		}
		return repos.LedgerRepo().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	return toInvoiceResponse(invoice), nil
}

// DeletePayment removes a payment row and the ledger entry that mirrors
// it, located through the explicit payment link, then resums the invoice.
// An invoice drained back to zero goes to pending, never back to draft.
func (s *InvoiceService) DeletePayment(ctx context.Context, paymentID uuid.UUID, actorID *uuid.UUID) (*InvoiceResponse, error) {
	var invoice *billing.Invoice

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}

		if _, err := invoice.RemovePayment(paymentID); err != nil {
			return err
		}
		if actorID != nil {
			invoice.SetUpdatedBy(*actorID)
		}

		if err := repos.LedgerRepo().DeleteByPaymentID(ctx, paymentID); err != nil {
			return err
		}

		return repos.InvoiceRepo().SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	return toInvoiceResponse(invoice), nil
}

// RecordTransaction records a general-ledger transaction. Received and
// Refunded entries against an invoice create a mirrored payment row and
// reconcile the invoice in the same transaction; Expenses and
// VendorPayment entries touch the ledger alone.
//
// A standalone refund forces the invoice status to partially_paid even
// when it drains the received amount to zero. That quirk is longstanding
// ledger behavior and is kept deliberately.
func (s *InvoiceService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*ledger.Entry, error) {
	entry, err := ledger.NewEntry(
		ledger.PaymentType(req.PaymentType),
		ledger.PaymentMode(req.PaymentMode),
		ledger.TransactionType(req.TransactionType),
		req.Amount,
		req.TransactionDate,
	)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		entry.SetCreatedBy(*req.CreatedBy)
	}
	if req.VendorName != "" {
		entry.SetVendorName(req.VendorName)
	}
	if req.Description != "" {
		entry.SetDescription(req.Description)
	}
	if req.LeadID != nil {
		entry.LinkLead(*req.LeadID)
	}
	if req.InvoiceID != nil {
		if err := entry.LinkInvoice(*req.InvoiceID); err != nil {
			return nil, err
		}
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if entry.InvoiceID != nil && entry.PaymentType.RequiresInvoice() {
			invoice, err := repos.InvoiceRepo().FindByID(ctx, *entry.InvoiceID)
			if err != nil {
				return err
			}

			method := methodForMode(entry.PaymentMode)
			var payment *billing.InvoicePayment
			if entry.PaymentType == ledger.PaymentTypeRefunded {
				payment, err = invoice.ApplyRefund(entry.Amount, entry.TransactionDate, method, entry.Description)
			} else {
				payment, err = invoice.AddPayment(entry.Amount, entry.TransactionDate, method, "", entry.Description)
			}
			if err != nil {
				return err
			}
			if err := entry.LinkPayment(payment.ID); err != nil {
				return err
			}
			if entry.LeadID == nil {
				entry.LinkLead(invoice.LeadID)
			}
			if req.CreatedBy != nil {
				invoice.SetUpdatedBy(*req.CreatedBy)
			}

			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return err
			}
		}

		return repos.LedgerRepo().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// EditTransaction changes the type and amount of an existing ledger
// entry. When the entry mirrors invoice money, the signed difference is
// appended to the invoice as an adjustment payment and the derived fields
// are resummed, keeping both sides consistent.
func (s *InvoiceService) EditTransaction(ctx context.Context, entryID uuid.UUID, req EditTransactionRequest) (*ledger.Entry, error) {
	newType := ledger.PaymentType(req.PaymentType)
	if !newType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}

	var entry *ledger.Entry

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.LedgerRepo().FindByID(ctx, entryID)
		if err != nil {
			return err
		}

		delta := valueobject.NewMoneyPKR(req.Amount).MustSubtract(entry.GetAmountMoney()).Amount()

		if entry.InvoiceID != nil && newType.RequiresInvoice() && !delta.IsZero() {
			invoice, err := repos.InvoiceRepo().FindByID(ctx, *entry.InvoiceID)
			if err != nil {
				return err
			}

			// Refund entries pull money out of the invoice, so the
			// adjustment runs in the opposite direction.
			invoiceDelta := delta
			if newType == ledger.PaymentTypeRefunded {
				invoiceDelta = delta.Neg()
			}

			if _, err := invoice.ApplyPaymentDelta(invoiceDelta, methodForMode(entry.PaymentMode), "transaction adjustment"); err != nil {
				return err
			}

			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return err
			}
		}

		if err := entry.Reclassify(newType, req.Amount); err != nil {
			return err
		}

		return repos.LedgerRepo().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete soft deletes an invoice and removes the ledger entries linked to
// it, all in one transaction
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.LedgerRepo().FindByInvoice(ctx, id)
		if err != nil {
			return err
		}
		for i := range entries {
			if err := repos.LedgerRepo().Delete(ctx, entries[i].ID); err != nil {
				return err
			}
		}
		return repos.InvoiceRepo().Delete(ctx, id)
	})
}

// mirrorPayment builds the ledger entry that mirrors an invoice payment
func (s *InvoiceService) mirrorPayment(invoice *billing.Invoice, payment *billing.InvoicePayment, actorID *uuid.UUID) (*ledger.Entry, error) {
	entry, err := ledger.NewEntry(
		ledger.PaymentTypeReceived,
		payment.PaymentMethod.LedgerMode(),
		ledger.TransactionTypeCredit,
		payment.Amount,
		payment.PaymentDate,
	)
	if err != nil {
		return nil, err
	}
	if err := entry.LinkInvoice(invoice.ID); err != nil {
		return nil, err
	}
	if err := entry.LinkPayment(payment.ID); err != nil {
		return nil, err
	}
	entry.LinkLead(invoice.LeadID)
	entry.SetDescription("Payment against invoice " + invoice.InvoiceNumber)
	if actorID != nil {
		entry.SetCreatedBy(*actorID)
	}
	return entry, nil
}

// publishEvents flushes the aggregate's uncommitted events after a
// successful commit. Event handling is fire-and-forget.
func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.eventPublisher == nil || invoice == nil {
		return
	}
	for _, event := range invoice.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish invoice event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	invoice.ClearDomainEvents()
}

// methodForMode maps a ledger payment mode back to an invoice payment method
func methodForMode(mode ledger.PaymentMode) billing.PaymentMethod {
	switch mode {
	case ledger.PaymentModeOnline:
		return billing.PaymentMethodBankTransfer
	case ledger.PaymentModeCheque:
		return billing.PaymentMethodCheque
	default:
		return billing.PaymentMethodCash
	}
}

func toInvoiceResponse(i *billing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(i.Items))
	for idx, item := range i.Items {
		items[idx] = InvoiceItemResponse{
			ID:          item.ID,
			ServiceName: item.ServiceName,
			Description: item.Description,
			Amount:      item.Amount,
		}
	}

	payments := make([]InvoicePaymentResponse, len(i.Payments))
	for idx, p := range i.Payments {
		payments[idx] = InvoicePaymentResponse{
			ID:                   p.ID,
			InvoiceID:            p.InvoiceID,
			Amount:               p.Amount,
			PaymentDate:          p.PaymentDate,
			PaymentMethod:        string(p.PaymentMethod),
			TransactionReference: p.TransactionReference,
			Notes:                p.Notes,
			CreatedAt:            p.CreatedAt,
		}
	}

	return &InvoiceResponse{
		ID:              i.ID,
		LeadID:          i.LeadID,
		InvoiceNumber:   i.InvoiceNumber,
		TotalAmount:     i.TotalAmount,
		AmountReceived:  i.AmountReceived,
		AmountRemaining: i.AmountRemaining,
		Status:          string(i.Status),
		Notes:           i.Notes,
		Items:           items,
		Payments:        payments,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
		Version:         i.Version,
	}
}
