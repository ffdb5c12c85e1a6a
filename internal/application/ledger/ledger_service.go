package ledger

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/fieldline/crm-backend/internal/domain/shared"
)

// LedgerService provides read and bookkeeping operations over the ledger.
// Transactions that mutate invoices alongside the ledger go through the
// billing InvoiceService instead; this service never touches invoices.
type LedgerService struct {
	entryRepo ledger.EntryRepository
	storage   appcrm.BlobStorage
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(entryRepo ledger.EntryRepository, storage appcrm.BlobStorage) *LedgerService {
	return &LedgerService{
		entryRepo: entryRepo,
		storage:   storage,
	}
}

// EntryListFilter defines filtering options for ledger list queries
type EntryListFilter struct {
	Search          string     `form:"search"`
	PaymentType     string     `form:"payment_type"`
	PaymentMode     string     `form:"payment_mode"`
	TransactionType string     `form:"transaction_type"`
	InvoiceID       *uuid.UUID `form:"invoice_id"`
	LeadID          *uuid.UUID `form:"lead_id"`
	FromDate        *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate          *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page            int        `form:"page"`
	PageSize        int        `form:"page_size"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentType     string          `json:"payment_type"`
	PaymentMode     string          `json:"payment_mode"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	LeadID          *uuid.UUID      `json:"lead_id,omitempty"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty"`
	VendorName      string          `json:"vendor_name,omitempty"`
	Description     string          `json:"description,omitempty"`
	DocumentPath    string          `json:"document_path,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// GetByID gets a ledger entry by ID
func (s *LedgerService) GetByID(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEntryResponse(entry), nil
}

// List lists ledger entries with filtering
func (s *LedgerService) List(ctx context.Context, filter EntryListFilter) ([]EntryResponse, int64, error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	entries, err := s.entryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.entryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = *toEntryResponse(&entries[i])
	}

	return responses, total, nil
}

// Sum totals the amounts of entries matching the filter
func (s *LedgerService) Sum(ctx context.Context, filter EntryListFilter) (decimal.Decimal, error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return decimal.Zero, err
	}
	return s.entryRepo.Sum(ctx, domainFilter)
}

// Stats computes the dashboard aggregates for an optional date range
func (s *LedgerService) Stats(ctx context.Context, from, to *time.Time) (*ledger.DashboardStats, error) {
	return s.entryRepo.Stats(ctx, from, to)
}

// Delete removes a ledger entry. Entries mirroring invoice payments must
// be removed through the payment-deletion path so the invoice stays
// consistent; this guard rejects them.
func (s *LedgerService) Delete(ctx context.Context, id uuid.UUID) error {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.PaymentID != nil {
		return shared.NewDomainError("ENTRY_LINKED",
			"Entry mirrors an invoice payment; delete the payment instead")
	}
	return s.entryRepo.Delete(ctx, id)
}

// AttachDocument stores an uploaded receipt or proof and records its path
// on the entry
func (s *LedgerService) AttachDocument(ctx context.Context, id uuid.UUID, fileName string, content io.Reader, contentType string) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.storage.Store(ctx, appcrm.NamespaceLedgerDocuments, fileName, content, contentType)
	if err != nil {
		return nil, err
	}

	entry.AttachDocument(path)
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	return toEntryResponse(entry), nil
}

// DownloadDocument returns the stored document bytes for an entry
func (s *LedgerService) DownloadDocument(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if entry.DocumentPath == "" {
		return nil, "", shared.ErrNotFound
	}
	data, err := s.storage.Download(ctx, entry.DocumentPath)
	if err != nil {
		return nil, "", err
	}
	return data, entry.DocumentPath, nil
}

func toDomainFilter(filter EntryListFilter) (ledger.EntryFilter, error) {
	domainFilter := ledger.EntryFilter{
		InvoiceID: filter.InvoiceID,
		LeadID:    filter.LeadID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	if filter.PaymentType != "" {
		pt := ledger.PaymentType(filter.PaymentType)
		if !pt.IsValid() {
			return domainFilter, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
		}
		domainFilter.PaymentType = &pt
	}
	if filter.PaymentMode != "" {
		pm := ledger.PaymentMode(filter.PaymentMode)
		if !pm.IsValid() {
			return domainFilter, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode is not valid")
		}
		domainFilter.PaymentMode = &pm
	}
	if filter.TransactionType != "" {
		tt := ledger.TransactionType(filter.TransactionType)
		if !tt.IsValid() {
			return domainFilter, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type is not valid")
		}
		domainFilter.TransactionType = &tt
	}

	return domainFilter, nil
}

func toEntryResponse(e *ledger.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		PaymentType:     string(e.PaymentType),
		PaymentMode:     string(e.PaymentMode),
		TransactionType: string(e.TransactionType),
		Amount:          e.Amount,
		TransactionDate: e.TransactionDate,
		LeadID:          e.LeadID,
		InvoiceID:       e.InvoiceID,
		PaymentID:       e.PaymentID,
		VendorName:      e.VendorName,
		Description:     e.Description,
		DocumentPath:    e.DocumentPath,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
