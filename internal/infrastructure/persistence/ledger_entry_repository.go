package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements ledger.EntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentID finds the entry mirroring a specific invoice payment
func (r *GormLedgerEntryRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds ledger entries with filtering
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, filter ledger.EntryFilter) ([]ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// FindByInvoice finds all entries linked to an invoice
func (r *GormLedgerEntryRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("transaction_date DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Save creates or updates a ledger entry
func (r *GormLedgerEntryRepository) Save(ctx context.Context, entry *ledger.Entry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a ledger entry
func (r *GormLedgerEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LedgerEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByPaymentID removes the entry mirroring a specific invoice payment.
// Missing mirrors are tolerated so payment deletion stays idempotent.
func (r *GormLedgerEntryRepository) DeleteByPaymentID(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.LedgerEntryModel{}, "payment_id = ?", paymentID).Error
}

// Count counts entries matching the filter
func (r *GormLedgerEntryRepository) Count(ctx context.Context, filter ledger.EntryFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Sum totals entry amounts matching the filter
func (r *GormLedgerEntryRepository) Sum(ctx context.Context, filter ledger.EntryFilter) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(amount), 0) as total")
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Stats computes the dashboard aggregates for an optional date range
func (r *GormLedgerEntryRepository) Stats(ctx context.Context, from, to *time.Time) (*ledger.DashboardStats, error) {
	var result struct {
		TotalIncome   decimal.Decimal
		TotalExpenses decimal.Decimal
		TotalRefunds  decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) as total_income, "+
				"COALESCE(SUM(CASE WHEN payment_type IN (?, ?) THEN amount ELSE 0 END), 0) as total_expenses, "+
				"COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) as total_refunds",
			ledger.PaymentTypeReceived,
			ledger.PaymentTypeExpenses, ledger.PaymentTypeVendorPayment,
			ledger.PaymentTypeRefunded,
		)
	if from != nil {
		query = query.Where("transaction_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("transaction_date < ?", *to)
	}

	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}
	stats := &ledger.DashboardStats{
		TotalIncome:   result.TotalIncome,
		TotalExpenses: result.TotalExpenses,
		TotalRefunds:  result.TotalRefunds,
	}
	stats.ComputeNetBalance()
	return stats, nil
}

// applyFilter applies filter conditions to query
func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "transaction_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	// Apply pagination
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormLedgerEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	// Search matches the linked invoice number, lead name, or vendor name
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"(vendor_name ILIKE ? "+
				"OR invoice_id IN (SELECT id FROM invoices WHERE invoice_number ILIKE ?) "+
				"OR lead_id IN (SELECT id FROM leads WHERE name ILIKE ?))",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if filter.PaymentType != nil {
		query = query.Where("payment_type = ?", *filter.PaymentType)
	}
	if filter.PaymentMode != nil {
		query = query.Where("payment_mode = ?", *filter.PaymentMode)
	}
	if filter.TransactionType != nil {
		query = query.Where("transaction_type = ?", *filter.TransactionType)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}

	// Date range filter
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date < ?", filter.ToDate)
	}

	return query
}
