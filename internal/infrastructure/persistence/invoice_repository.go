package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM.
// Invoices load and save as a whole: items and payments travel with the
// root in every operation.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, created_at ASC")
		}).
		Where("deleted_at IS NULL").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its unique invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("deleted_at IS NULL").
		First(&model, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentID finds the invoice owning a specific payment row
func (r *GormInvoiceRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*billing.Invoice, error) {
	var payment models.InvoicePaymentModel
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, payment.InvoiceID)
}

// FindAll finds invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Preload("Items").
		Preload("Payments").
		Where("deleted_at IS NULL")
	query = r.applyFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByLead finds all invoices for a lead
func (r *GormInvoiceRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("lead_id = ? AND deleted_at IS NULL", leadID).
		Order("created_at DESC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save creates or updates the invoice aggregate. Payment rows removed from
// the aggregate are deleted; surviving rows are upserted.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveAggregate(tx, model)
	})
}

// SaveWithLock saves the invoice aggregate with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.InvoiceModel
		if err := tx.Select("version").Where("id = ?", invoice.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// New record, just save
				return r.saveAggregate(tx, models.InvoiceModelFromDomain(invoice))
			}
			return err
		}

		// Check version matches (domain model already incremented version)
		expectedVersion := invoice.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError("VERSION_CONFLICT", "Invoice has been modified by another user")
		}

		model := models.InvoiceModelFromDomain(invoice)
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", invoice.GetID(), expectedVersion).
			Select("*").Omit("Items", "Payments").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("VERSION_CONFLICT", "Invoice has been modified by another user")
		}

		return r.saveChildren(tx, model)
	})
}

func (r *GormInvoiceRepository) saveAggregate(tx *gorm.DB, model *models.InvoiceModel) error {
	if err := tx.Omit("Items", "Payments").Save(model).Error; err != nil {
		return err
	}
	return r.saveChildren(tx, model)
}

func (r *GormInvoiceRepository) saveChildren(tx *gorm.DB, model *models.InvoiceModel) error {
	// Drop payment rows the aggregate no longer carries
	paymentIDs := make([]uuid.UUID, len(model.Payments))
	for i, p := range model.Payments {
		paymentIDs[i] = p.ID
	}
	removal := tx.Where("invoice_id = ?", model.ID)
	if len(paymentIDs) > 0 {
		removal = removal.Where("id NOT IN ?", paymentIDs)
	}
	if err := removal.Delete(&models.InvoicePaymentModel{}).Error; err != nil {
		return err
	}

	for i := range model.Items {
		if err := tx.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range model.Payments {
		if err := tx.Save(&model.Payments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete soft deletes the invoice. Items and payments stay in place under
// the soft-deleted root.
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("deleted_at IS NULL")
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter conditions to query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
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
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	// Search in invoice number and the owning lead's name
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"(invoice_number ILIKE ? OR lead_id IN (SELECT id FROM leads WHERE name ILIKE ?))",
			searchPattern, searchPattern,
		)
	}

	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	// Date range filter
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at < ?", filter.ToDate)
	}

	return query
}
