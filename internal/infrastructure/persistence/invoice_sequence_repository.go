package persistence

import (
	"context"
	"time"

	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceSequenceRepository implements billing.SequenceRepository with a
// per-month counter row. The increment happens in a single UPSERT so
// concurrent invoice creations never receive the same value.
type GormInvoiceSequenceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceSequenceRepository creates a new GormInvoiceSequenceRepository
func NewGormInvoiceSequenceRepository(db *gorm.DB) *GormInvoiceSequenceRepository {
	return &GormInvoiceSequenceRepository{db: db}
}

// Next reserves and returns the next sequence value for a year+month
func (r *GormInvoiceSequenceRepository) Next(ctx context.Context, year int, month time.Month) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO invoice_sequences (year, month, value, updated_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT (year, month)
		 DO UPDATE SET value = invoice_sequences.value + 1, updated_at = EXCLUDED.updated_at
		 RETURNING value`,
		year, int(month), time.Now(),
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Current returns the latest issued value without reserving a new one.
// Returns zero when no invoice has been numbered in the month yet.
func (r *GormInvoiceSequenceRepository) Current(ctx context.Context, year int, month time.Month) (int, error) {
	var model models.InvoiceSequenceModel
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, int(month)).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return model.Value, nil
}
