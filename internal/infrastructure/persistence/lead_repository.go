package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeadRepository implements crm.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPhone finds a lead by its unique phone number
func (r *GormLeadRepository) FindByPhone(ctx context.Context, phone string) (*crm.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a lead by its unique email
func (r *GormLeadRepository) FindByEmail(ctx context.Context, email string) (*crm.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds leads with filtering
func (r *GormLeadRepository) FindAll(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, error) {
	var leadModels []models.LeadModel
	query := r.db.WithContext(ctx).Model(&models.LeadModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}
	leads := make([]crm.Lead, len(leadModels))
	for i, model := range leadModels {
		leads[i] = *model.ToDomain()
	}
	return leads, nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	model := models.LeadModelFromDomain(lead)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a lead and cascades to its notes, documents and logs
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ActivityLogModel{}, "lead_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.LeadNoteModel{}, "lead_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.LeadDocumentModel{}, "lead_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.LeadModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts leads matching the filter
func (r *GormLeadRepository) Count(ctx context.Context, filter crm.LeadFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LeadModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByPhoneOrEmail reports whether any lead already holds either value
func (r *GormLeadRepository) ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LeadModel{}).
		Where("phone = ? OR email = ?", phone, email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter conditions to query
func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter crm.LeadFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, LeadSortFields, "created_at")
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
func (r *GormLeadRepository) applyFilterWithoutPagination(query *gorm.DB, filter crm.LeadFilter) *gorm.DB {
	// Search in name, phone and email
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("(name ILIKE ? OR phone ILIKE ? OR email ILIKE ?)",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.AssignedUserID != nil {
		query = query.Where("assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.LeadStatus != nil {
		query = query.Where("lead_status = ?", *filter.LeadStatus)
	}
	if filter.LeadSource != nil {
		query = query.Where("lead_source = ?", *filter.LeadSource)
	}
	if filter.ActiveOnly != nil {
		query = query.Where("lead_active_status = ?", *filter.ActiveOnly)
	}
	if filter.City != nil {
		query = query.Where("city = ?", *filter.City)
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
