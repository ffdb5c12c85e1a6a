package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements crm.ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Append stores a new activity log entry
func (r *GormActivityLogRepository) Append(ctx context.Context, log *crm.ActivityLog) error {
	model, err := models.ActivityLogModelFromDomain(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindAll finds activity log entries with filtering
func (r *GormActivityLogRepository) FindAll(ctx context.Context, filter crm.ActivityLogFilter) ([]crm.ActivityLog, error) {
	var logModels []models.ActivityLogModel
	query := r.db.WithContext(ctx).Model(&models.ActivityLogModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]crm.ActivityLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}

// FindByLead finds all entries for a lead, newest first
func (r *GormActivityLogRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.ActivityLog, error) {
	var logModels []models.ActivityLogModel
	if err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]crm.ActivityLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}

// Count counts entries matching the filter
func (r *GormActivityLogRepository) Count(ctx context.Context, filter crm.ActivityLogFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ActivityLogModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLeadsHandled counts distinct (lead, calendar day) pairs in the
// period: several activities on one lead in one day count once.
func (r *GormActivityLogRepository) CountLeadsHandled(ctx context.Context, from, to time.Time, userID *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ActivityLogModel{}).
		Select("COUNT(DISTINCT (lead_id, DATE(created_at)))").
		Where("created_at >= ? AND created_at < ?", from, to)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter conditions to query
func (r *GormActivityLogRepository) applyFilter(query *gorm.DB, filter crm.ActivityLogFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ActivityLogSortFields, "created_at")
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
func (r *GormActivityLogRepository) applyFilterWithoutPagination(query *gorm.DB, filter crm.ActivityLogFilter) *gorm.DB {
	if filter.LeadID != nil {
		query = query.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActivityType != nil {
		query = query.Where("activity_type = ?", *filter.ActivityType)
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
