package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/marketing"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCampaignRepository implements marketing.CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// FindByID finds a campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketing.Campaign, error) {
	var model models.CampaignModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds campaigns with filtering
func (r *GormCampaignRepository) FindAll(ctx context.Context, filter marketing.CampaignFilter) ([]marketing.Campaign, error) {
	var campaignModels []models.CampaignModel
	query := r.db.WithContext(ctx).Model(&models.CampaignModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&campaignModels).Error; err != nil {
		return nil, err
	}
	campaigns := make([]marketing.Campaign, len(campaignModels))
	for i, model := range campaignModels {
		campaigns[i] = *model.ToDomain()
	}
	return campaigns, nil
}

// Save creates or updates a campaign
func (r *GormCampaignRepository) Save(ctx context.Context, campaign *marketing.Campaign) error {
	model := models.CampaignModelFromDomain(campaign)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a campaign
func (r *GormCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CampaignModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts campaigns matching the filter
func (r *GormCampaignRepository) Count(ctx context.Context, filter marketing.CampaignFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CampaignModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumCostBySource totals campaign spend per lead source in the period.
// A campaign counts when its start date falls inside the range.
func (r *GormCampaignRepository) SumCostBySource(ctx context.Context, from, to time.Time) (map[crm.LeadSource]decimal.Decimal, error) {
	var rows []struct {
		LeadSource crm.LeadSource
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.CampaignModel{}).
		Select("lead_source, COALESCE(SUM(cost), 0) as total").
		Where("start_date >= ? AND start_date < ?", from, to).
		Group("lead_source").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[crm.LeadSource]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.LeadSource] = row.Total
	}
	return result, nil
}

// applyFilter applies filter conditions to query
func (r *GormCampaignRepository) applyFilter(query *gorm.DB, filter marketing.CampaignFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, CampaignSortFields, "start_date")
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
func (r *GormCampaignRepository) applyFilterWithoutPagination(query *gorm.DB, filter marketing.CampaignFilter) *gorm.DB {
	// Search in campaign name
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("campaign_name ILIKE ?", searchPattern)
	}

	if filter.LeadSource != nil {
		query = query.Where("lead_source = ?", *filter.LeadSource)
	}
	if filter.ActiveOnly != nil {
		query = query.Where("campaign_status = ?", *filter.ActiveOnly)
	}

	// Date range filter on campaign start
	if filter.FromDate != nil {
		query = query.Where("start_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("start_date < ?", filter.ToDate)
	}

	return query
}
