package marketing

import (
	"context"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CampaignFilter defines filtering options for campaign queries
type CampaignFilter struct {
	shared.Filter
	LeadSource *crm.LeadSource // Filter by channel
	ActiveOnly *bool           // Filter by campaign status
	FromDate   *time.Time      // Filter by start date range
	ToDate     *time.Time      // Filter by start date range
}

// CampaignRepository defines the interface for campaign persistence
type CampaignRepository interface {
	// FindByID finds a campaign by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindAll finds campaigns with filtering
	FindAll(ctx context.Context, filter CampaignFilter) ([]Campaign, error)

	// Save creates or updates a campaign
	Save(ctx context.Context, campaign *Campaign) error

	// Delete removes a campaign
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts campaigns matching the filter
	Count(ctx context.Context, filter CampaignFilter) (int64, error)

	// SumCostBySource totals campaign spend per lead source in the period
	SumCostBySource(ctx context.Context, from, to time.Time) (map[crm.LeadSource]decimal.Decimal, error)
}
