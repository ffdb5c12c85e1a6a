package marketing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/marketing"
)

// CampaignService provides application-level campaign operations
type CampaignService struct {
	campaignRepo marketing.CampaignRepository
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(campaignRepo marketing.CampaignRepository) *CampaignService {
	return &CampaignService{campaignRepo: campaignRepo}
}

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	CampaignName string          `json:"campaign_name" binding:"required"`
	Cost         decimal.Decimal `json:"cost" binding:"required"`
	LeadSource   string          `json:"lead_source" binding:"required"`
	StartDate    time.Time       `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate      *time.Time      `json:"end_date" time_format:"2006-01-02"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// UpdateCampaignRequest represents a request to update a campaign
type UpdateCampaignRequest struct {
	CampaignName   string          `json:"campaign_name" binding:"required"`
	Cost           decimal.Decimal `json:"cost" binding:"required"`
	LeadSource     string          `json:"lead_source" binding:"required"`
	StartDate      time.Time       `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate        *time.Time      `json:"end_date" time_format:"2006-01-02"`
	CampaignStatus *bool           `json:"campaign_status"`
}

// CampaignListFilter defines filtering options for campaign list queries
type CampaignListFilter struct {
	Search     string     `form:"search"`
	LeadSource string     `form:"lead_source"`
	ActiveOnly *bool      `form:"active_only"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID             uuid.UUID       `json:"id"`
	CampaignName   string          `json:"campaign_name"`
	Cost           decimal.Decimal `json:"cost"`
	LeadSource     string          `json:"lead_source"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	CampaignStatus bool            `json:"campaign_status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Create creates a new campaign
func (s *CampaignService) Create(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	campaign, err := marketing.NewCampaign(
		req.CampaignName,
		req.Cost,
		crm.LeadSource(req.LeadSource),
		req.StartDate,
		req.EndDate,
	)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		campaign.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, err
	}

	return toCampaignResponse(campaign), nil
}

// GetByID gets a campaign by ID
func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCampaignResponse(campaign), nil
}

// List lists campaigns with filtering
func (s *CampaignService) List(ctx context.Context, filter CampaignListFilter) ([]CampaignResponse, int64, error) {
	domainFilter := marketing.CampaignFilter{
		ActiveOnly: filter.ActiveOnly,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	if filter.LeadSource != "" {
		source := crm.LeadSource(filter.LeadSource)
		domainFilter.LeadSource = &source
	}

	campaigns, err := s.campaignRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.campaignRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		responses[i] = *toCampaignResponse(&campaigns[i])
	}

	return responses, total, nil
}

// Update updates a campaign
func (s *CampaignService) Update(ctx context.Context, id uuid.UUID, req UpdateCampaignRequest, actorID uuid.UUID) (*CampaignResponse, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := campaign.Update(
		req.CampaignName,
		req.Cost,
		crm.LeadSource(req.LeadSource),
		req.StartDate,
		req.EndDate,
	); err != nil {
		return nil, err
	}

	if req.CampaignStatus != nil {
		if *req.CampaignStatus {
			campaign.Activate()
		} else {
			campaign.Deactivate()
		}
	}
	campaign.SetUpdatedBy(actorID)

	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, err
	}

	return toCampaignResponse(campaign), nil
}

// Delete removes a campaign
func (s *CampaignService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.campaignRepo.Delete(ctx, id)
}

func toCampaignResponse(c *marketing.Campaign) *CampaignResponse {
	return &CampaignResponse{
		ID:             c.ID,
		CampaignName:   c.CampaignName,
		Cost:           c.Cost,
		LeadSource:     string(c.LeadSource),
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		CampaignStatus: c.CampaignStatus,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
