package marketing

import (
	"time"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Campaign is a marketing spend record. It connects to leads only through
// the shared lead_source value when reports join the two.
type Campaign struct {
	shared.AuditedAggregateRoot
	CampaignName   string          `json:"campaign_name"`
	Cost           decimal.Decimal `json:"cost"`
	LeadSource     crm.LeadSource  `json:"lead_source"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        *time.Time      `json:"end_date"`
	CampaignStatus bool            `json:"campaign_status"`
}

// NewCampaign creates a new marketing campaign
func NewCampaign(name string, cost decimal.Decimal, source crm.LeadSource, startDate time.Time, endDate *time.Time) (*Campaign, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN_NAME", "Campaign name cannot be empty")
	}
	if cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Campaign cost cannot be negative")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEAD_SOURCE", "Lead source is not valid")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}

	return &Campaign{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		CampaignName:         name,
		Cost:                 cost,
		LeadSource:           source,
		StartDate:            startDate,
		EndDate:              endDate,
		CampaignStatus:       true,
	}, nil
}

// Update changes the mutable campaign fields
func (c *Campaign) Update(name string, cost decimal.Decimal, source crm.LeadSource, startDate time.Time, endDate *time.Time) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CAMPAIGN_NAME", "Campaign name cannot be empty")
	}
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Campaign cost cannot be negative")
	}
	if !source.IsValid() {
		return shared.NewDomainError("INVALID_LEAD_SOURCE", "Lead source is not valid")
	}
	if endDate != nil && endDate.Before(startDate) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}

	c.CampaignName = name
	c.Cost = cost
	c.LeadSource = source
	c.StartDate = startDate
	c.EndDate = endDate
	c.Touch()

	return nil
}

// Deactivate turns the campaign off
func (c *Campaign) Deactivate() {
	c.CampaignStatus = false
	c.Touch()
}

// Activate turns the campaign on
func (c *Campaign) Activate() {
	c.CampaignStatus = true
	c.Touch()
}

// IsRunning reports whether the campaign is active at the given time
func (c *Campaign) IsRunning(at time.Time) bool {
	if !c.CampaignStatus {
		return false
	}
	if at.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && at.After(*c.EndDate) {
		return false
	}
	return true
}
