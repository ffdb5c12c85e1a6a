package models

import (
	"time"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/marketing"
	"github.com/shopspring/decimal"
)

// CampaignModel is the persistence model for the marketing Campaign aggregate root.
type CampaignModel struct {
	AuditedAggregateModel
	CampaignName   string          `gorm:"type:varchar(200);not null"`
	Cost           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LeadSource     crm.LeadSource  `gorm:"type:varchar(30);not null;index"`
	StartDate      time.Time       `gorm:"not null;index"`
	EndDate        *time.Time      `gorm:"index"`
	CampaignStatus bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CampaignModel) TableName() string {
	return "marketing_campaigns"
}

// ToDomain converts the persistence model to a domain Campaign entity.
func (m *CampaignModel) ToDomain() *marketing.Campaign {
	campaign := &marketing.Campaign{
		CampaignName:   m.CampaignName,
		Cost:           m.Cost,
		LeadSource:     m.LeadSource,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CampaignStatus: m.CampaignStatus,
	}
	m.PopulateAuditedAggregateRoot(&campaign.AuditedAggregateRoot)
	return campaign
}

// FromDomain populates the persistence model from a domain Campaign entity.
func (m *CampaignModel) FromDomain(c *marketing.Campaign) {
	m.FromDomainAuditedAggregateRoot(c.AuditedAggregateRoot)
	m.CampaignName = c.CampaignName
	m.Cost = c.Cost
	m.LeadSource = c.LeadSource
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.CampaignStatus = c.CampaignStatus
}

// CampaignModelFromDomain creates a new persistence model from a domain Campaign.
func CampaignModelFromDomain(c *marketing.Campaign) *CampaignModel {
	m := &CampaignModel{}
	m.FromDomain(c)
	return m
}
