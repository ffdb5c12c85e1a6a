package marketing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/marketing"
)

// MockCampaignRepository is a mock implementation of marketing.CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketing.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketing.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) FindAll(ctx context.Context, filter marketing.CampaignFilter) ([]marketing.Campaign, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]marketing.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Save(ctx context.Context, campaign *marketing.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCampaignRepository) Count(ctx context.Context, filter marketing.CampaignFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCampaignRepository) SumCostBySource(ctx context.Context, from, to time.Time) (map[crm.LeadSource]decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(map[crm.LeadSource]decimal.Decimal), args.Error(1)
}

func TestCampaignService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCampaignRepository)
	service := NewCampaignService(repo)

	repo.On("Save", ctx, mock.AnythingOfType("*marketing.Campaign")).Return(nil)

	result, err := service.Create(ctx, CreateCampaignRequest{
		CampaignName: "Eid Promo",
		Cost:         decimal.NewFromInt(50000),
		LeadSource:   "Facebook",
		StartDate:    time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Eid Promo", result.CampaignName)
	assert.True(t, result.CampaignStatus)
	assert.Nil(t, result.EndDate)

	repo.AssertExpectations(t)
}

func TestCampaignService_Create_UnknownSourceRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCampaignRepository)
	service := NewCampaignService(repo)

	result, err := service.Create(ctx, CreateCampaignRequest{
		CampaignName: "Eid Promo",
		Cost:         decimal.NewFromInt(50000),
		LeadSource:   "Carrier Pigeon",
		StartDate:    time.Now(),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCampaignService_Update_TogglesStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCampaignRepository)
	service := NewCampaignService(repo)

	campaign, err := marketing.NewCampaign("Eid Promo", decimal.NewFromInt(50000),
		crm.LeadSourceFacebook, time.Now(), nil)
	assert.NoError(t, err)

	repo.On("FindByID", ctx, campaign.ID).Return(campaign, nil)
	repo.On("Save", ctx, campaign).Return(nil)

	inactive := false
	result, err := service.Update(ctx, campaign.ID, UpdateCampaignRequest{
		CampaignName:   "Eid Promo Extended",
		Cost:           decimal.NewFromInt(60000),
		LeadSource:     "Facebook",
		StartDate:      campaign.StartDate,
		CampaignStatus: &inactive,
	}, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, "Eid Promo Extended", result.CampaignName)
	assert.Equal(t, "60000", result.Cost.String())
	assert.False(t, result.CampaignStatus)
}
