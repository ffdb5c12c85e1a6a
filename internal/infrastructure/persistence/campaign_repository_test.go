package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/marketing"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
)

func setupCampaignTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.CampaignModel{})
	require.NoError(t, err)

	return db
}

func newTestCampaign(t *testing.T, name string, cost int64, source crm.LeadSource, start time.Time) *marketing.Campaign {
	campaign, err := marketing.NewCampaign(name, decimal.NewFromInt(cost), source, start, nil)
	require.NoError(t, err)
	return campaign
}

func TestCampaignRepository_SaveAndFindByID(t *testing.T) {
	db := setupCampaignTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	campaign := newTestCampaign(t, "Eid Promo", 50000, crm.LeadSourceFacebook, start)

	err := repo.Save(ctx, campaign)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eid Promo", found.CampaignName)
	assert.True(t, found.Cost.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, crm.LeadSourceFacebook, found.LeadSource)
	assert.True(t, found.CampaignStatus)
}

func TestCampaignRepository_FindAll_ActiveOnly(t *testing.T) {
	db := setupCampaignTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	active := newTestCampaign(t, "Active", 1000, crm.LeadSourceFacebook, start)
	paused := newTestCampaign(t, "Paused", 2000, crm.LeadSourceInstagram, start)
	paused.Deactivate()

	require.NoError(t, repo.Save(ctx, active))
	require.NoError(t, repo.Save(ctx, paused))

	activeOnly := true
	found, err := repo.FindAll(ctx, marketing.CampaignFilter{ActiveOnly: &activeOnly})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Active", found[0].CampaignName)

	count, err := repo.Count(ctx, marketing.CampaignFilter{ActiveOnly: &activeOnly})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCampaignRepository_SumCostBySource(t *testing.T) {
	db := setupCampaignTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	inRange := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newTestCampaign(t, "FB August A", 10000, crm.LeadSourceFacebook, inRange)))
	require.NoError(t, repo.Save(ctx, newTestCampaign(t, "FB August B", 5000, crm.LeadSourceFacebook, inRange)))
	require.NoError(t, repo.Save(ctx, newTestCampaign(t, "IG August", 3000, crm.LeadSourceInstagram, inRange)))
	require.NoError(t, repo.Save(ctx, newTestCampaign(t, "FB July", 99999, crm.LeadSourceFacebook, outOfRange)))

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	totals, err := repo.SumCostBySource(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.True(t, totals[crm.LeadSourceFacebook].Equal(decimal.NewFromInt(15000)))
	assert.True(t, totals[crm.LeadSourceInstagram].Equal(decimal.NewFromInt(3000)))
}

func TestCampaignRepository_Delete(t *testing.T) {
	db := setupCampaignTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	campaign := newTestCampaign(t, "Short lived", 100, crm.LeadSourceFacebook, start)
	require.NoError(t, repo.Save(ctx, campaign))

	require.NoError(t, repo.Delete(ctx, campaign.ID))

	_, err := repo.FindByID(ctx, campaign.ID)
	assert.Error(t, err)
}
