package persistence

import (
	"context"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/fieldline/crm-backend/internal/domain/report"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.ReportRepository using GORM.
// All queries are read-only aggregates.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// LeadCounts computes lead aggregates for the period
func (r *GormReportRepository) LeadCounts(ctx context.Context, period report.Period, userID *uuid.UUID) (*report.LeadCounts, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("created_at >= ? AND created_at < ?", period.From, period.To)
		if userID != nil {
			q = q.Where("assigned_user_id = ?", *userID)
		}
		return q
	}

	counts := &report.LeadCounts{
		ByStatus: make(map[crm.LeadStatus]int64),
		BySource: make(map[crm.LeadSource]int64),
	}

	if err := base().Count(&counts.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("lead_status = ?", crm.LeadStatusWon).Count(&counts.Won).Error; err != nil {
		return nil, err
	}
	if err := base().Where("lead_status = ?", crm.LeadStatusLost).Count(&counts.Lost).Error; err != nil {
		return nil, err
	}
	if err := base().Where("lead_active_status = ?", true).Count(&counts.Active).Error; err != nil {
		return nil, err
	}

	var statusRows []struct {
		LeadStatus crm.LeadStatus
		Count      int64
	}
	if err := base().Select("lead_status, COUNT(*) as count").
		Group("lead_status").Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		counts.ByStatus[row.LeadStatus] = row.Count
	}

	var sourceRows []struct {
		LeadSource crm.LeadSource
		Count      int64
	}
	if err := base().Select("lead_source, COUNT(*) as count").
		Group("lead_source").Scan(&sourceRows).Error; err != nil {
		return nil, err
	}
	for _, row := range sourceRows {
		counts.BySource[row.LeadSource] = row.Count
	}

	return counts, nil
}

// SalesTotals computes financial aggregates for the period
func (r *GormReportRepository) SalesTotals(ctx context.Context, period report.Period) (*report.SalesTotals, error) {
	var ledgerTotals struct {
		Revenue  decimal.Decimal
		Refunds  decimal.Decimal
		Expenses decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) as revenue, "+
				"COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) as refunds, "+
				"COALESCE(SUM(CASE WHEN payment_type IN (?, ?) THEN amount ELSE 0 END), 0) as expenses",
			ledger.PaymentTypeReceived,
			ledger.PaymentTypeRefunded,
			ledger.PaymentTypeExpenses, ledger.PaymentTypeVendorPayment,
		).
		Where("transaction_date >= ? AND transaction_date < ?", period.From, period.To).
		Scan(&ledgerTotals).Error; err != nil {
		return nil, err
	}

	totals := &report.SalesTotals{
		Revenue:  ledgerTotals.Revenue,
		Refunds:  ledgerTotals.Refunds,
		Expenses: ledgerTotals.Expenses,
	}

	invoiceQuery := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("deleted_at IS NULL").
		Where("created_at >= ? AND created_at < ?", period.From, period.To)
	if err := invoiceQuery.Count(&totals.InvoiceCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("deleted_at IS NULL AND status = ?", billing.InvoiceStatusPaid).
		Where("created_at >= ? AND created_at < ?", period.From, period.To).
		Count(&totals.PaidInvoices).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoicePaymentModel{}).
		Where("payment_date >= ? AND payment_date < ?", period.From, period.To).
		Where("amount > 0").
		Count(&totals.PaymentsCount).Error; err != nil {
		return nil, err
	}

	return totals, nil
}

// SourceBreakdown joins lead counts with campaign spend per source
func (r *GormReportRepository) SourceBreakdown(ctx context.Context, period report.Period) ([]report.SourceBreakdown, error) {
	var leadRows []struct {
		LeadSource crm.LeadSource
		LeadCount  int64
		WonCount   int64
	}
	if err := r.db.WithContext(ctx).Model(&models.LeadModel{}).
		Select(
			"lead_source, COUNT(*) as lead_count, "+
				"COUNT(CASE WHEN lead_status = ? THEN 1 END) as won_count",
			crm.LeadStatusWon,
		).
		Where("created_at >= ? AND created_at < ?", period.From, period.To).
		Group("lead_source").
		Scan(&leadRows).Error; err != nil {
		return nil, err
	}

	var spendRows []struct {
		LeadSource crm.LeadSource
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.CampaignModel{}).
		Select("lead_source, COALESCE(SUM(cost), 0) as total").
		Where("start_date >= ? AND start_date < ?", period.From, period.To).
		Group("lead_source").
		Scan(&spendRows).Error; err != nil {
		return nil, err
	}
	spend := make(map[crm.LeadSource]decimal.Decimal, len(spendRows))
	for _, row := range spendRows {
		spend[row.LeadSource] = row.Total
	}

	breakdown := make([]report.SourceBreakdown, 0, len(leadRows))
	seen := make(map[crm.LeadSource]bool, len(leadRows))
	for _, row := range leadRows {
		breakdown = append(breakdown, report.SourceBreakdown{
			Source:    row.LeadSource,
			LeadCount: row.LeadCount,
			WonCount:  row.WonCount,
			Spend:     spend[row.LeadSource],
		})
		seen[row.LeadSource] = true
	}
	// Channels with spend but no leads still appear in the report
	for source, total := range spend {
		if !seen[source] {
			breakdown = append(breakdown, report.SourceBreakdown{
				Source: source,
				Spend:  total,
			})
		}
	}
	return breakdown, nil
}
