package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/report"
	"github.com/fieldline/crm-backend/internal/domain/shared/valueobject"
)

// ReportService assembles dashboard reports from read-only aggregates.
// Every metric carries its change versus the preceding period of equal
// length.
type ReportService struct {
	reportRepo   report.ReportRepository
	activityRepo crm.ActivityLogRepository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo report.ReportRepository, activityRepo crm.ActivityLogRepository) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		activityRepo: activityRepo,
	}
}

// ReportQuery parameterizes a report request. An unset range defaults to
// the current month.
type ReportQuery struct {
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
	UserID *uuid.UUID `form:"user_id"`
}

func (q ReportQuery) period(now time.Time) report.Period {
	if q.From == nil || q.To == nil {
		return report.CurrentMonth(now)
	}
	return report.Period{From: *q.From, To: *q.To}
}

// LeadsReport summarizes lead volume and outcomes for a period
type LeadsReport struct {
	Period      report.Period            `json:"period"`
	TotalLeads  report.Metric            `json:"total_leads"`
	WonLeads    report.Metric            `json:"won_leads"`
	LostLeads   report.Metric            `json:"lost_leads"`
	ActiveLeads report.Metric            `json:"active_leads"`
	ByStatus    map[crm.LeadStatus]int64 `json:"by_status"`
	BySource    map[crm.LeadSource]int64 `json:"by_source"`
}

// SalesReport summarizes invoicing and money movement for a period
type SalesReport struct {
	Period       report.Period `json:"period"`
	Revenue      report.Metric `json:"revenue"`
	Refunds      report.Metric `json:"refunds"`
	Expenses     report.Metric `json:"expenses"`
	NetBalance   report.Metric `json:"net_balance"`
	InvoiceCount report.Metric `json:"invoice_count"`
	PaidInvoices int64         `json:"paid_invoices"`
	Payments     int64         `json:"payments"`
}

// MarketingReport breaks campaign spend down against lead volume per channel
type MarketingReport struct {
	Period     report.Period   `json:"period"`
	TotalSpend report.Metric   `json:"total_spend"`
	Channels   []ChannelReport `json:"channels"`
}

// ChannelReport is one lead source's row in the marketing report
type ChannelReport struct {
	Source      crm.LeadSource  `json:"source"`
	LeadCount   int64           `json:"lead_count"`
	WonCount    int64           `json:"won_count"`
	Spend       decimal.Decimal `json:"spend"`
	CostPerLead decimal.Decimal `json:"cost_per_lead"`
}

// LogsReport summarizes follow-up activity for a period
type LogsReport struct {
	Period       report.Period `json:"period"`
	LeadsHandled report.Metric `json:"leads_handled"`
}

// Leads builds the lead report for the query's period
func (s *ReportService) Leads(ctx context.Context, query ReportQuery) (*LeadsReport, error) {
	period := query.period(time.Now())
	previous := period.Previous()

	current, err := s.reportRepo.LeadCounts(ctx, period, query.UserID)
	if err != nil {
		return nil, err
	}
	prior, err := s.reportRepo.LeadCounts(ctx, previous, query.UserID)
	if err != nil {
		return nil, err
	}

	return &LeadsReport{
		Period:      period,
		TotalLeads:  report.NewCountMetric(current.Total, prior.Total),
		WonLeads:    report.NewCountMetric(current.Won, prior.Won),
		LostLeads:   report.NewCountMetric(current.Lost, prior.Lost),
		ActiveLeads: report.NewCountMetric(current.Active, prior.Active),
		ByStatus:    current.ByStatus,
		BySource:    current.BySource,
	}, nil
}

// Sales builds the sales report for the query's period
func (s *ReportService) Sales(ctx context.Context, query ReportQuery) (*SalesReport, error) {
	period := query.period(time.Now())
	previous := period.Previous()

	current, err := s.reportRepo.SalesTotals(ctx, period)
	if err != nil {
		return nil, err
	}
	prior, err := s.reportRepo.SalesTotals(ctx, previous)
	if err != nil {
		return nil, err
	}

	return &SalesReport{
		Period:       period,
		Revenue:      report.NewMetric(current.Revenue, prior.Revenue),
		Refunds:      report.NewMetric(current.Refunds, prior.Refunds),
		Expenses:     report.NewMetric(current.Expenses, prior.Expenses),
		NetBalance:   report.NewMetric(netBalance(current), netBalance(prior)),
		InvoiceCount: report.NewCountMetric(current.InvoiceCount, prior.InvoiceCount),
		PaidInvoices: current.PaidInvoices,
		Payments:     current.PaymentsCount,
	}, nil
}

// Marketing builds the per-channel spend report for the query's period
func (s *ReportService) Marketing(ctx context.Context, query ReportQuery) (*MarketingReport, error) {
	period := query.period(time.Now())
	previous := period.Previous()

	current, err := s.reportRepo.SourceBreakdown(ctx, period)
	if err != nil {
		return nil, err
	}
	prior, err := s.reportRepo.SourceBreakdown(ctx, previous)
	if err != nil {
		return nil, err
	}

	channels := make([]ChannelReport, len(current))
	for i, row := range current {
		channels[i] = ChannelReport{
			Source:      row.Source,
			LeadCount:   row.LeadCount,
			WonCount:    row.WonCount,
			Spend:       row.Spend,
			CostPerLead: costPerLead(row.Spend, row.LeadCount),
		}
	}

	return &MarketingReport{
		Period:     period,
		TotalSpend: report.NewMetric(totalSpend(current), totalSpend(prior)),
		Channels:   channels,
	}, nil
}

// Logs builds the follow-up activity report for the query's period
func (s *ReportService) Logs(ctx context.Context, query ReportQuery) (*LogsReport, error) {
	period := query.period(time.Now())
	previous := period.Previous()

	current, err := s.activityRepo.CountLeadsHandled(ctx, period.From, period.To, query.UserID)
	if err != nil {
		return nil, err
	}
	prior, err := s.activityRepo.CountLeadsHandled(ctx, previous.From, previous.To, query.UserID)
	if err != nil {
		return nil, err
	}

	return &LogsReport{
		Period:       period,
		LeadsHandled: report.NewCountMetric(current, prior),
	}, nil
}

func netBalance(t *report.SalesTotals) decimal.Decimal {
	outflow := valueobject.NewMoneyPKR(t.Expenses).MustAdd(valueobject.NewMoneyPKR(t.Refunds))
	return valueobject.NewMoneyPKR(t.Revenue).MustSubtract(outflow).Amount()
}

func totalSpend(rows []report.SourceBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Spend)
	}
	return total
}

func costPerLead(spend decimal.Decimal, leads int64) decimal.Decimal {
	if leads == 0 {
		return decimal.Zero
	}
	return spend.Div(decimal.NewFromInt(leads)).Round(2)
}
