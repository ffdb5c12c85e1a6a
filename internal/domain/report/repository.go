package report

import (
	"context"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadCounts holds the raw lead aggregates for one period
type LeadCounts struct {
	Total    int64
	Won      int64
	Lost     int64
	Active   int64
	ByStatus map[crm.LeadStatus]int64
	BySource map[crm.LeadSource]int64
}

// SalesTotals holds the raw financial aggregates for one period
type SalesTotals struct {
	Revenue       decimal.Decimal
	Refunds       decimal.Decimal
	Expenses      decimal.Decimal
	InvoiceCount  int64
	PaidInvoices  int64
	PaymentsCount int64
}

// SourceBreakdown pairs lead volume with campaign spend for one channel
type SourceBreakdown struct {
	Source    crm.LeadSource
	LeadCount int64
	WonCount  int64
	Spend     decimal.Decimal
}

// ReportRepository provides the read-only aggregates the report service
// assembles into dashboards. Implementations never mutate.
type ReportRepository interface {
	// LeadCounts computes lead aggregates for the period, optionally
	// narrowed to one assignee
	LeadCounts(ctx context.Context, period Period, userID *uuid.UUID) (*LeadCounts, error)

	// SalesTotals computes financial aggregates for the period
	SalesTotals(ctx context.Context, period Period) (*SalesTotals, error)

	// SourceBreakdown joins lead counts with campaign spend per source
	SourceBreakdown(ctx context.Context, period Period) ([]SourceBreakdown, error)
}
