package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType classifies a period-over-period movement
type ChangeType string

const (
	ChangePositive ChangeType = "positive"
	ChangeNegative ChangeType = "negative"
	ChangeNeutral  ChangeType = "neutral"
)

// Change is the growth of a metric versus the preceding period
type Change struct {
	Percentage decimal.Decimal `json:"percentage"`
	Type       ChangeType      `json:"type"`
}

// Growth computes ((current - previous) / previous) * 100 rounded to two
// decimals. A previous value of zero always yields a neutral zero change,
// whatever the current value: there is no meaningful base to grow from.
func Growth(current, previous decimal.Decimal) Change {
	if previous.IsZero() {
		return Change{Percentage: decimal.Zero, Type: ChangeNeutral}
	}

	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)

	switch {
	case pct.IsPositive():
		return Change{Percentage: pct, Type: ChangePositive}
	case pct.IsNegative():
		return Change{Percentage: pct, Type: ChangeNegative}
	default:
		return Change{Percentage: decimal.Zero, Type: ChangeNeutral}
	}
}

// GrowthFromInt computes growth over integer counts
func GrowthFromInt(current, previous int64) Change {
	return Growth(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}

// Period is a half-open reporting window [From, To)
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CurrentMonth returns the period covering the month containing now
func CurrentMonth(now time.Time) Period {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

// Previous returns the period of equal length immediately before this one
func (p Period) Previous() Period {
	length := p.To.Sub(p.From)
	return Period{From: p.From.Add(-length), To: p.From}
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// Metric pairs a period value with its change versus the preceding period
type Metric struct {
	Value  decimal.Decimal `json:"value"`
	Change Change          `json:"change"`
}

// NewMetric builds a metric from the current and previous period values
func NewMetric(current, previous decimal.Decimal) Metric {
	return Metric{Value: current, Change: Growth(current, previous)}
}

// NewCountMetric builds a metric from integer counts
func NewCountMetric(current, previous int64) Metric {
	return NewMetric(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}
