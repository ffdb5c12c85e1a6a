package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGrowth(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		wantPct  string
		wantType ChangeType
	}{
		{"doubling", 200, 100, "100", ChangePositive},
		{"halving", 50, 100, "-50", ChangeNegative},
		{"flat", 100, 100, "0", ChangeNeutral},
		{"fractional", 110, 300, "-63.33", ChangeNegative},
		{"rounds to two decimals", 100, 300, "-66.67", ChangeNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Growth(decimal.NewFromFloat(tt.current), decimal.NewFromFloat(tt.previous))
			want, err := decimal.NewFromString(tt.wantPct)
			assert.NoError(t, err)
			assert.True(t, want.Equal(got.Percentage), "got %s want %s", got.Percentage, want)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

// Zero in the previous period always yields a neutral zero change, even
// when the current period has real activity.
func TestGrowth_ZeroPrevious(t *testing.T) {
	for _, current := range []float64{0, 42, -17} {
		got := Growth(decimal.NewFromFloat(current), decimal.Zero)
		assert.True(t, got.Percentage.IsZero())
		assert.Equal(t, ChangeNeutral, got.Type)
	}
}

func TestGrowthFromInt(t *testing.T) {
	got := GrowthFromInt(30, 20)
	assert.True(t, decimal.NewFromInt(50).Equal(got.Percentage))
	assert.Equal(t, ChangePositive, got.Type)
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2026, time.August, 30, 15, 4, 5, 0, time.UTC)
	p := CurrentMonth(now)

	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), p.To)
	assert.True(t, p.Contains(now))
	assert.False(t, p.Contains(p.To))
}

func TestPeriod_Previous(t *testing.T) {
	p := Period{
		From: time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
	}
	prev := p.Previous()

	assert.Equal(t, time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), prev.From)
	assert.Equal(t, p.From, prev.To)
	assert.Equal(t, p.To.Sub(p.From), prev.To.Sub(prev.From))
}

func TestNewCountMetric(t *testing.T) {
	m := NewCountMetric(8, 4)
	assert.True(t, decimal.NewFromInt(8).Equal(m.Value))
	assert.True(t, decimal.NewFromInt(100).Equal(m.Change.Percentage))
	assert.Equal(t, ChangePositive, m.Change.Type)
}
