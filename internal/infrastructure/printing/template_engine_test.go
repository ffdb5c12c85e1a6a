package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateEngine(t *testing.T) {
	engine := NewTemplateEngine()
	assert.NotNil(t, engine)
	assert.NotNil(t, engine.funcMap)
}

func TestTemplateEngine_GetFuncMap(t *testing.T) {
	engine := NewTemplateEngine()
	funcMap := engine.GetFuncMap()

	assert.NotNil(t, funcMap["formatMoney"])
	assert.NotNil(t, funcMap["formatMoneyRaw"])
	assert.NotNil(t, funcMap["formatDate"])
	assert.NotNil(t, funcMap["add"])
	assert.NotNil(t, funcMap["sub"])
}

func TestTemplateEngine_RenderString(t *testing.T) {
	engine := NewTemplateEngine()

	html, err := engine.RenderString("greeting", `<p>Hello, {{.Name}}!</p>`, map[string]interface{}{
		"Name": "World",
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Hello, World!")
}

func TestTemplateEngine_RenderString_Empty(t *testing.T) {
	engine := NewTemplateEngine()

	_, err := engine.RenderString("empty", "", nil)

	require.Error(t, err)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestFormatMoneyRaw(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		expected string
	}{
		{"zero", decimal.Zero, "0.00"},
		{"small", decimal.NewFromFloat(42.5), "42.50"},
		{"thousands", decimal.NewFromInt(1234567), "1,234,567.00"},
		{"negative", decimal.NewFromFloat(-1234.56), "-1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMoneyRaw(tt.value))
		})
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rs 1,500.00", formatMoney(decimal.NewFromInt(1500)))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", formatDate(ts))
	assert.Equal(t, "", formatDate(nil))
}

func TestRenderInvoiceHTML(t *testing.T) {
	engine := NewTemplateEngine()

	doc := &InvoiceDocument{
		CompanyName:   "Fieldline Traders",
		InvoiceNumber: "INV-2024-03-0042",
		Status:        "partially_paid",
		StatusLabel:   "Partially Paid",
		InvoiceDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CustomerName:  "Ayesha Khan",
		CustomerPhone: "+92 300 1234567",
		Items: []InvoiceDocumentItem{
			{Description: "Consulting retainer", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Amount: decimal.NewFromInt(10000)},
		},
		Payments: []InvoiceDocumentPayment{
			{PaymentDate: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), PaymentMode: "bank_transfer", Amount: decimal.NewFromInt(4000)},
			{PaymentDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), PaymentMode: "cash", Amount: decimal.NewFromInt(-1000), IsRefund: true},
		},
		TotalAmount:     decimal.NewFromInt(10000),
		AmountReceived:  decimal.NewFromInt(3000),
		AmountRemaining: decimal.NewFromInt(7000),
	}

	html, err := engine.RenderInvoiceHTML(doc)

	require.NoError(t, err)
	assert.Contains(t, html, "INV-2024-03-0042")
	assert.Contains(t, html, "Ayesha Khan")
	assert.Contains(t, html, "Consulting retainer")
	assert.Contains(t, html, "10,000.00")
	assert.Contains(t, html, "Balance Due")
	assert.Contains(t, html, "-1,000.00")
	assert.False(t, doc.GeneratedAt.IsZero())
}
