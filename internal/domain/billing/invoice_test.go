package billing

import (
	"testing"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems(t *testing.T, amounts ...float64) []*InvoiceItem {
	items := make([]*InvoiceItem, 0, len(amounts))
	for _, a := range amounts {
		item, err := NewInvoiceItem("Consulting", "", decimal.NewFromFloat(a))
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func createTestInvoice(t *testing.T, amounts ...float64) *Invoice {
	invoice, err := NewInvoice(uuid.New(), "250701", testItems(t, amounts...), "")
	require.NoError(t, err)
	invoice.ClearDomainEvents()
	return invoice
}

// ============================================
// Status Tests
// ============================================

func TestStatusFor(t *testing.T) {
	total := decimal.NewFromInt(1000)

	tests := []struct {
		name     string
		received decimal.Decimal
		want     InvoiceStatus
	}{
		{"nothing received", decimal.Zero, InvoiceStatusPending},
		{"partial", decimal.NewFromInt(400), InvoiceStatusPartiallyPaid},
		{"one cent short", decimal.NewFromFloat(999.99), InvoiceStatusPartiallyPaid},
		{"exactly total", decimal.NewFromInt(1000), InvoiceStatusPaid},
		{"overpaid", decimal.NewFromInt(1200), InvoiceStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.received, total))
		})
	}
}

func TestPaymentMethod_LedgerMode(t *testing.T) {
	assert.Equal(t, ledger.PaymentModeCash, PaymentMethodCash.LedgerMode())
	assert.Equal(t, ledger.PaymentModeOnline, PaymentMethodBankTransfer.LedgerMode())
	assert.Equal(t, ledger.PaymentModeCheque, PaymentMethodCheque.LedgerMode())
}

// ============================================
// FormatInvoiceNumber Tests
// ============================================

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "250702", FormatInvoiceNumber(at, 2))
	assert.Equal(t, "250712", FormatInvoiceNumber(at, 12))

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "260101", FormatInvoiceNumber(jan, 1))
}

// ============================================
// NewInvoice Tests
// ============================================

func TestNewInvoice(t *testing.T) {
	leadID := uuid.New()
	invoice, err := NewInvoice(leadID, "250701", testItems(t, 600, 400), "first order")

	require.NoError(t, err)
	assert.Equal(t, leadID, invoice.LeadID)
	assert.Equal(t, "250701", invoice.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(1000).Equal(invoice.TotalAmount))
	assert.True(t, invoice.AmountReceived.IsZero())
	assert.True(t, decimal.NewFromInt(1000).Equal(invoice.AmountRemaining))
	assert.Equal(t, InvoiceStatusDraft, invoice.Status)
	assert.Len(t, invoice.Items, 2)
	for _, item := range invoice.Items {
		assert.Equal(t, invoice.ID, item.InvoiceID)
	}
	assert.Len(t, invoice.GetDomainEvents(), 1)
}

func TestNewInvoice_Validation(t *testing.T) {
	items := testItems(t, 100)

	_, err := NewInvoice(uuid.Nil, "250701", items, "")
	assert.Error(t, err)

	_, err = NewInvoice(uuid.New(), "", items, "")
	assert.Error(t, err)

	_, err = NewInvoice(uuid.New(), "250701", nil, "")
	assert.Error(t, err)
}

func TestNewInvoiceItem_Validation(t *testing.T) {
	_, err := NewInvoiceItem("", "", decimal.NewFromInt(100))
	assert.Error(t, err)

	_, err = NewInvoiceItem("Consulting", "", decimal.Zero)
	assert.Error(t, err)
}

// ============================================
// Payment Reconciliation Tests
// ============================================

func TestInvoice_OpeningPaymentRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		opening float64
		want    InvoiceStatus
	}{
		{"no opening payment", 0, InvoiceStatusPending},
		{"partial opening payment", 400, InvoiceStatusPartiallyPaid},
		{"full opening payment", 1000, InvoiceStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := createTestInvoice(t, 1000)

			_, err := invoice.AddPayment(decimal.NewFromFloat(tt.opening), time.Now(), PaymentMethodCash, "", "")
			require.NoError(t, err)

			assert.True(t, decimal.NewFromInt(1000).Equal(invoice.TotalAmount))
			assert.True(t, decimal.NewFromFloat(tt.opening).Equal(invoice.AmountReceived))
			assert.True(t, decimal.NewFromFloat(1000-tt.opening).Equal(invoice.AmountRemaining))
			assert.Equal(t, tt.want, invoice.Status)
		})
	}
}

func TestInvoice_PaymentLifecycle(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	assert.Equal(t, InvoiceStatusDraft, invoice.Status)

	// Reconcile with no payments: pending, not draft.
	invoice.Recalculate()
	assert.Equal(t, InvoiceStatusPending, invoice.Status)

	_, err := invoice.AddPayment(decimal.NewFromInt(400), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(invoice.AmountReceived))
	assert.True(t, decimal.NewFromInt(600).Equal(invoice.AmountRemaining))
	assert.Equal(t, InvoiceStatusPartiallyPaid, invoice.Status)

	second, err := invoice.AddPayment(decimal.NewFromInt(600), time.Now(), PaymentMethodBankTransfer, "TX-1", "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(invoice.AmountReceived))
	assert.True(t, invoice.AmountRemaining.IsZero())
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)

	removed, err := invoice.RemovePayment(second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, removed.ID)
	assert.True(t, decimal.NewFromInt(400).Equal(invoice.AmountReceived))
	assert.True(t, decimal.NewFromInt(600).Equal(invoice.AmountRemaining))
	assert.Equal(t, InvoiceStatusPartiallyPaid, invoice.Status)
}

func TestInvoice_PaymentBoundary(t *testing.T) {
	invoice := createTestInvoice(t, 1000)

	_, err := invoice.AddPayment(decimal.NewFromFloat(999.99), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartiallyPaid, invoice.Status)

	_, err = invoice.AddPayment(decimal.NewFromFloat(0.01), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)
}

func TestInvoice_AddPayment_RejectsNegative(t *testing.T) {
	invoice := createTestInvoice(t, 1000)

	_, err := invoice.AddPayment(decimal.NewFromInt(-10), time.Now(), PaymentMethodCash, "", "")
	assert.Error(t, err)
}

func TestInvoice_RemovePayment_DrainsToPending(t *testing.T) {
	invoice := createTestInvoice(t, 1000)

	payment, err := invoice.AddPayment(decimal.NewFromInt(400), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	_, err = invoice.RemovePayment(payment.ID)
	require.NoError(t, err)
	assert.True(t, invoice.AmountReceived.IsZero())
	assert.Equal(t, InvoiceStatusPending, invoice.Status)
}

func TestInvoice_RemovePayment_NotFound(t *testing.T) {
	invoice := createTestInvoice(t, 1000)

	_, err := invoice.RemovePayment(uuid.New())
	assert.Error(t, err)
}

func TestInvoice_Recalculate_Idempotent(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	_, err := invoice.AddPayment(decimal.NewFromInt(250), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	received := invoice.AmountReceived
	remaining := invoice.AmountRemaining
	status := invoice.Status

	invoice.Recalculate()
	invoice.Recalculate()

	assert.True(t, received.Equal(invoice.AmountReceived))
	assert.True(t, remaining.Equal(invoice.AmountRemaining))
	assert.Equal(t, status, invoice.Status)
}

// ============================================
// Refund Tests
// ============================================

// A standalone refund always leaves the invoice in partially_paid, even
// when it drains amount_received to zero. This pins the behavior on
// purpose; change it only with confirmed product intent.
func TestInvoice_ApplyRefund_ForcesPartiallyPaid(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	_, err := invoice.AddPayment(decimal.NewFromInt(400), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	_, err = invoice.ApplyRefund(decimal.NewFromInt(400), time.Now(), PaymentMethodCash, "full refund")
	require.NoError(t, err)

	assert.True(t, invoice.AmountReceived.IsZero())
	assert.True(t, decimal.NewFromInt(1000).Equal(invoice.AmountRemaining))
	assert.Equal(t, InvoiceStatusPartiallyPaid, invoice.Status)
}

func TestInvoice_ApplyRefund_RecordsNegativePayment(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	_, err := invoice.AddPayment(decimal.NewFromInt(500), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	refund, err := invoice.ApplyRefund(decimal.NewFromInt(200), time.Now(), PaymentMethodCash, "")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(-200).Equal(refund.Amount))
	assert.True(t, decimal.NewFromInt(300).Equal(invoice.AmountReceived))
}

func TestInvoice_ApplyRefund_ExceedsReceived(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	_, err := invoice.AddPayment(decimal.NewFromInt(100), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	_, err = invoice.ApplyRefund(decimal.NewFromInt(200), time.Now(), PaymentMethodCash, "")
	assert.Error(t, err)
}

// ============================================
// Delta Adjustment Tests
// ============================================

func TestInvoice_ApplyPaymentDelta(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	_, err := invoice.AddPayment(decimal.NewFromInt(300), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	// Edited transaction raised the amount from 300 to 500.
	_, err = invoice.ApplyPaymentDelta(decimal.NewFromInt(200), PaymentMethodCash, "amount corrected")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(invoice.AmountReceived))
	assert.Equal(t, InvoiceStatusPartiallyPaid, invoice.Status)

	// Edited back down by 100.
	_, err = invoice.ApplyPaymentDelta(decimal.NewFromInt(-100), PaymentMethodCash, "amount corrected")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(invoice.AmountReceived))

	_, err = invoice.ApplyPaymentDelta(decimal.Zero, PaymentMethodCash, "")
	assert.Error(t, err)
}

// The invariant behind every mutation path: amount_received equals the
// sum of the payment rows, whichever combination of operations ran.
func TestInvoice_ReceivedAlwaysEqualsPaymentSum(t *testing.T) {
	invoice := createTestInvoice(t, 2000)

	p1, err := invoice.AddPayment(decimal.NewFromInt(700), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)
	_, err = invoice.AddPayment(decimal.NewFromInt(700), time.Now(), PaymentMethodCheque, "", "")
	require.NoError(t, err)
	_, err = invoice.ApplyRefund(decimal.NewFromInt(300), time.Now(), PaymentMethodCash, "")
	require.NoError(t, err)
	_, err = invoice.RemovePayment(p1.ID)
	require.NoError(t, err)
	_, err = invoice.ApplyPaymentDelta(decimal.NewFromInt(150), PaymentMethodCash, "")
	require.NoError(t, err)

	sum := decimal.Zero
	for _, p := range invoice.Payments {
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(invoice.AmountReceived))
	assert.True(t, invoice.TotalAmount.Sub(sum).Equal(invoice.AmountRemaining))
}

// ============================================
// Cancel Tests
// ============================================

func TestInvoice_Cancel(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	require.NoError(t, invoice.Cancel())
	assert.Equal(t, InvoiceStatusCancelled, invoice.Status)

	assert.Error(t, invoice.Cancel())

	_, err := invoice.AddPayment(decimal.NewFromInt(100), time.Now(), PaymentMethodCash, "", "")
	assert.Error(t, err)
}

func TestInvoice_Cancel_PaidInvoice(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	_, err := invoice.AddPayment(decimal.NewFromInt(1000), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)

	assert.Error(t, invoice.Cancel())
}

func TestInvoice_MutationsIncrementVersion(t *testing.T) {
	invoice := createTestInvoice(t, 1000)
	assert.Equal(t, 1, invoice.GetVersion())

	payment, err := invoice.AddPayment(decimal.NewFromInt(400), time.Now(), PaymentMethodCash, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, invoice.GetVersion())

	_, err = invoice.ApplyRefund(decimal.NewFromInt(100), time.Now(), PaymentMethodCash, "")
	require.NoError(t, err)
	assert.Equal(t, 3, invoice.GetVersion())

	_, err = invoice.RemovePayment(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, invoice.GetVersion())

	require.NoError(t, invoice.Cancel())
	assert.Equal(t, 5, invoice.GetVersion())
}
