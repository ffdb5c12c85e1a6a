package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/ledger"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSequenceRepository is a mock implementation of billing.SequenceRepository
type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) Next(ctx context.Context, year int, month time.Month) (int, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(int), args.Error(1)
}

// MockLedgerEntryRepository is a mock implementation of ledger.EntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindAll(ctx context.Context, filter ledger.EntryFilter) ([]ledger.Entry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.Entry, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func (m *MockLedgerEntryRepository) Save(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) DeleteByPaymentID(ctx context.Context, paymentID uuid.UUID) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) Count(ctx context.Context, filter ledger.EntryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerEntryRepository) Sum(ctx context.Context, filter ledger.EntryFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerEntryRepository) Stats(ctx context.Context, from, to *time.Time) (*ledger.DashboardStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.DashboardStats), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

// fakeScope runs the transactional function directly against the mocks,
// standing in for a real database transaction.
type fakeScope struct {
	invoiceRepo  billing.InvoiceRepository
	sequenceRepo billing.SequenceRepository
	ledgerRepo   ledger.EntryRepository
}

func (s *fakeScope) InvoiceRepo() billing.InvoiceRepository   { return s.invoiceRepo }
func (s *fakeScope) SequenceRepo() billing.SequenceRepository { return s.sequenceRepo }
func (s *fakeScope) LedgerRepo() ledger.EntryRepository       { return s.ledgerRepo }

func (s *fakeScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

type invoiceServiceFixture struct {
	service      *InvoiceService
	invoiceRepo  *MockInvoiceRepository
	sequenceRepo *MockSequenceRepository
	ledgerRepo   *MockLedgerEntryRepository
}

func newInvoiceServiceFixture() *invoiceServiceFixture {
	invoiceRepo := new(MockInvoiceRepository)
	sequenceRepo := new(MockSequenceRepository)
	ledgerRepo := new(MockLedgerEntryRepository)
	scope := &fakeScope{
		invoiceRepo:  invoiceRepo,
		sequenceRepo: sequenceRepo,
		ledgerRepo:   ledgerRepo,
	}
	return &invoiceServiceFixture{
		service:      NewInvoiceService(scope, invoiceRepo, ledgerRepo, zap.NewNop()),
		invoiceRepo:  invoiceRepo,
		sequenceRepo: sequenceRepo,
		ledgerRepo:   ledgerRepo,
	}
}

func createTestInvoice(t *testing.T, total decimal.Decimal) *billing.Invoice {
	t.Helper()
	item, err := billing.NewInvoiceItem("Consulting", "", total)
	assert.NoError(t, err)
	invoice, err := billing.NewInvoice(uuid.New(), "INV-250801", []*billing.InvoiceItem{item}, "")
	assert.NoError(t, err)
	return invoice
}

// =============================================================================
// Create
// =============================================================================

func TestInvoiceService_Create_WithOpeningPayment(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	f.sequenceRepo.On("Next", ctx, mock.AnythingOfType("int"), mock.AnythingOfType("time.Month")).Return(7, nil)
	f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	var mirrored *ledger.Entry
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Run(func(args mock.Arguments) {
		mirrored = args.Get(1).(*ledger.Entry)
	}).Return(nil)

	result, err := f.service.Create(ctx, CreateInvoiceRequest{
		LeadID: uuid.New(),
		Items: []InvoiceItemRequest{
			{ServiceName: "Website", Amount: decimal.NewFromInt(10000)},
		},
		OpeningPayment: &OpeningPaymentRequest{
			Amount:        decimal.NewFromInt(4000),
			PaymentMethod: "cash",
		},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, billing.FormatInvoiceNumber(time.Now(), 7), result.InvoiceNumber)
	assert.Equal(t, "partially_paid", result.Status)
	assert.Equal(t, "4000", result.AmountReceived.String())
	assert.Equal(t, "6000", result.AmountRemaining.String())
	assert.Len(t, result.Payments, 1)

	// The ledger mirror carries the explicit payment link
	assert.NotNil(t, mirrored)
	assert.Equal(t, ledger.PaymentTypeReceived, mirrored.PaymentType)
	assert.Equal(t, result.Payments[0].ID, *mirrored.PaymentID)
	assert.Equal(t, "4000", mirrored.Amount.String())

	f.sequenceRepo.AssertExpectations(t)
	f.invoiceRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_NoPaymentStartsAsDraft(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	f.sequenceRepo.On("Next", ctx, mock.Anything, mock.Anything).Return(1, nil)
	f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	result, err := f.service.Create(ctx, CreateInvoiceRequest{
		LeadID: uuid.New(),
		Items: []InvoiceItemRequest{
			{ServiceName: "SEO", Amount: decimal.NewFromInt(5000)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "draft", result.Status)
	assert.Empty(t, result.Payments)

	// No money moved, so no ledger entry is written
	f.ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_Create_InvalidItemAmount(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	result, err := f.service.Create(ctx, CreateInvoiceRequest{
		LeadID: uuid.New(),
		Items: []InvoiceItemRequest{
			{ServiceName: "Hosting", Amount: decimal.NewFromInt(-100)},
		},
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	f.sequenceRepo.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
}

// =============================================================================
// AddPayment / DeletePayment
// =============================================================================

func TestInvoiceService_AddPayment_FullAmountMarksPaid(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	invoice := createTestInvoice(t, decimal.NewFromInt(5000))
	f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)

	result, err := f.service.AddPayment(ctx, invoice.ID, AddPaymentRequest{
		Amount:        decimal.NewFromInt(5000),
		PaymentMethod: "bank_transfer",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "paid", result.Status)
	assert.Equal(t, "0", result.AmountRemaining.String())

	f.invoiceRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

func TestInvoiceService_DeletePayment_RevertsToPending(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	invoice := createTestInvoice(t, decimal.NewFromInt(5000))
	payment, err := invoice.AddPayment(decimal.NewFromInt(5000), time.Now(), billing.PaymentMethodCash, "", "")
	assert.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)

	f.invoiceRepo.On("FindByPaymentID", ctx, payment.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)
	f.ledgerRepo.On("DeleteByPaymentID", ctx, payment.ID).Return(nil)

	result, err := f.service.DeletePayment(ctx, payment.ID, nil)

	assert.NoError(t, err)
	// Drained back to zero means pending, never back to draft
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "0", result.AmountReceived.String())
	assert.Empty(t, result.Payments)

	f.invoiceRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

// =============================================================================
// RecordTransaction
// =============================================================================

func TestInvoiceService_RecordTransaction_Expense(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)

	entry, err := f.service.RecordTransaction(ctx, RecordTransactionRequest{
		PaymentType:     "Expenses",
		PaymentMode:     "Cash",
		TransactionType: "Debit",
		Amount:          decimal.NewFromInt(1500),
		VendorName:      "Office Supplies Co",
	})

	assert.NoError(t, err)
	assert.Equal(t, ledger.PaymentTypeExpenses, entry.PaymentType)
	assert.Nil(t, entry.InvoiceID)

	// Expenses never touch an invoice
	f.invoiceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.ledgerRepo.AssertExpectations(t)
}

func TestInvoiceService_RecordTransaction_ReceivedAgainstInvoice(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	invoice := createTestInvoice(t, decimal.NewFromInt(8000))
	f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)

	entry, err := f.service.RecordTransaction(ctx, RecordTransactionRequest{
		PaymentType:     "Received",
		PaymentMode:     "Online",
		TransactionType: "Credit",
		Amount:          decimal.NewFromInt(3000),
		InvoiceID:       &invoice.ID,
	})

	assert.NoError(t, err)
	assert.NotNil(t, entry.PaymentID)
	assert.Equal(t, invoice.LeadID, *entry.LeadID)
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, invoice.Status)
	assert.Equal(t, "3000", invoice.AmountReceived.String())

	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RecordTransaction_RefundDrainForcesPartiallyPaid(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	invoice := createTestInvoice(t, decimal.NewFromInt(5000))
	_, err := invoice.AddPayment(decimal.NewFromInt(2000), time.Now(), billing.PaymentMethodCash, "", "")
	assert.NoError(t, err)

	f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)
	f.ledgerRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil)

	// Refund the full received amount
	entry, err := f.service.RecordTransaction(ctx, RecordTransactionRequest{
		PaymentType:     "Refunded",
		PaymentMode:     "Cash",
		TransactionType: "Debit",
		Amount:          decimal.NewFromInt(2000),
		InvoiceID:       &invoice.ID,
	})

	assert.NoError(t, err)
	assert.NotNil(t, entry.PaymentID)
	assert.Equal(t, "0", invoice.AmountReceived.String())
	// Status stays partially_paid even with nothing received
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, invoice.Status)
}

func TestInvoiceService_RecordTransaction_ReceivedWithoutInvoiceRejected(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	entry, err := f.service.RecordTransaction(ctx, RecordTransactionRequest{
		PaymentType:     "Received",
		PaymentMode:     "Cash",
		TransactionType: "Credit",
		Amount:          decimal.NewFromInt(1000),
	})

	assert.Error(t, err)
	assert.Nil(t, entry)
	f.ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// =============================================================================
// EditTransaction
// =============================================================================

func TestInvoiceService_EditTransaction_AppliesDeltaToInvoice(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	invoice := createTestInvoice(t, decimal.NewFromInt(10000))
	payment, err := invoice.AddPayment(decimal.NewFromInt(2000), time.Now(), billing.PaymentMethodCash, "", "")
	assert.NoError(t, err)

	entry, err := ledger.NewEntry(ledger.PaymentTypeReceived, ledger.PaymentModeCash, ledger.TransactionTypeCredit, decimal.NewFromInt(2000), time.Now())
	assert.NoError(t, err)
	assert.NoError(t, entry.LinkInvoice(invoice.ID))
	assert.NoError(t, entry.LinkPayment(payment.ID))

	f.ledgerRepo.On("FindByID", ctx, entry.ID).Return(entry, nil)
	f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)
	f.ledgerRepo.On("Save", ctx, entry).Return(nil)

	result, err := f.service.EditTransaction(ctx, entry.ID, EditTransactionRequest{
		PaymentType: "Received",
		Amount:      decimal.NewFromInt(3500),
	})

	assert.NoError(t, err)
	assert.Equal(t, "3500", result.Amount.String())
	// The +1500 difference flows through the invoice as an adjustment
	assert.Equal(t, "3500", invoice.AmountReceived.String())
	assert.Len(t, invoice.Payments, 2)

	f.invoiceRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
}

func TestInvoiceService_EditTransaction_SameAmountSkipsInvoice(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceServiceFixture()

	invoiceID := uuid.New()
	entry, err := ledger.NewEntry(ledger.PaymentTypeReceived, ledger.PaymentModeCash, ledger.TransactionTypeCredit, decimal.NewFromInt(2000), time.Now())
	assert.NoError(t, err)
	assert.NoError(t, entry.LinkInvoice(invoiceID))

	f.ledgerRepo.On("FindByID", ctx, entry.ID).Return(entry, nil)
	f.ledgerRepo.On("Save", ctx, entry).Return(nil)

	_, err = f.service.EditTransaction(ctx, entry.ID, EditTransactionRequest{
		PaymentType: "Received",
		Amount:      decimal.NewFromInt(2000),
	})

	assert.NoError(t, err)
	f.invoiceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
