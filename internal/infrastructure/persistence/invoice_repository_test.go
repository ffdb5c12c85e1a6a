package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.InvoicePaymentModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestInvoice(t *testing.T, number string, amounts ...int64) *billing.Invoice {
	items := make([]*billing.InvoiceItem, 0, len(amounts))
	for _, amount := range amounts {
		item, err := billing.NewInvoiceItem("Consulting", "", decimal.NewFromInt(amount))
		require.NoError(t, err)
		items = append(items, item)
	}
	invoice, err := billing.NewInvoice(uuid.New(), number, items, "")
	require.NoError(t, err)
	return invoice
}

func TestInvoiceRepository_SaveAndFindByID(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "260801", 600, 400)
	_, err := invoice.AddPayment(decimal.NewFromInt(250), time.Now(), billing.PaymentMethodCash, "", "")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, invoice))

	found, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "260801", found.InvoiceNumber)
	assert.Len(t, found.Items, 2)
	assert.Len(t, found.Payments, 1)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, found.AmountReceived.Equal(decimal.NewFromInt(250)))
	assert.True(t, found.AmountRemaining.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, found.Status)
	assert.Equal(t, invoice.GetVersion(), found.GetVersion())
}

func TestInvoiceRepository_SaveWithLock_PersistsPaymentMutation(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "260802", 1000)
	require.NoError(t, repo.Save(ctx, invoice))

	loaded, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)

	_, err = loaded.AddPayment(decimal.NewFromInt(400), time.Now(), billing.PaymentMethodCash, "", "")
	require.NoError(t, err)

	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Payments, 1)
	assert.True(t, reloaded.AmountReceived.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, reloaded.Status)
	assert.Equal(t, invoice.GetVersion()+1, reloaded.GetVersion())
}

func TestInvoiceRepository_SaveWithLock_StaleAggregateRejected(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "260803", 1000)
	require.NoError(t, repo.Save(ctx, invoice))

	first, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)

	_, err = first.AddPayment(decimal.NewFromInt(100), time.Now(), billing.PaymentMethodCash, "", "")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, first))

	_, err = second.AddPayment(decimal.NewFromInt(200), time.Now(), billing.PaymentMethodCash, "", "")
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, second)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VERSION_CONFLICT", domainErr.Code)
}

func TestInvoiceRepository_SaveWithLock_RemovesDroppedPaymentRows(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, "260804", 1000)
	payment, err := invoice.AddPayment(decimal.NewFromInt(300), time.Now(), billing.PaymentMethodCash, "", "")
	require.NoError(t, err)
	_, err = invoice.AddPayment(decimal.NewFromInt(200), time.Now(), billing.PaymentMethodCheque, "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, invoice))

	loaded, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	_, err = loaded.RemovePayment(payment.ID)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	var rows int64
	require.NoError(t, db.Model(&models.InvoicePaymentModel{}).
		Where("invoice_id = ?", invoice.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	reloaded, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Payments, 1)
	assert.True(t, reloaded.AmountReceived.Equal(decimal.NewFromInt(200)))
}
