package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockInvoiceSequenceRepository(t *testing.T) (*GormInvoiceSequenceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInvoiceSequenceRepository(gormDB), mock, mockDB
}

func TestGormInvoiceSequenceRepository_Next(t *testing.T) {
	t.Run("returns the upserted value", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceSequenceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`INSERT INTO invoice_sequences`).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(3))

		value, err := repo.Next(context.Background(), 2025, time.July)

		assert.NoError(t, err)
		assert.Equal(t, 3, value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceSequenceRepository_Current(t *testing.T) {
	t.Run("returns zero when month has no counter yet", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceSequenceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "invoice_sequences" WHERE year = \$1 AND month = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(2025, 7, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		value, err := repo.Current(context.Background(), 2025, time.July)

		assert.NoError(t, err)
		assert.Equal(t, 0, value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
