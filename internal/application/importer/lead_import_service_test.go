package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockLeadRepositoryForImport is a mock implementation of crm.LeadRepository
type MockLeadRepositoryForImport struct {
	mock.Mock
}

func (m *MockLeadRepositoryForImport) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepositoryForImport) FindByPhone(ctx context.Context, phone string) (*crm.Lead, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepositoryForImport) FindByEmail(ctx context.Context, email string) (*crm.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepositoryForImport) FindAll(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Lead), args.Error(1)
}

func (m *MockLeadRepositoryForImport) Save(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepositoryForImport) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepositoryForImport) Count(ctx context.Context, filter crm.LeadFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepositoryForImport) ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error) {
	args := m.Called(ctx, phone, email)
	return args.Get(0).(bool), args.Error(1)
}

// MockActivityLogRepositoryForImport is a mock implementation of crm.ActivityLogRepository
type MockActivityLogRepositoryForImport struct {
	mock.Mock
}

func (m *MockActivityLogRepositoryForImport) Append(ctx context.Context, log *crm.ActivityLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockActivityLogRepositoryForImport) FindAll(ctx context.Context, filter crm.ActivityLogFilter) ([]crm.ActivityLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.ActivityLog), args.Error(1)
}

func (m *MockActivityLogRepositoryForImport) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.ActivityLog, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]crm.ActivityLog), args.Error(1)
}

func (m *MockActivityLogRepositoryForImport) Count(ctx context.Context, filter crm.ActivityLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityLogRepositoryForImport) CountLeadsHandled(ctx context.Context, from, to time.Time, userID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to, userID)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Tests
// =============================================================================

func newImportFixture() (*LeadImportService, *MockLeadRepositoryForImport, *MockActivityLogRepositoryForImport) {
	leadRepo := new(MockLeadRepositoryForImport)
	activityRepo := new(MockActivityLogRepositoryForImport)
	service := NewLeadImportService(leadRepo, activityRepo, zap.NewNop())
	return service, leadRepo, activityRepo
}

func TestLeadImportService_Import_CreatesAndSkips(t *testing.T) {
	ctx := context.Background()
	service, leadRepo, activityRepo := newImportFixture()

	csv := "name,phone,email,city,lead_source,lead_status\n" +
		"Ali Raza,+923001234567,ali@example.com,Lahore,Facebook,Query\n" +
		"Sana Khan,+923009876543,,,Instagram,\n" +
		"Existing Lead,+923005555555,,Karachi,Website,\n"

	leadRepo.On("ExistsByPhoneOrEmail", ctx, "+923001234567", "ali@example.com").Return(false, nil)
	leadRepo.On("ExistsByPhoneOrEmail", ctx, "+923009876543", "").Return(false, nil)
	leadRepo.On("ExistsByPhoneOrEmail", ctx, "+923005555555", "").Return(true, nil)

	var saved []*crm.Lead
	leadRepo.On("Save", ctx, mock.AnythingOfType("*crm.Lead")).Run(func(args mock.Arguments) {
		saved = append(saved, args.Get(1).(*crm.Lead))
	}).Return(nil)
	activityRepo.On("Append", ctx, mock.AnythingOfType("*crm.ActivityLog")).Return(nil)

	result, err := service.Import(ctx, strings.NewReader(csv), Config{
		DefaultCity:   "Lahore",
		DefaultSource: "Other",
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Empty(t, result.FailedRows)

	// Imported leads arrive with the unread flag cleared
	assert.Len(t, saved, 2)
	for _, lead := range saved {
		assert.False(t, lead.NotificationStatus)
	}
	// Blank cells fall back to the configured defaults
	assert.Equal(t, "Lahore", saved[1].City)

	leadRepo.AssertExpectations(t)
}

func TestLeadImportService_Import_RowMissingPhoneFails(t *testing.T) {
	ctx := context.Background()
	service, leadRepo, _ := newImportFixture()

	csv := "name,phone,email\n" +
		"No Phone,,\n"

	result, err := service.Import(ctx, strings.NewReader(csv), Config{})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Len(t, result.FailedRows, 1)
	assert.Contains(t, result.FailedRows[0], "line 2")

	leadRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeadImportService_Import_SaveConflictCountsAsSkip(t *testing.T) {
	ctx := context.Background()
	service, leadRepo, activityRepo := newImportFixture()

	// Two rows with the same phone: the second passes the upfront check
	// against the database but fails on save
	csv := "name,phone,email\n" +
		"First,+923001111111,\n" +
		"Second,+923001111111,\n"

	leadRepo.On("ExistsByPhoneOrEmail", ctx, "+923001111111", "").Return(false, nil)
	leadRepo.On("Save", ctx, mock.AnythingOfType("*crm.Lead")).Return(nil).Once()
	leadRepo.On("Save", ctx, mock.AnythingOfType("*crm.Lead")).Return(shared.NewDomainError("DUPLICATE", "duplicate key")).Once()
	activityRepo.On("Append", ctx, mock.Anything).Return(nil)

	result, err := service.Import(ctx, strings.NewReader(csv), Config{})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
}

func TestLeadImportService_Import_MissingRequiredColumns(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newImportFixture()

	csv := "full_name,contact\nAli,+923001234567\n"

	result, err := service.Import(ctx, strings.NewReader(csv), Config{})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TEMPLATE", domainErr.Code)
}

func TestLeadImportService_Import_EmptyFile(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newImportFixture()

	result, err := service.Import(ctx, strings.NewReader(""), Config{})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_FILE", domainErr.Code)
}

func TestLeadImportService_Import_RowLimit(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newImportFixture()

	var sb strings.Builder
	sb.WriteString("name,phone\n")
	sb.WriteString("A,+923000000001\n")
	sb.WriteString("B,+923000000002\n")
	sb.WriteString("C,+923000000003\n")

	result, err := service.Import(ctx, strings.NewReader(sb.String()), Config{MaxRows: 2})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FILE_TOO_LARGE", domainErr.Code)
}

func TestTemplateCSV_HasRequiredColumns(t *testing.T) {
	header := strings.SplitN(string(TemplateCSV()), "\n", 2)[0]
	assert.Contains(t, header, "name")
	assert.Contains(t, header, "phone")
}
