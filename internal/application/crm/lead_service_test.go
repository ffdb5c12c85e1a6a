package crm

import (
	"context"
	"io"
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

// MockLeadRepository is a mock implementation of crm.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByPhone(ctx context.Context, phone string) (*crm.Lead, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*crm.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) Count(ctx context.Context, filter crm.LeadFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error) {
	args := m.Called(ctx, phone, email)
	return args.Get(0).(bool), args.Error(1)
}

// MockActivityLogRepository is a mock implementation of crm.ActivityLogRepository
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Append(ctx context.Context, log *crm.ActivityLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockActivityLogRepository) FindAll(ctx context.Context, filter crm.ActivityLogFilter) ([]crm.ActivityLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.ActivityLog), args.Error(1)
}

func (m *MockActivityLogRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.ActivityLog, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]crm.ActivityLog), args.Error(1)
}

func (m *MockActivityLogRepository) Count(ctx context.Context, filter crm.ActivityLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityLogRepository) CountLeadsHandled(ctx context.Context, from, to time.Time, userID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, from, to, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockNoteRepository is a mock implementation of crm.NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.Note, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]crm.Note), args.Error(1)
}

func (m *MockNoteRepository) Save(ctx context.Context, note *crm.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDocumentRepository is a mock implementation of crm.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.Document, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]crm.Document), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, document *crm.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBlobStorage is a mock implementation of BlobStorage
type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Store(ctx context.Context, namespace, fileName string, content io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, namespace, fileName, content, contentType)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockBlobStorage) Download(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// =============================================================================
// Test Helpers
// =============================================================================

type leadServiceFixture struct {
	service      *LeadService
	leadRepo     *MockLeadRepository
	activityRepo *MockActivityLogRepository
	noteRepo     *MockNoteRepository
	documentRepo *MockDocumentRepository
	storage      *MockBlobStorage
}

func newLeadServiceFixture() *leadServiceFixture {
	f := &leadServiceFixture{
		leadRepo:     new(MockLeadRepository),
		activityRepo: new(MockActivityLogRepository),
		noteRepo:     new(MockNoteRepository),
		documentRepo: new(MockDocumentRepository),
		storage:      new(MockBlobStorage),
	}
	f.service = NewLeadService(f.leadRepo, f.activityRepo, f.noteRepo, f.documentRepo, f.storage, zap.NewNop())
	return f
}

func createTestLead(t *testing.T) *crm.Lead {
	t.Helper()
	lead, err := crm.NewLead("Ali Raza", "ali@example.com", "+923001234567", "Lahore",
		crm.LeadSourceFacebook, crm.LeadStatusQuery)
	assert.NoError(t, err)
	lead.ClearDomainEvents()
	return lead
}

// =============================================================================
// Create
// =============================================================================

func TestLeadService_Create_Success(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()

	f.leadRepo.On("ExistsByPhoneOrEmail", ctx, "+923001234567", "ali@example.com").Return(false, nil)
	f.leadRepo.On("Save", ctx, mock.AnythingOfType("*crm.Lead")).Return(nil)

	var logged *crm.ActivityLog
	f.activityRepo.On("Append", ctx, mock.AnythingOfType("*crm.ActivityLog")).Run(func(args mock.Arguments) {
		logged = args.Get(1).(*crm.ActivityLog)
	}).Return(nil)

	result, err := f.service.Create(ctx, CreateLeadRequest{
		Name:  "Ali Raza",
		Email: "ali@example.com",
		Phone: "+923001234567",
		City:  "Lahore",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Ali Raza", result.Name)
	assert.True(t, result.LeadActiveStatus)
	assert.True(t, result.NotificationStatus)

	assert.NotNil(t, logged)
	assert.Equal(t, crm.ActivityLeadCreated, logged.ActivityType)

	f.leadRepo.AssertExpectations(t)
}

func TestLeadService_Create_DuplicatePhoneBlocked(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()

	f.leadRepo.On("ExistsByPhoneOrEmail", ctx, "+923001234567", "").Return(true, nil)

	result, err := f.service.Create(ctx, CreateLeadRequest{
		Name:  "Ali Raza",
		Phone: "+923001234567",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_LEAD", domainErr.Code)

	f.leadRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// =============================================================================
// Update
// =============================================================================

func TestLeadService_Update_LogsChangedFields(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()
	actorID := uuid.New()

	lead := createTestLead(t)
	f.leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)
	f.leadRepo.On("Save", ctx, lead).Return(nil)

	var logged *crm.ActivityLog
	f.activityRepo.On("Append", ctx, mock.AnythingOfType("*crm.ActivityLog")).Run(func(args mock.Arguments) {
		logged = args.Get(1).(*crm.ActivityLog)
	}).Return(nil)

	newCity := "Karachi"
	result, err := f.service.Update(ctx, lead.ID, UpdateLeadRequest{City: &newCity}, actorID)

	assert.NoError(t, err)
	assert.Equal(t, "Karachi", result.City)

	assert.NotNil(t, logged)
	assert.Equal(t, crm.ActivityFieldUpdated, logged.ActivityType)
	assert.Equal(t, actorID, logged.UserID)

	f.leadRepo.AssertExpectations(t)
}

func TestLeadService_Update_NoChangesSkipsSave(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()

	lead := createTestLead(t)
	f.leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)

	sameCity := lead.City
	result, err := f.service.Update(ctx, lead.ID, UpdateLeadRequest{City: &sameCity}, uuid.New())

	assert.NoError(t, err)
	assert.NotNil(t, result)

	f.leadRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.activityRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// =============================================================================
// MarkViewed
// =============================================================================

func TestLeadService_MarkViewed_LeavesNoActivityTrail(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()
	actorID := uuid.New()

	lead := createTestLead(t)
	assert.NoError(t, lead.Assign(actorID))
	assert.True(t, lead.NotificationStatus)

	f.leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)
	f.leadRepo.On("Save", ctx, lead).Return(nil)

	err := f.service.MarkViewed(ctx, lead.ID, actorID)

	assert.NoError(t, err)
	assert.False(t, lead.NotificationStatus)

	f.activityRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLeadService_MarkViewed_OnlyAssigneeMayClear(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()

	lead := createTestLead(t)
	assert.NoError(t, lead.Assign(uuid.New()))

	f.leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)

	err := f.service.MarkViewed(ctx, lead.ID, uuid.New())

	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.True(t, lead.NotificationStatus)
	f.leadRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeadService_MarkViewedWithLog_RecordsAcknowledgment(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()
	actorID := uuid.New()

	lead := createTestLead(t)
	assert.NoError(t, lead.Assign(actorID))
	f.leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)
	f.leadRepo.On("Save", ctx, lead).Return(nil)

	var logged *crm.ActivityLog
	f.activityRepo.On("Append", ctx, mock.AnythingOfType("*crm.ActivityLog")).Run(func(args mock.Arguments) {
		logged = args.Get(1).(*crm.ActivityLog)
	}).Return(nil)

	err := f.service.MarkViewedWithLog(ctx, lead.ID, actorID)

	assert.NoError(t, err)
	assert.False(t, lead.NotificationStatus)
	assert.NotNil(t, logged)
	assert.Equal(t, crm.ActivityFieldUpdated, logged.ActivityType)
}

// =============================================================================
// Delete
// =============================================================================

func TestLeadService_Delete_RemovesStoredDocuments(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()

	leadID := uuid.New()
	doc, err := crm.NewDocument(leadID, uuid.New(), "contract.pdf", "lead-documents/abc/contract.pdf")
	assert.NoError(t, err)

	f.documentRepo.On("FindByLead", ctx, leadID).Return([]crm.Document{*doc}, nil)
	f.leadRepo.On("Delete", ctx, leadID).Return(nil)
	f.storage.On("Delete", ctx, "lead-documents/abc/contract.pdf").Return(nil)

	err = f.service.Delete(ctx, leadID)

	assert.NoError(t, err)
	f.leadRepo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

// =============================================================================
// Documents
// =============================================================================

func TestLeadService_UploadDocument(t *testing.T) {
	ctx := context.Background()
	f := newLeadServiceFixture()

	lead := createTestLead(t)
	leadID := lead.ID

	f.leadRepo.On("FindByID", ctx, leadID).Return(lead, nil)
	f.storage.On("Store", ctx, NamespaceLeadDocuments, "receipt.pdf", mock.Anything, "application/pdf").
		Return("lead-documents/xyz/receipt.pdf", nil)
	f.documentRepo.On("Save", ctx, mock.AnythingOfType("*crm.Document")).Return(nil)
	f.activityRepo.On("Append", ctx, mock.AnythingOfType("*crm.ActivityLog")).Return(nil)

	result, err := f.service.UploadDocument(ctx, leadID, uuid.New(), "receipt.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")

	assert.NoError(t, err)
	assert.Equal(t, "receipt.pdf", result.FileName)

	f.storage.AssertExpectations(t)
	f.documentRepo.AssertExpectations(t)
}
