package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/domain/identity"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/auth"
	"github.com/fieldline/crm-backend/internal/infrastructure/config"
)

// =============================================================================
// Mock Repository
// =============================================================================

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newAuthServiceFixture() (*AuthService, *MockUserRepository) {
	userRepo := new(MockUserRepository)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
	return NewAuthService(userRepo, jwtService, zap.NewNop()), userRepo
}

func createTestUser(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("ayesha", "ayesha@example.com", password, identity.UserRoleStaff)
	assert.NoError(t, err)
	return user
}

// =============================================================================
// Login
// =============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	user := createTestUser(t, "correct-horse1")
	userRepo.On("FindByUsername", ctx, "ayesha").Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	result, err := service.Login(ctx, LoginRequest{Username: "Ayesha ", Password: "correct-horse1"})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "ayesha", result.User.Username)
	assert.NotNil(t, user.LastLoginAt)

	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	user := createTestUser(t, "correct-horse1")
	userRepo.On("FindByUsername", ctx, "ayesha").Return(user, nil)

	result, err := service.Login(ctx, LoginRequest{Username: "ayesha", Password: "wrong-password1"})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownUserSameError(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	userRepo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

	result, err := service.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever123"})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	// Same code as a wrong password, so usernames cannot be probed
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	user := createTestUser(t, "correct-horse1")
	user.Deactivate()
	userRepo.On("FindByUsername", ctx, "ayesha").Return(user, nil)

	result, err := service.Login(ctx, LoginRequest{Username: "ayesha", Password: "correct-horse1"})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_DISABLED", domainErr.Code)
}

// =============================================================================
// User administration
// =============================================================================

func TestAuthService_CreateUser(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	result, err := service.CreateUser(ctx, CreateUserRequest{
		Username:    "bilal",
		Email:       "bilal@example.com",
		Password:    "secure-pass9",
		DisplayName: "Bilal Ahmed",
		Role:        "admin",
	})

	assert.NoError(t, err)
	assert.Equal(t, "bilal", result.Username)
	assert.Equal(t, "Bilal Ahmed", result.DisplayName)
	assert.Equal(t, "admin", result.Role)
	assert.True(t, result.Active)

	userRepo.AssertExpectations(t)
}

func TestAuthService_CreateUser_InvalidRole(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	result, err := service.CreateUser(ctx, CreateUserRequest{
		Username: "bilal",
		Email:    "bilal@example.com",
		Password: "secure-pass9",
		Role:     "superuser",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	user := createTestUser(t, "old-password1")
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	err := service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "old-password1",
		NewPassword:     "new-password2",
	})

	assert.NoError(t, err)
	assert.True(t, user.VerifyPassword("new-password2"))
	assert.False(t, user.VerifyPassword("old-password1"))
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	user := createTestUser(t, "old-password1")
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	err := service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "not-the-password1",
		NewPassword:     "new-password2",
	})

	assert.Error(t, err)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_SetActive(t *testing.T) {
	ctx := context.Background()
	service, userRepo := newAuthServiceFixture()

	user := createTestUser(t, "some-password1")
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	result, err := service.SetActive(ctx, user.ID, false)

	assert.NoError(t, err)
	assert.False(t, result.Active)
	assert.False(t, user.Active)
}
