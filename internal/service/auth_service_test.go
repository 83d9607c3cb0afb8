package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jiffyapply/internal/auth"
	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/model"
	"jiffyapply/internal/quota"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedKind  error
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Email: "  Test@Example.com ", Password: "secret1", FirstName: "Jane", LastName: "Doe"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "email already exists",
			input: RegisterInput{Email: "existing@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "unique index race",
			input: RegisterInput{Email: "race@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:         "short password",
			input:        RegisterInput{Email: "a@example.com", Password: "12345", FirstName: "Jane", LastName: "Doe"},
			setupMock:    func(m *MockUserRepository) {},
			expectedKind: apperrors.ErrValidation,
		},
		{
			name:         "missing last name",
			input:        RegisterInput{Email: "a@example.com", Password: "secret1", FirstName: "Jane"},
			setupMock:    func(m *MockUserRepository) {},
			expectedKind: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret", time.Hour, nil), new(MockTokenStore), quota.DefaultFreeApplications)
			token, user, err := svc.Register(context.Background(), tt.input)

			switch {
			case tt.expectedError != nil:
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, user)
			case tt.expectedKind != nil:
				assert.ErrorIs(t, err, tt.expectedKind)
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, "test@example.com", user.Email)
				assert.NotEqual(t, "secret1", user.PasswordHash)
				assert.True(t, auth.CheckPassword(user.PasswordHash, "secret1"))
				assert.Equal(t, 50, user.FreeApplicationsRemaining)
				assert.Zero(t, user.ApplicationCount)
				assert.Equal(t, model.SubscriptionFree, user.Subscription.Status)
				assert.False(t, user.AcknowledgedFees)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_LongPassword(t *testing.T) {
	password := strings.Repeat("a", 80)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "long@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret", time.Hour, nil), new(MockTokenStore), quota.DefaultFreeApplications)
	token, user, err := svc.Register(context.Background(), RegisterInput{
		Email: "long@example.com", Password: password, FirstName: "Jane", LastName: "Doe",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, auth.CheckPassword(user.PasswordHash, password))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	userID := uuid.New()

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "TEST@example.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID: userID, Email: "test@example.com", PasswordHash: hash,
				}, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID: userID, Email: "test@example.com", PasswordHash: hash,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtSvc := auth.NewJWTService("test-secret", time.Hour, nil)
			svc := NewAuthService(mockRepo, jwtSvc, new(MockTokenStore), quota.DefaultFreeApplications)
			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				claims, err := jwtSvc.ValidateToken(context.Background(), token)
				require.NoError(t, err)
				assert.Equal(t, userID, claims.UserID)
				assert.Equal(t, "test@example.com", claims.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", time.Hour, nil)
	token, err := jwtSvc.GenerateToken(uuid.New(), "a@example.com")
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("Revoke", mock.Anything, claims.ID, mock.AnythingOfType("time.Duration")).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtSvc, store, quota.DefaultFreeApplications)
	require.NoError(t, svc.Logout(context.Background(), claims))
	store.AssertExpectations(t)

	assert.ErrorIs(t, svc.Logout(context.Background(), nil), apperrors.ErrAuth)
}
