package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"jiffyapply/internal/auth"
	"jiffyapply/internal/errors"
	"jiffyapply/internal/model"
	"jiffyapply/internal/quota"
	"jiffyapply/internal/repository"
)

const minPasswordLength = 6

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (token string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo         repository.UserRepository
	jwtService       *auth.JWTService
	tokenStore       auth.TokenStoreInterface
	freeApplications int
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, freeApplications int) AuthService {
	return &authService{
		userRepo:         userRepo,
		jwtService:       jwtService,
		tokenStore:       tokenStore,
		freeApplications: freeApplications,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with hashed password and returns a bearer token.
func (s *authService) Register(ctx context.Context, in RegisterInput) (string, *model.User, error) {
	email := NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	if email == "" || in.Password == "" || firstName == "" || lastName == "" {
		return "", nil, errors.New(errors.ErrValidation, "email, password, first name, and last name are required")
	}
	if len(in.Password) < minPasswordLength {
		return "", nil, errors.New(errors.ErrValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", nil, errors.ErrEmailTaken
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", nil, err
	}

	user := &model.User{
		Email:                     email,
		PasswordHash:              hashedPassword,
		FirstName:                 firstName,
		LastName:                  lastName,
		Phone:                     strings.TrimSpace(in.Phone),
		FreeApplicationsRemaining: s.freeApplications,
		Subscription:              model.Subscription{Status: model.SubscriptionFree},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, errors.ErrEmailTaken
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Login authenticates a user and returns a bearer token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, errors.New(errors.ErrValidation, "email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Logout revokes the presented token until it would have expired.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return errors.New(errors.ErrAuth, "invalid token")
	}
	return s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.RemainingTTL(claims))
}

// quotaAccount projects the user state the ledger needs.
func quotaAccount(u *model.User) quota.Account {
	return quota.Account{
		Remaining:  u.FreeApplicationsRemaining,
		Subscribed: u.HasActiveSubscription(),
	}
}
