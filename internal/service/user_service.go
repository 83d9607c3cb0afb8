package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jiffyapply/internal/cache"
	"jiffyapply/internal/errors"
	"jiffyapply/internal/model"
	"jiffyapply/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes profile operations for the authenticated user.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	AcknowledgeFees(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// invalidateUser drops the cached profile after any mutation of the user row.
func invalidateUser(ctx context.Context, c *cache.Client, id uuid.UUID) {
	_ = c.Delete(ctx, userCacheKey(id))
}

// GetProfile returns the user with its embedded subscription and resume.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	s.cache.SetJSON(ctx, userCacheKey(userID), user, userCacheTTL)
	return user, nil
}

// AcknowledgeFees sets the one-way fee acknowledgement flag. Repeating it is a no-op.
func (s *userService) AcknowledgeFees(ctx context.Context, userID uuid.UUID) error {
	err := s.repo.UpdateFields(ctx, userID, map[string]interface{}{"acknowledged_fees": true})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("acknowledge fees: %w", err)
	}
	invalidateUser(ctx, s.cache, userID)
	return nil
}
