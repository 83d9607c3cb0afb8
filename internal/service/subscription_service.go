package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jiffyapply/internal/cache"
	"jiffyapply/internal/errors"
	"jiffyapply/internal/metrics"
	"jiffyapply/internal/model"
	"jiffyapply/internal/repository"
)

// DefaultSubscriptionPeriod is how long an activation lasts.
const DefaultSubscriptionPeriod = 30 * 24 * time.Hour

// CardDetails is the payment form. Only the last four digits, the network label
// and the expiry string ever leave this struct.
type CardDetails struct {
	CardNumber string
	CardName   string
	ExpiryDate string
	CVV        string
}

// SubscriptionService handles subscription activation and cancellation.
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, card CardDetails) (*model.Subscription, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
}

type subscriptionService struct {
	repo      repository.UserRepository
	cache     *cache.Client
	validator *CardValidator
	period    time.Duration
	now       func() time.Time
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(repo repository.UserRepository, cache *cache.Client, period time.Duration) SubscriptionService {
	if period <= 0 {
		period = DefaultSubscriptionPeriod
	}
	return &subscriptionService{
		repo:      repo,
		cache:     cache,
		validator: NewCardValidator(),
		period:    period,
		now:       time.Now,
	}
}

// Subscribe activates a subscription. No payment is authorized.
func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, card CardDetails) (*model.Subscription, error) {
	if strings.TrimSpace(card.CardNumber) == "" || strings.TrimSpace(card.CardName) == "" ||
		strings.TrimSpace(card.ExpiryDate) == "" || strings.TrimSpace(card.CVV) == "" {
		return nil, errors.New(errors.ErrValidation, "card number, card name, expiry date, and cvv are required")
	}
	if err := s.validator.ValidateCard(card.CardNumber, card.ExpiryDate, card.CVV); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := s.now()
	end := start.Add(s.period)
	user.Subscription = model.Subscription{
		Status:    model.SubscriptionActive,
		StartDate: &start,
		EndDate:   &end,
		PaymentMethod: model.PaymentMethod{
			CardLast4:  LastFour(card.CardNumber),
			CardType:   CardNetwork(card.CardNumber),
			ExpiryDate: card.ExpiryDate,
		},
	}

	if err := s.repo.UpdateSubscription(ctx, userID, user.Subscription); err != nil {
		return nil, fmt.Errorf("activate subscription: %w", err)
	}
	invalidateUser(ctx, s.cache, userID)
	metrics.Subscriptions.WithLabelValues(string(model.SubscriptionActive)).Inc()

	return &user.Subscription, nil
}

// Cancel moves an active subscription to cancelled, keeping its dates and payment descriptor.
func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasActiveSubscription() {
		return nil, errors.New(errors.ErrValidation, "no active subscription to cancel")
	}

	user.Subscription.Status = model.SubscriptionCancelled
	if err := s.repo.UpdateSubscription(ctx, userID, user.Subscription); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	invalidateUser(ctx, s.cache, userID)
	metrics.Subscriptions.WithLabelValues(string(model.SubscriptionCancelled)).Inc()

	return &user.Subscription, nil
}

func (s *subscriptionService) findUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
