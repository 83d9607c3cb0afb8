package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	UpdateSubscription(ctx context.Context, id uuid.UUID, sub model.Subscription) error
	UpdateResume(ctx context.Context, id uuid.UUID, resume *model.Resume) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ConsumeQuota(ctx context.Context, id uuid.UUID, created, debit int) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Column sets written by the partial updates. The quota counters are only
// ever changed by ConsumeQuota.
var (
	subscriptionFields = []string{
		"subscription_status", "subscription_start_date", "subscription_end_date",
		"subscription_payment_card_last4", "subscription_payment_card_type", "subscription_payment_expiry_date",
		"updated_at",
	}
	resumeFields = []string{"resume", "updated_at"}
)

// UpdateSubscription overwrites the embedded subscription and nothing else.
func (r *userRepository) UpdateSubscription(ctx context.Context, id uuid.UUID, sub model.Subscription) error {
	return r.updateSelected(ctx, id, &model.User{Subscription: sub}, subscriptionFields)
}

// UpdateResume replaces the stored resume and nothing else.
func (r *userRepository) UpdateResume(ctx context.Context, id uuid.UUID, resume *model.Resume) error {
	return r.updateSelected(ctx, id, &model.User{Resume: resume}, resumeFields)
}

func (r *userRepository) updateSelected(ctx context.Context, id uuid.UUID, values *model.User, fields []string) error {
	values.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Select(fields).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate finds a user by ID with a row-level lock. Only meaningful inside a transaction.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConsumeQuota records created applications and debits the free counter in a
// single conditional update. A debit the counter cannot cover matches no row
// and fails with ErrNoApplicationsRemaining.
func (r *userRepository) ConsumeQuota(ctx context.Context, id uuid.UUID, created, debit int) error {
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id)
	fields := map[string]interface{}{
		"application_count": gorm.Expr("application_count + ?", created),
	}
	if debit > 0 {
		q = q.Where("free_applications_remaining >= ?", debit)
		fields["free_applications_remaining"] = gorm.Expr("free_applications_remaining - ?", debit)
	}

	res := q.Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNoApplicationsRemaining
	}
	return nil
}
