package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jiffyapply/internal/model"
)

const applicationBatchSize = 100

// ApplicationRepository defines application persistence operations. Every
// lookup and mutation is scoped to the owning user.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	CreateBatch(ctx context.Context, apps []model.Application) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Application, error)
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*model.Application, error)
	Update(ctx context.Context, app *model.Application) error
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new application.
func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("User").Create(app).Error
}

// CreateBatch inserts applications preserving slice order.
func (r *applicationRepository) CreateBatch(ctx context.Context, apps []model.Application) error {
	if len(apps) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("User").CreateInBatches(apps, applicationBatchSize).Error
}

// ListByUser lists a user's applications, newest first.
func (r *applicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Application, error) {
	apps := make([]model.Application, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("applied_date DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// FindOwned finds an application by ID that belongs to userID.
func (r *applicationRepository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*model.Application, error) {
	var app model.Application
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// Update saves an existing application.
func (r *applicationRepository) Update(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("User").Save(app).Error
}

// DeleteOwned deletes an application that belongs to userID.
func (r *applicationRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
