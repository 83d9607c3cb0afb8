package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups repositories bound to the same database handle.
type Repositories struct {
	Users        UserRepository
	Applications ApplicationRepository
}

// Transactor runs a unit of work spanning users and applications.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a new transactor.
func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

// WithTransaction executes fn within a database transaction. Returning an error rolls back.
func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Repositories{
			Users:        &userRepository{db: tx},
			Applications: &applicationRepository{db: tx},
		})
	})
}
