package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/model"
	"jiffyapply/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, id uuid.UUID, sub model.Subscription) error {
	args := m.Called(ctx, id, sub)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateResume(ctx context.Context, id uuid.UUID, resume *model.Resume) error {
	args := m.Called(ctx, id, resume)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeQuota(ctx context.Context, id uuid.UUID, created, debit int) error {
	args := m.Called(ctx, id, created, debit)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// memStore is an in-memory store for users and applications. Its transactor
// serialises units of work and restores a snapshot when one fails.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	apps  []model.Application
}

func newMemStore(users ...model.User) *memStore {
	s := &memStore{users: make(map[uuid.UUID]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) user(id uuid.UUID) model.User {
	return s.users[id]
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[uuid.UUID]model.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	apps := append([]model.Application(nil), s.apps...)

	if err := fn(ctx, repository.Repositories{Users: memUsers{s}, Applications: memApps{s}}); err != nil {
		s.users, s.apps = users, apps
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) UpdateSubscription(_ context.Context, id uuid.UUID, sub model.Subscription) error {
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Subscription = sub
	r.s.users[id] = u
	return nil
}

func (r memUsers) UpdateResume(_ context.Context, id uuid.UUID, resume *model.Resume) error {
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Resume = resume
	r.s.users[id] = u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUsers) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.FindByID(ctx, id)
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["acknowledged_fees"].(bool); ok {
		u.AcknowledgedFees = v
	}
	r.s.users[id] = u
	return nil
}

func (r memUsers) ConsumeQuota(_ context.Context, id uuid.UUID, created, debit int) error {
	u, ok := r.s.users[id]
	if !ok || u.FreeApplicationsRemaining < debit {
		return apperrors.ErrNoApplicationsRemaining
	}
	u.ApplicationCount += created
	u.FreeApplicationsRemaining -= debit
	r.s.users[id] = u
	return nil
}

type memApps struct{ s *memStore }

func (r memApps) Create(_ context.Context, app *model.Application) error {
	r.s.apps = append(r.s.apps, *app)
	return nil
}

func (r memApps) CreateBatch(_ context.Context, apps []model.Application) error {
	r.s.apps = append(r.s.apps, apps...)
	return nil
}

func (r memApps) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Application, error) {
	out := make([]model.Application, 0)
	for _, a := range r.s.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedDate.After(out[j].AppliedDate) })
	return out, nil
}

func (r memApps) FindOwned(_ context.Context, id, userID uuid.UUID) (*model.Application, error) {
	for _, a := range r.s.apps {
		if a.ID == id && a.UserID == userID {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memApps) Update(_ context.Context, app *model.Application) error {
	for i, a := range r.s.apps {
		if a.ID == app.ID {
			r.s.apps[i] = *app
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memApps) DeleteOwned(_ context.Context, id, userID uuid.UUID) error {
	for i, a := range r.s.apps {
		if a.ID == id && a.UserID == userID {
			r.s.apps = append(r.s.apps[:i], r.s.apps[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
