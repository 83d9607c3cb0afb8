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
	"jiffyapply/internal/quota"
	"jiffyapply/internal/repository"
)

// MaxBulkApplications caps the size of one bulk request.
const MaxBulkApplications = 100

const (
	modeSingle = "single"
	modeBulk   = "bulk"
)

// ApplicationInput is one application to log.
type ApplicationInput struct {
	JobID             string
	Title             string
	Company           string
	Location          string
	Salary            string
	ConsiderationDate *time.Time
	HiringManager     string
	ContactEmail      string
	ContactPhone      string
	Status            model.ApplicationStatus
	Source            model.JobSource
	Notes             string
}

// ApplicationPatch holds the mutable fields of an application. Nil means unchanged.
type ApplicationPatch struct {
	Title             *string
	Company           *string
	Location          *string
	Salary            *string
	Status            *model.ApplicationStatus
	ConsiderationDate *time.Time
	HiringManager     *string
	ContactEmail      *string
	ContactPhone      *string
	Notes             *string

	// ClearConsiderationDate removes the date. It wins over ConsiderationDate.
	ClearConsiderationDate bool
}

// CreateResult reports a single creation.
type CreateResult struct {
	Application               *model.Application
	FreeApplicationsRemaining int
}

// BulkResult reports a bulk creation. Applications holds the created prefix of the request.
type BulkResult struct {
	Applications              []model.Application
	FreeApplicationsRemaining int
	RequiresSubscription      bool
}

// ApplicationService manages a user's application records under the quota rule.
type ApplicationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Application, error)
	Create(ctx context.Context, userID uuid.UUID, in ApplicationInput) (*CreateResult, error)
	CreateBulk(ctx context.Context, userID uuid.UUID, in []ApplicationInput) (*BulkResult, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch ApplicationPatch) (*model.Application, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type applicationService struct {
	apps  repository.ApplicationRepository
	tx    repository.Transactor
	cache *cache.Client
}

// NewApplicationService creates a new application service.
func NewApplicationService(apps repository.ApplicationRepository, tx repository.Transactor, cache *cache.Client) ApplicationService {
	return &applicationService{apps: apps, tx: tx, cache: cache}
}

func (s *applicationService) List(ctx context.Context, userID uuid.UUID) ([]model.Application, error) {
	apps, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *applicationService) Create(ctx context.Context, userID uuid.UUID, in ApplicationInput) (*CreateResult, error) {
	if err := validateApplicationInput(in); err != nil {
		return nil, err
	}

	var result *CreateResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		grant, err := s.planLocked(ctx, repos, userID, 1)
		if err != nil {
			return err
		}

		app := newApplication(userID, in)
		if err := repos.Applications.Create(ctx, &app); err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		if err := repos.Users.ConsumeQuota(ctx, userID, grant.Create, grant.Debit); err != nil {
			return err
		}

		result = &CreateResult{Application: &app, FreeApplicationsRemaining: grant.Remaining}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrQuotaExceeded) {
			metrics.QuotaRejections.WithLabelValues(modeSingle).Inc()
		}
		return nil, err
	}

	invalidateUser(ctx, s.cache, userID)
	metrics.ApplicationsCreated.WithLabelValues(modeSingle).Inc()
	return result, nil
}

// CreateBulk creates as many of the requested applications as the quota allows,
// always taking them from the front of the request.
func (s *applicationService) CreateBulk(ctx context.Context, userID uuid.UUID, in []ApplicationInput) (*BulkResult, error) {
	if len(in) == 0 {
		return nil, errors.New(errors.ErrValidation, "applications array is required")
	}
	if len(in) > MaxBulkApplications {
		return nil, errors.New(errors.ErrValidation, fmt.Sprintf("at most %d applications per request", MaxBulkApplications))
	}
	for i, item := range in {
		if err := validateApplicationInput(item); err != nil {
			return nil, errors.New(errors.ErrValidation, fmt.Sprintf("applications[%d]: %s", i, err))
		}
	}

	var result *BulkResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		grant, err := s.planLocked(ctx, repos, userID, len(in))
		if err != nil {
			return err
		}

		apps := make([]model.Application, 0, grant.Create)
		for _, item := range in[:grant.Create] {
			apps = append(apps, newApplication(userID, item))
		}
		if err := repos.Applications.CreateBatch(ctx, apps); err != nil {
			return fmt.Errorf("create applications: %w", err)
		}
		if err := repos.Users.ConsumeQuota(ctx, userID, grant.Create, grant.Debit); err != nil {
			return err
		}

		result = &BulkResult{
			Applications:              apps,
			FreeApplicationsRemaining: grant.Remaining,
			RequiresSubscription:      grant.RequiresSubscription,
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrQuotaExceeded) {
			metrics.QuotaRejections.WithLabelValues(modeBulk).Inc()
		}
		return nil, err
	}

	invalidateUser(ctx, s.cache, userID)
	metrics.ApplicationsCreated.WithLabelValues(modeBulk).Add(float64(len(result.Applications)))
	if len(result.Applications) < len(in) {
		metrics.BulkTruncations.Inc()
	}
	return result, nil
}

// planLocked loads the user under a row lock and asks the ledger for a grant.
func (s *applicationService) planLocked(ctx context.Context, repos repository.Repositories, userID uuid.UUID, requested int) (quota.Grant, error) {
	user, err := repos.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return quota.Grant{}, errors.ErrUserNotFound
		}
		return quota.Grant{}, fmt.Errorf("lock user: %w", err)
	}
	return quota.Plan(quotaAccount(user), requested)
}

func (s *applicationService) Update(ctx context.Context, userID, id uuid.UUID, patch ApplicationPatch) (*model.Application, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, errors.New(errors.ErrValidation, fmt.Sprintf("invalid status %q", *patch.Status))
	}

	app, err := s.apps.FindOwned(ctx, id, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}

	patch.apply(app)
	if strings.TrimSpace(app.Title) == "" || strings.TrimSpace(app.Company) == "" {
		return nil, errors.New(errors.ErrValidation, "title and company cannot be empty")
	}

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return app, nil
}

func (s *applicationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.apps.DeleteOwned(ctx, id, userID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrApplicationNotFound
		}
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}

func (p ApplicationPatch) apply(app *model.Application) {
	if p.Title != nil {
		app.Title = strings.TrimSpace(*p.Title)
	}
	if p.Company != nil {
		app.Company = strings.TrimSpace(*p.Company)
	}
	if p.Location != nil {
		app.Location = *p.Location
	}
	if p.Salary != nil {
		app.Salary = *p.Salary
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	switch {
	case p.ClearConsiderationDate:
		app.ConsiderationDate = nil
	case p.ConsiderationDate != nil:
		d := *p.ConsiderationDate
		app.ConsiderationDate = &d
	}
	if p.HiringManager != nil {
		app.HiringManager = *p.HiringManager
	}
	if p.ContactEmail != nil {
		app.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		app.ContactPhone = *p.ContactPhone
	}
	if p.Notes != nil {
		app.Notes = *p.Notes
	}
}

func validateApplicationInput(in ApplicationInput) error {
	if strings.TrimSpace(in.JobID) == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Company) == "" {
		return errors.New(errors.ErrValidation, "jobId, title, and company are required")
	}
	if !in.Source.Valid() {
		return errors.New(errors.ErrValidation, fmt.Sprintf("source must be %s or %s", model.SourceAdzuna, model.SourceUSAJobs))
	}
	if in.Status != "" && !in.Status.Valid() {
		return errors.New(errors.ErrValidation, fmt.Sprintf("invalid status %q", in.Status))
	}
	return nil
}

func newApplication(userID uuid.UUID, in ApplicationInput) model.Application {
	status := in.Status
	if status == "" {
		status = model.StatusApplied
	}
	return model.Application{
		ID:                uuid.New(),
		UserID:            userID,
		JobID:             strings.TrimSpace(in.JobID),
		Title:             strings.TrimSpace(in.Title),
		Company:           strings.TrimSpace(in.Company),
		Location:          in.Location,
		Salary:            in.Salary,
		AppliedDate:       time.Now(),
		ConsiderationDate: in.ConsiderationDate,
		HiringManager:     in.HiringManager,
		ContactEmail:      in.ContactEmail,
		ContactPhone:      in.ContactPhone,
		Status:            status,
		Source:            in.Source,
		Notes:             in.Notes,
	}
}
