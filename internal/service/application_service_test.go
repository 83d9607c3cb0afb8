package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/model"
)

func newTestUser(remaining int, status model.SubscriptionStatus) model.User {
	return model.User{
		ID:                        uuid.New(),
		Email:                     "user@example.com",
		FreeApplicationsRemaining: remaining,
		Subscription:              model.Subscription{Status: status},
	}
}

func jobInput(n int) ApplicationInput {
	return ApplicationInput{
		JobID:   fmt.Sprintf("job-%d", n),
		Title:   fmt.Sprintf("Engineer %d", n),
		Company: "Acme",
		Source:  model.SourceAdzuna,
	}
}

func jobInputs(n int) []ApplicationInput {
	in := make([]ApplicationInput, n)
	for i := range in {
		in[i] = jobInput(i)
	}
	return in
}

func newApplicationServiceWithStore(store *memStore) ApplicationService {
	return NewApplicationService(memApps{store}, store, nil)
}

func TestApplicationService_Create_ExhaustsQuota(t *testing.T) {
	const remaining = 3
	user := newTestUser(remaining, model.SubscriptionFree)
	store := newMemStore(user)
	svc := newApplicationServiceWithStore(store)

	for i := 0; i < remaining; i++ {
		res, err := svc.Create(context.Background(), user.ID, jobInput(i))
		require.NoError(t, err)
		assert.Equal(t, remaining-i-1, res.FreeApplicationsRemaining)
		assert.Equal(t, model.StatusApplied, res.Application.Status)
	}

	_, err := svc.Create(context.Background(), user.ID, jobInput(remaining))
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)

	got := store.user(user.ID)
	assert.Equal(t, 0, got.FreeApplicationsRemaining)
	assert.Equal(t, remaining, got.ApplicationCount)
	assert.Len(t, store.apps, remaining)
}

func TestApplicationService_Create_Subscribed(t *testing.T) {
	user := newTestUser(0, model.SubscriptionActive)
	store := newMemStore(user)
	svc := newApplicationServiceWithStore(store)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), user.ID, jobInput(i))
		require.NoError(t, err)
	}

	got := store.user(user.ID)
	assert.Equal(t, 0, got.FreeApplicationsRemaining)
	assert.Equal(t, 5, got.ApplicationCount)
}

func TestApplicationService_Create_Validation(t *testing.T) {
	user := newTestUser(5, model.SubscriptionFree)
	store := newMemStore(user)
	svc := newApplicationServiceWithStore(store)

	tests := []struct {
		name  string
		input ApplicationInput
	}{
		{"missing job id", ApplicationInput{Title: "T", Company: "C", Source: model.SourceAdzuna}},
		{"missing company", ApplicationInput{JobID: "1", Title: "T", Source: model.SourceAdzuna}},
		{"unknown source", ApplicationInput{JobID: "1", Title: "T", Company: "C", Source: "Indeed"}},
		{"unknown status", ApplicationInput{JobID: "1", Title: "T", Company: "C", Source: model.SourceUSAJobs, Status: "Ghosted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user.ID, tt.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Equal(t, 5, store.user(user.ID).FreeApplicationsRemaining)
}

func TestApplicationService_CreateBulk(t *testing.T) {
	tests := []struct {
		name          string
		remaining     int
		status        model.SubscriptionStatus
		requested     int
		wantCreated   int
		wantRemaining int
		wantPrompt    bool
		wantErr       error
	}{
		{"partial coverage", 3, model.SubscriptionFree, 5, 3, 0, true, nil},
		{"full coverage", 10, model.SubscriptionFree, 4, 4, 6, false, nil},
		{"exact coverage", 4, model.SubscriptionFree, 4, 4, 0, true, nil},
		{"no quota", 0, model.SubscriptionFree, 2, 0, 0, false, apperrors.ErrQuotaExceeded},
		{"cancelled has no quota", 0, model.SubscriptionCancelled, 2, 0, 0, false, apperrors.ErrQuotaExceeded},
		{"subscribed", 0, model.SubscriptionActive, 7, 7, 0, false, nil},
		{"subscribed keeps free counter", 12, model.SubscriptionActive, 7, 7, 12, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := newTestUser(tt.remaining, tt.status)
			store := newMemStore(user)
			svc := newApplicationServiceWithStore(store)

			in := jobInputs(tt.requested)
			res, err := svc.CreateBulk(context.Background(), user.ID, in)
			got := store.user(user.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.apps)
				assert.Equal(t, tt.remaining, got.FreeApplicationsRemaining)
				assert.Zero(t, got.ApplicationCount)
				return
			}

			require.NoError(t, err)
			require.Len(t, res.Applications, tt.wantCreated)
			for i, app := range res.Applications {
				assert.Equal(t, in[i].JobID, app.JobID)
				assert.Equal(t, user.ID, app.UserID)
			}
			assert.Equal(t, tt.wantRemaining, res.FreeApplicationsRemaining)
			assert.Equal(t, tt.wantPrompt, res.RequiresSubscription)
			assert.Equal(t, tt.wantRemaining, got.FreeApplicationsRemaining)
			assert.Equal(t, tt.wantCreated, got.ApplicationCount)
		})
	}
}

func TestApplicationService_CreateBulk_RejectsBadRequests(t *testing.T) {
	user := newTestUser(50, model.SubscriptionFree)
	store := newMemStore(user)
	svc := newApplicationServiceWithStore(store)

	_, err := svc.CreateBulk(context.Background(), user.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateBulk(context.Background(), user.ID, jobInputs(MaxBulkApplications+1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	in := jobInputs(3)
	in[2].Title = ""
	_, err = svc.CreateBulk(context.Background(), user.ID, in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, store.apps)
}

func TestApplicationService_UnknownUser(t *testing.T) {
	svc := newApplicationServiceWithStore(newMemStore())
	_, err := svc.Create(context.Background(), uuid.New(), jobInput(1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApplicationService_OwnershipAndOrder(t *testing.T) {
	owner := newTestUser(50, model.SubscriptionFree)
	other := newTestUser(50, model.SubscriptionFree)
	store := newMemStore(owner, other)
	svc := newApplicationServiceWithStore(store)

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		store.apps = append(store.apps, model.Application{
			ID:          uuid.New(),
			UserID:      owner.ID,
			JobID:       fmt.Sprintf("job-%d", i),
			Title:       "Engineer",
			Company:     "Acme",
			AppliedDate: base.Add(time.Duration(i) * time.Hour),
			Status:      model.StatusApplied,
			Source:      model.SourceAdzuna,
		})
	}
	target := store.apps[0].ID

	list, err := svc.List(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].AppliedDate.After(list[i-1].AppliedDate))
	}

	empty, err := svc.List(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	status := model.StatusInterviewScheduled
	_, err = svc.Update(context.Background(), other.ID, target, ApplicationPatch{Status: &status})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), other.ID, target), apperrors.ErrNotFound)

	_, err = svc.Update(context.Background(), owner.ID, uuid.New(), ApplicationPatch{Status: &status})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApplicationService_Update(t *testing.T) {
	owner := newTestUser(50, model.SubscriptionFree)
	store := newMemStore(owner)
	svc := newApplicationServiceWithStore(store)

	applied := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	app := model.Application{
		ID: uuid.New(), UserID: owner.ID, JobID: "job-1", Title: "Engineer", Company: "Acme",
		AppliedDate: applied, Status: model.StatusApplied, Source: model.SourceAdzuna,
	}
	store.apps = append(store.apps, app)

	status := model.StatusOffer
	notes := "great call"
	updated, err := svc.Update(context.Background(), owner.ID, app.ID, ApplicationPatch{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOffer, updated.Status)
	assert.Equal(t, "great call", updated.Notes)
	assert.Equal(t, "Engineer", updated.Title)
	assert.Equal(t, applied, updated.AppliedDate)
	assert.Equal(t, "job-1", updated.JobID)

	bad := model.ApplicationStatus("Hired")
	_, err = svc.Update(context.Background(), owner.ID, app.ID, ApplicationPatch{Status: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	blank := " "
	_, err = svc.Update(context.Background(), owner.ID, app.ID, ApplicationPatch{Title: &blank})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, svc.Delete(context.Background(), owner.ID, app.ID))
	assert.Empty(t, store.apps)
}

func TestApplicationService_Update_ConsiderationDate(t *testing.T) {
	owner := newTestUser(50, model.SubscriptionFree)
	store := newMemStore(owner)
	svc := newApplicationServiceWithStore(store)

	consider := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	app := model.Application{
		ID: uuid.New(), UserID: owner.ID, JobID: "job-1", Title: "Engineer", Company: "Acme",
		AppliedDate: consider.AddDate(0, 0, -14), ConsiderationDate: &consider,
		Status: model.StatusApplied, Source: model.SourceAdzuna,
	}
	store.apps = append(store.apps, app)

	notes := "followed up"
	updated, err := svc.Update(context.Background(), owner.ID, app.ID, ApplicationPatch{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, updated.ConsiderationDate)
	assert.True(t, consider.Equal(*updated.ConsiderationDate))

	later := consider.AddDate(0, 0, 7)
	updated, err = svc.Update(context.Background(), owner.ID, app.ID, ApplicationPatch{ConsiderationDate: &later})
	require.NoError(t, err)
	require.NotNil(t, updated.ConsiderationDate)
	assert.True(t, later.Equal(*updated.ConsiderationDate))

	updated, err = svc.Update(context.Background(), owner.ID, app.ID, ApplicationPatch{ClearConsiderationDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ConsiderationDate)
	assert.Equal(t, "followed up", updated.Notes)
}
