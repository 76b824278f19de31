package controller

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/db"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/events"
	"github.com/openhire/hireboard/internal/board/models"
	"github.com/openhire/hireboard/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_CheckJobLimit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(t *testing.T, env *testEnv) string
		wantReason string
	}{
		{
			name:       "not authenticated",
			setup:      func(_ *testing.T, _ *testEnv) string { return "" },
			wantReason: ReasonNotAuthenticated,
		},
		{
			name: "no profile",
			setup: func(_ *testing.T, _ *testEnv) string {
				return "user-" + uuid.NewString()
			},
			wantReason: ReasonNoProfile,
		},
		{
			name: "no company",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				env.seedProfile(t, userID)
				return userID
			},
			wantReason: ReasonNoCompany,
		},
		{
			name: "legacy counter exhausted",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				company := env.seedCompany(t, profile.ID, models.RoleAdmin)
				env.seedSubscription(t, company.ID, 100, 0, 30*24*time.Hour)
				require.NoError(t, env.repo.AddTotalJob(ctx, company.ID, 3))
				return userID
			},
			wantReason: ReasonLimitReached,
		},
		{
			name: "no subscription",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				env.seedCompany(t, profile.ID, models.RoleAdmin)
				return userID
			},
			wantReason: ReasonNoSubscription,
		},
		{
			name: "subscription expired",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				company := env.seedCompany(t, profile.ID, models.RoleAdmin)
				env.seedSubscription(t, company.ID, 5, 0, -time.Hour)
				return userID
			},
			wantReason: ReasonSubscriptionExpired,
		},
		{
			name: "subscription counter exhausted",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				company := env.seedCompany(t, profile.ID, models.RoleAdmin)
				env.seedSubscription(t, company.ID, 5, 5, 30*24*time.Hour)
				return userID
			},
			wantReason: ReasonLimitReached,
		},
		{
			name: "allowed",
			setup: func(t *testing.T, env *testEnv) string {
				userID, _ := env.seedRecruiter(t, models.RoleAdmin)
				return userID
			},
			wantReason: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			userID := tt.setup(t, env)

			limit, err := env.jobs.CheckJobLimit(ctx, userID)
			require.NoError(t, err, "policy verdicts should not be errors")
			assert.Equal(t, tt.wantReason == "", limit.Allowed, "allowed flag should match")
			assert.Equal(t, tt.wantReason, limit.Reason, "reason tag should match")
		})
	}
}

func TestJobService_CreateJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, company := env.seedRecruiter(t, models.RoleRecruiter)

	env.producer.wg.Add(1)
	job, err := env.jobs.CreateJob(ctx, userID, &models.Job{
		Title:        "Platform Engineer",
		Description:  "Build the platform",
		Location:     "Berlin",
		JobType:      "full-time",
		Requirements: []string{"Go"},
		Status:       models.JobDraft, // ignored, new jobs post active
	})
	require.NoError(t, err, "CreateJob should succeed")
	env.producer.wg.Wait()

	assert.NotEqual(t, uuid.Nil, job.ID, "job ID should be assigned")
	assert.Equal(t, company.ID, job.CompanyID, "job should belong to the principal's company")
	assert.Equal(t, models.JobActive, job.Status, "new jobs should be active")

	// The subscription counter moved in the same transaction.
	sub, err := env.repo.GetActiveSubscription(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.JobPostsUsed, "usage counter should be incremented")

	produced := env.producer.Events()
	require.Len(t, produced, 1, "creation event should be produced")
	assert.Equal(t, events.JobCreated, produced[0].Type, "event type should match")
	assert.Equal(t, job.ID, produced[0].Payload.JobID, "event should carry the job id")
}

func TestJobService_CreateJobRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, env *testEnv) string
		job     *models.Job
		wantErr error
	}{
		{
			name:    "empty title",
			setup:   func(t *testing.T, env *testEnv) string { userID, _ := env.seedRecruiter(t, models.RoleAdmin); return userID },
			job:     &models.Job{},
			wantErr: e.ErrInvalidInput,
		},
		{
			name:    "inverted salary range",
			setup:   func(t *testing.T, env *testEnv) string { userID, _ := env.seedRecruiter(t, models.RoleAdmin); return userID },
			job:     &models.Job{Title: "Job", SalaryMin: 100, SalaryMax: 50},
			wantErr: e.ErrInvalidInput,
		},
		{
			name: "no profile",
			setup: func(_ *testing.T, _ *testEnv) string {
				return "user-" + uuid.NewString()
			},
			job:     &models.Job{Title: "Job"},
			wantErr: e.ErrNoProfile,
		},
		{
			name: "no membership",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				env.seedProfile(t, userID)
				return userID
			},
			job:     &models.Job{Title: "Job"},
			wantErr: e.ErrNoMembership,
		},
		{
			name: "no subscription",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				env.seedCompany(t, profile.ID, models.RoleAdmin)
				return userID
			},
			job:     &models.Job{Title: "Job"},
			wantErr: e.ErrNoSubscription,
		},
		{
			name: "subscription expired",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				company := env.seedCompany(t, profile.ID, models.RoleAdmin)
				env.seedSubscription(t, company.ID, 5, 0, -time.Hour)
				return userID
			},
			job:     &models.Job{Title: "Job"},
			wantErr: e.ErrSubscriptionExpired,
		},
		{
			name: "quota exhausted",
			setup: func(t *testing.T, env *testEnv) string {
				userID := "user-" + uuid.NewString()
				profile := env.seedProfile(t, userID)
				company := env.seedCompany(t, profile.ID, models.RoleAdmin)
				env.seedSubscription(t, company.ID, 2, 2, 30*24*time.Hour)
				return userID
			},
			job:     &models.Job{Title: "Job"},
			wantErr: e.ErrLimitReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			userID := tt.setup(t, env)

			_, err := env.jobs.CreateJob(ctx, userID, tt.job)
			assert.ErrorIs(t, err, tt.wantErr, "CreateJob should fail with the expected error")
			assert.Empty(t, env.producer.Events(), "no event should be produced on rejection")
		})
	}
}

// TestJobService_CreateJobExhaustsQuota posts until the subscription
// counter runs out and verifies the next attempt is rejected.
func TestJobService_CreateJobExhaustsQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := "user-" + uuid.NewString()
	profile := env.seedProfile(t, userID)
	company := env.seedCompany(t, profile.ID, models.RoleAdmin)
	env.seedSubscription(t, company.ID, 2, 0, 30*24*time.Hour)

	for i := 0; i < 2; i++ {
		env.producer.wg.Add(1)
		_, err := env.jobs.CreateJob(ctx, userID, &models.Job{Title: "Job"})
		require.NoError(t, err, "post %d should be within quota", i+1)
		env.producer.wg.Wait()
	}

	_, err := env.jobs.CreateJob(ctx, userID, &models.Job{Title: "One Too Many"})
	assert.ErrorIs(t, err, e.ErrLimitReached, "third post should exceed the quota")

	count, err := env.repo.CountJobs(ctx, company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "only the quota-covered jobs should exist")
}

func TestJobService_UpdateJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, company := env.seedRecruiter(t, models.RoleRecruiter)

	job := &models.Job{ID: uuid.New(), CompanyID: company.ID, Title: "Old", Status: models.JobActive}
	require.NoError(t, env.repo.CreateJob(ctx, job))

	env.producer.wg.Add(1)
	updated, err := env.jobs.UpdateJob(ctx, userID, &models.JobUpdate{
		ID:     job.ID,
		Title:  utils.Ptr("New"),
		Status: utils.Ptr(models.JobClosed),
	})
	require.NoError(t, err, "UpdateJob should succeed")
	env.producer.wg.Wait()

	assert.Equal(t, "New", updated.Title, "title should be updated")
	assert.Equal(t, models.JobClosed, updated.Status, "status should be updated")

	produced := env.producer.Events()
	require.Len(t, produced, 1, "update event should be produced")
	assert.Equal(t, events.JobUpdated, produced[0].Type, "event type should match")
}

func TestJobService_UpdateJobInvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.seedRecruiter(t, models.RoleAdmin)

	_, err := env.jobs.UpdateJob(context.Background(), userID, &models.JobUpdate{
		ID:     uuid.New(),
		Status: utils.Ptr(models.JobStatus("archived")),
	})
	assert.ErrorIs(t, err, e.ErrInvalidInput, "unknown status should be rejected")
}

// TestJobService_UpdateJobCrossTenant verifies another company's job
// cannot be modified: the filtered update touches zero rows.
func TestJobService_UpdateJobCrossTenant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ownerID, _ := env.seedRecruiter(t, models.RoleAdmin)
	intruderID, _ := env.seedRecruiter(t, models.RoleAdmin)

	env.producer.wg.Add(1)
	job, err := env.jobs.CreateJob(ctx, ownerID, &models.Job{Title: "Mine"})
	require.NoError(t, err)
	env.producer.wg.Wait()

	_, err = env.jobs.UpdateJob(ctx, intruderID, &models.JobUpdate{
		ID:    job.ID,
		Title: utils.Ptr("Hijacked"),
	})
	assert.ErrorIs(t, err, e.ErrNotFound, "cross-tenant update should report not found")

	got, err := env.repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title, "job should be untouched")
}

func TestJobService_DeleteJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, company := env.seedRecruiter(t, models.RoleAdmin)

	job := &models.Job{ID: uuid.New(), CompanyID: company.ID, Title: "Doomed", Status: models.JobActive}
	require.NoError(t, env.repo.CreateJob(ctx, job))

	env.producer.wg.Add(1)
	err := env.jobs.DeleteJob(ctx, userID, job.ID)
	require.NoError(t, err, "DeleteJob should succeed")
	env.producer.wg.Wait()

	_, err = env.repo.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "deleted job should not be found")

	produced := env.producer.Events()
	require.Len(t, produced, 1, "deletion event should be produced")
	assert.Equal(t, events.JobDeleted, produced[0].Type, "event type should match")
}

func TestJobService_DeleteJobCrossTenant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, ownerCompany := env.seedRecruiter(t, models.RoleAdmin)
	intruderID, _ := env.seedRecruiter(t, models.RoleAdmin)

	job := &models.Job{ID: uuid.New(), CompanyID: ownerCompany.ID, Title: "Mine", Status: models.JobActive}
	require.NoError(t, env.repo.CreateJob(ctx, job))

	err := env.jobs.DeleteJob(ctx, intruderID, job.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "cross-tenant delete should report not found")

	_, err = env.repo.GetJob(ctx, job.ID)
	assert.NoError(t, err, "job should still exist")
}

func TestJobService_ListJobsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, company := env.seedRecruiter(t, models.RoleAdmin)

	for i := 0; i < 3; i++ {
		require.NoError(t, env.repo.CreateJob(ctx, &models.Job{
			ID:        uuid.New(),
			CompanyID: company.ID,
			Title:     "Job",
			Status:    models.JobActive,
		}))
	}

	jobs, err := env.jobs.ListJobs(ctx, db.JobFilter{})
	assert.NoError(t, err, "ListJobs should succeed")
	assert.Len(t, jobs, 3, "all jobs should be listed under the default limit")

	jobs, err = env.jobs.ListJobs(ctx, db.JobFilter{Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, jobs, 2, "explicit limit should apply")
}
