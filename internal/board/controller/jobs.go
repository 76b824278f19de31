package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/db"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/events"
	"github.com/openhire/hireboard/internal/board/models"
	"go.uber.org/zap"
)

// legacyJobLimit is the flat per-company posting cap that predates
// subscriptions. Both gates are enforced; see CheckJobLimit.
const legacyJobLimit = 3

// Quota gate reasons, returned to callers as tags so the UI can branch
// into the right redirect or message.
const (
	ReasonNotAuthenticated    = "not_authenticated"
	ReasonNoProfile           = "no_profile"
	ReasonNoCompany           = "no_company"
	ReasonCompanyNotFound     = "company_not_found"
	ReasonLimitReached        = "limit_reached"
	ReasonNoSubscription      = "no_subscription"
	ReasonSubscriptionExpired = "subscription_expired"
)

// JobLimit is the quota gate verdict. A disallowed result is a normal
// value, not an error.
type JobLimit struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// JobService manages job postings, subject to the authorization guard
// and the posting quota.
type JobService struct {
	repo     Repository
	guard    *Guard
	producer EventProducer
	logger   *zap.Logger
}

func NewJobService(repo Repository, guard *Guard, producer EventProducer, logger *zap.Logger) *JobService {
	return &JobService{
		repo:     repo,
		guard:    guard,
		producer: producer,
		logger:   logger.Named("job_service"),
	}
}

// CheckJobLimit evaluates the posting policy in order, short-circuiting
// on the first failing check. Store errors still surface as errors;
// policy failures come back as a tagged reason.
func (s *JobService) CheckJobLimit(ctx context.Context, userID string) (*JobLimit, error) {
	if userID == "" {
		return &JobLimit{Reason: ReasonNotAuthenticated}, nil
	}
	principal, err := s.guard.resolver.Resolve(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, e.ErrNoProfile):
			return &JobLimit{Reason: ReasonNoProfile}, nil
		case errors.Is(err, e.ErrNoMembership):
			return &JobLimit{Reason: ReasonNoCompany}, nil
		}
		return nil, err
	}

	company, err := s.repo.GetCompany(ctx, principal.CompanyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return &JobLimit{Reason: ReasonCompanyNotFound}, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company.TotalJob >= legacyJobLimit {
		return &JobLimit{Reason: ReasonLimitReached}, nil
	}

	sub, err := s.repo.GetActiveSubscription(ctx, principal.CompanyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return &JobLimit{Reason: ReasonNoSubscription}, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub.EndDate.Before(time.Now()) {
		return &JobLimit{Reason: ReasonSubscriptionExpired}, nil
	}
	if sub.JobPostsUsed >= sub.JobPostsLimit {
		return &JobLimit{Reason: ReasonLimitReached}, nil
	}
	return &JobLimit{Allowed: true}, nil
}

// CreateJob posts a new job for the principal's company. The job insert
// and the subscription counter increment commit in one transaction so a
// job never exists without being counted.
func (s *JobService) CreateJob(ctx context.Context, userID string, job *models.Job) (*models.Job, error) {
	if job.Title == "" || len(job.Title) > 200 {
		return nil, fmt.Errorf("%w: invalid title", e.ErrInvalidInput)
	}
	if job.SalaryMin > job.SalaryMax && job.SalaryMax != 0 {
		return nil, fmt.Errorf("%w: salary range inverted", e.ErrInvalidInput)
	}

	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin, models.RoleRecruiter)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.GetActiveSubscription(ctx, principal.CompanyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.ErrNoSubscription
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub.EndDate.Before(time.Now()) {
		return nil, e.ErrSubscriptionExpired
	}
	if sub.JobPostsUsed >= sub.JobPostsLimit {
		return nil, e.ErrLimitReached
	}

	job.ID = uuid.New()
	job.CompanyID = principal.CompanyID
	job.Status = models.JobActive

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.CreateJob(ctx, job); err != nil {
			return err
		}
		return tx.IncrementJobPostsUsed(ctx, sub.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	go func() {
		s.producer.Produce(events.JobCreated, &events.Payload{
			CompanyID: job.CompanyID,
			JobID:     job.ID,
		})
	}()
	return job, nil
}

// UpdateJob replaces the mutable fields of a job owned by the
// principal's company. The update is filtered on the company id, so a
// job belonging to another tenant comes back as not found.
func (s *JobService) UpdateJob(ctx context.Context, userID string, update *models.JobUpdate) (*models.Job, error) {
	if update.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid job ID", e.ErrInvalidInput)
	}
	if update.Status != nil {
		switch *update.Status {
		case models.JobActive, models.JobDraft, models.JobExpired, models.JobClosed:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, *update.Status)
		}
	}

	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin, models.RoleRecruiter)
	if err != nil {
		return nil, err
	}
	update.CompanyID = principal.CompanyID

	if err := s.repo.UpdateJob(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	updated, err := s.repo.GetJob(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get job for event",
			zap.Error(err),
			zap.String("job_id", update.ID.String()),
		)
		return nil, err
	}
	go func() {
		s.producer.Produce(events.JobUpdated, &events.Payload{
			CompanyID: updated.CompanyID,
			JobID:     updated.ID,
		})
	}()
	return updated, nil
}

// DeleteJob removes a job owned by the principal's company. Deletion is
// filtered on the company id; deleting another tenant's job is a no-op
// reported as not found.
func (s *JobService) DeleteJob(ctx context.Context, userID string, jobID uuid.UUID) error {
	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin, models.RoleRecruiter)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteJob(ctx, jobID, principal.CompanyID); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}

	go func() {
		s.producer.Produce(events.JobDeleted, &events.Payload{
			CompanyID: principal.CompanyID,
			JobID:     jobID,
		})
	}()
	return nil
}

// GetJob retrieves a job by ID. Public read.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns jobs matching the filter. Public read.
func (s *JobService) ListJobs(ctx context.Context, filter db.JobFilter) ([]models.Job, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.ListJobs(ctx, filter)
}
