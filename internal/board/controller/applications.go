package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/events"
	"github.com/openhire/hireboard/internal/board/models"
	"github.com/openhire/hireboard/internal/board/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const maxCoverLetterLen = 4000

// ApplicationService manages job applications and their review states.
type ApplicationService struct {
	repo     Repository
	guard    *Guard
	store    storage.ObjectStore
	producer EventProducer
	logger   *zap.Logger
}

func NewApplicationService(repo Repository, guard *Guard, store storage.ObjectStore, producer EventProducer, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		guard:    guard,
		store:    store,
		producer: producer,
		logger:   logger.Named("application_service"),
	}
}

// ApplyInput carries one application submission.
type ApplyInput struct {
	JobID             uuid.UUID
	CoverLetter       string
	ResumeFilename    string
	ResumeContentType string
	Resume            io.Reader
}

// ApplyResult is the outcome of Apply. A duplicate submission is a
// successful result with AlreadyApplied set, not an error.
type ApplyResult struct {
	AlreadyApplied bool
	Application    *models.Application
}

// Apply submits an application for a job. The existing-application
// pre-check is a fast path; the unique index on (job_id, job_seeker_id)
// is the authoritative duplicate guard and a lost race converges to the
// same AlreadyApplied result. The company notification is best-effort:
// its failure is logged, never surfaced.
func (s *ApplicationService) Apply(ctx context.Context, userID string, in *ApplyInput) (*ApplyResult, error) {
	if in.JobID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid job ID", e.ErrInvalidInput)
	}
	if len(in.CoverLetter) > maxCoverLetterLen {
		return nil, fmt.Errorf("%w: cover letter too long", e.ErrInvalidInput)
	}
	if in.ResumeFilename == "" || in.Resume == nil {
		return nil, fmt.Errorf("%w: resume required", e.ErrInvalidInput)
	}

	profile, err := s.guard.RequireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	job, err := s.repo.GetJob(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job.Status != models.JobActive {
		return nil, fmt.Errorf("%w: job is not open for applications", e.ErrInvalidInput)
	}
	if job.ApplicationDeadline != nil && job.ApplicationDeadline.Before(time.Now()) {
		return nil, fmt.Errorf("%w: application deadline passed", e.ErrInvalidInput)
	}

	applied, err := s.repo.HasApplied(ctx, in.JobID, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if applied {
		return &ApplyResult{AlreadyApplied: true}, nil
	}

	path := fmt.Sprintf("%s/%s", profile.ID, in.ResumeFilename)
	resumeURL, err := s.store.Upload(ctx, path, in.ResumeContentType, in.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to upload resume: %w", err)
	}

	app := &models.Application{
		ID:          uuid.New(),
		JobID:       in.JobID,
		JobSeekerID: profile.ID,
		CoverLetter: in.CoverLetter,
		ResumeURL:   resumeURL,
		Status:      models.ApplicationPending,
		AppliedAt:   time.Now(),
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, e.ErrAlreadyApplied) {
			return &ApplyResult{AlreadyApplied: true}, nil
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.notifyCompany(ctx, job, app, profile)

	go func() {
		s.producer.Produce(events.ApplicationReceived, &events.Payload{
			CompanyID:     job.CompanyID,
			JobID:         job.ID,
			ApplicationID: app.ID,
		})
	}()
	return &ApplyResult{Application: app}, nil
}

func (s *ApplicationService) notifyCompany(ctx context.Context, job *models.Job, app *models.Application, applicant *models.Profile) {
	data, _ := jsonMarshal(map[string]string{
		"job_title":      job.Title,
		"applicant_name": applicant.FullName,
	})
	n := &models.Notification{
		ID:                   uuid.New(),
		CompanyID:            job.CompanyID,
		Type:                 "new_application",
		Title:                "New application received",
		Message:              fmt.Sprintf("%s applied for %q", applicant.FullName, job.Title),
		Data:                 datatypes.JSON(data),
		RelatedJobID:         &job.ID,
		RelatedApplicationID: &app.ID,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("company_id", job.CompanyID.String()),
			zap.String("application_id", app.ID.String()),
		)
	}
}

// UpdateStatus transitions an application's review state. The acting
// principal must hold an active membership in the company that owns the
// job the application targets.
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID string, appID uuid.UUID, status models.ApplicationStatus) error {
	if !models.ValidApplicationStatus(status) {
		return fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, status)
	}

	app, err := s.repo.GetApplication(ctx, appID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get application: %w", err)
	}
	job, err := s.repo.GetJob(ctx, app.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job for application: %w", err)
	}

	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin, models.RoleRecruiter)
	if err != nil {
		return err
	}
	if principal.CompanyID != job.CompanyID {
		return fmt.Errorf("%w: application belongs to another company", e.ErrForbidden)
	}

	return s.repo.UpdateApplicationStatus(ctx, appID, status)
}

// ListForJob returns the applications for a job owned by the
// principal's company.
func (s *ApplicationService) ListForJob(ctx context.Context, userID string, jobID uuid.UUID) ([]models.Application, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	principal, err := s.guard.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.CompanyID != job.CompanyID {
		return nil, fmt.Errorf("%w: job belongs to another company", e.ErrForbidden)
	}
	return s.repo.ListApplicationsByJob(ctx, jobID)
}

// ListMine returns the principal's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, userID string) ([]models.Application, error) {
	profile, err := s.guard.RequireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListApplicationsBySeeker(ctx, profile.ID)
}

// Get returns a single application to its owner or to a member of the
// company owning the job.
func (s *ApplicationService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Application, error) {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	profile, err := s.guard.RequireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if app.JobSeekerID == profile.ID {
		return app, nil
	}

	job, err := s.repo.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job for application: %w", err)
	}
	principal, err := s.guard.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.CompanyID != job.CompanyID {
		return nil, fmt.Errorf("%w: application belongs to another company", e.ErrForbidden)
	}
	return app, nil
}
