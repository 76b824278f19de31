package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/db"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/models"
	"github.com/openhire/hireboard/internal/board/storage"
	"go.uber.org/zap"
)

// plan describes a subscription tier. Purchase is a stub: no payment is
// taken, the row is inserted active.
type plan struct {
	jobPostsLimit int
	duration      time.Duration
}

var plans = map[string]plan{
	"basic":      {jobPostsLimit: 5, duration: 30 * 24 * time.Hour},
	"pro":        {jobPostsLimit: 25, duration: 30 * 24 * time.Hour},
	"enterprise": {jobPostsLimit: 100, duration: 365 * 24 * time.Hour},
}

// Dashboard aggregates the company overview page counts.
type Dashboard struct {
	TotalJobs           int64                                `json:"total_jobs"`
	Applications        map[models.ApplicationStatus]int64   `json:"applications"`
	UnreadNotifications int64                                `json:"unread_notifications"`
}

// CompanyService manages companies, memberships and subscriptions.
type CompanyService struct {
	repo   Repository
	guard  *Guard
	store  storage.ObjectStore
	logger *zap.Logger
}

func NewCompanyService(repo Repository, guard *Guard, store storage.ObjectStore, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:   repo,
		guard:  guard,
		store:  store,
		logger: logger.Named("company_service"),
	}
}

// Register creates a company and makes the creating profile its admin,
// in one transaction.
func (s *CompanyService) Register(ctx context.Context, userID string, company *models.Company) (*models.Company, error) {
	if company.Name == "" || len(company.Name) > 150 {
		return nil, fmt.Errorf("%w: invalid name", e.ErrInvalidInput)
	}
	if company.Description != "" && len(company.Description) > 3000 {
		return nil, fmt.Errorf("%w: description too long", e.ErrInvalidInput)
	}

	profile, err := s.guard.RequireProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetActiveMembership(ctx, profile.ID); err == nil {
		return nil, fmt.Errorf("%w: profile already belongs to a company", e.ErrInvalidInput)
	} else if !errors.Is(err, e.ErrNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	exists, err := s.repo.CompanyExistsByName(ctx, company.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check name existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateName
	}

	company.ID = uuid.New()
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.CreateCompany(ctx, company); err != nil {
			return err
		}
		return tx.CreateMember(ctx, &models.CompanyMember{
			ID:        uuid.New(),
			CompanyID: company.ID,
			ProfileID: profile.ID,
			Role:      models.RoleAdmin,
			IsActive:  true,
		})
	})
	if err != nil {
		if errors.Is(err, e.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register company: %w", err)
	}
	return company, nil
}

// Get retrieves a company by ID. Public read.
func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// Update modifies the principal's own company. Admin only.
func (s *CompanyService) Update(ctx context.Context, userID string, update *models.CompanyUpdate) (*models.Company, error) {
	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	update.ID = principal.CompanyID

	if err := s.repo.UpdateCompany(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return s.repo.GetCompany(ctx, principal.CompanyID)
}

// UploadLogo stores a new company logo and points the company row at
// it. The logo lives at a stable key, removed best-effort before the
// replacement upload.
func (s *CompanyService) UploadLogo(ctx context.Context, userID, contentType string, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: logo file required", e.ErrInvalidInput)
	}
	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin)
	if err != nil {
		return "", err
	}
	company, err := s.repo.GetCompany(ctx, principal.CompanyID)
	if err != nil {
		return "", fmt.Errorf("failed to get company: %w", err)
	}

	path := fmt.Sprintf("%s/logo", company.ID)
	if company.LogoURL != "" {
		if err := s.store.Delete(ctx, path); err != nil {
			s.logger.Warn("failed to delete previous logo", zap.Error(err))
		}
	}
	url, err := s.store.Upload(ctx, path, contentType, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	if err := s.repo.UpdateCompany(ctx, &models.CompanyUpdate{ID: company.ID, LogoURL: &url}); err != nil {
		return "", fmt.Errorf("failed to save logo url: %w", err)
	}
	return url, nil
}

// AddMember attaches an existing profile to the principal's company as
// a recruiter (or another role chosen by the admin).
func (s *CompanyService) AddMember(ctx context.Context, userID, email string, role models.Role) (*models.CompanyMember, error) {
	if role == "" {
		role = models.RoleRecruiter
	}
	if role != models.RoleAdmin && role != models.RoleRecruiter {
		return nil, fmt.Errorf("%w: unknown role %q", e.ErrInvalidInput, role)
	}
	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if _, err := s.repo.GetActiveMembership(ctx, profile.ID); err == nil {
		return nil, fmt.Errorf("%w: profile already belongs to a company", e.ErrInvalidInput)
	} else if !errors.Is(err, e.ErrNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.CompanyMember{
		ID:        uuid.New(),
		CompanyID: principal.CompanyID,
		ProfileID: profile.ID,
		Role:      role,
		IsActive:  true,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

// PurchaseSubscription inserts an active subscription for the
// principal's company. Payment is out of scope; the plan is granted
// directly.
func (s *CompanyService) PurchaseSubscription(ctx context.Context, userID, planType string) (*models.Subscription, error) {
	p, ok := plans[planType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", e.ErrInvalidInput, planType)
	}
	principal, err := s.guard.RequireMember(ctx, userID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &models.Subscription{
		ID:            uuid.New(),
		CompanyID:     principal.CompanyID,
		PlanType:      planType,
		JobPostsLimit: p.jobPostsLimit,
		StartDate:     now,
		EndDate:       now.Add(p.duration),
		IsActive:      true,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// GetDashboard builds the company overview counts for any active
// member.
func (s *CompanyService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	principal, err := s.guard.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.repo.CountJobs(ctx, principal.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	applications := make(map[models.ApplicationStatus]int64, 4)
	for _, status := range []models.ApplicationStatus{
		models.ApplicationPending,
		models.ApplicationReviewing,
		models.ApplicationAccepted,
		models.ApplicationRejected,
	} {
		count, err := s.repo.CountApplicationsByStatus(ctx, principal.CompanyID, status)
		if err != nil {
			return nil, fmt.Errorf("failed to count applications: %w", err)
		}
		applications[status] = count
	}
	unread, err := s.repo.CountUnreadNotifications(ctx, principal.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &Dashboard{
		TotalJobs:           jobs,
		Applications:        applications,
		UnreadNotifications: unread,
	}, nil
}
