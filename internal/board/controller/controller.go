// Package controller implements the business logic of the job board:
// authorization, quota gating, job and application workflows, and the
// notification read-state, orchestrating repository operations and
// event production.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/db"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/events"
	"github.com/openhire/hireboard/internal/board/identity"
	"github.com/openhire/hireboard/internal/board/models"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

// Repository defines the storage interface the services depend on.
// *db.Repository is the production implementation.
type Repository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error

	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	CompanyExistsByName(ctx context.Context, name string) (bool, error)
	AddTotalJob(ctx context.Context, companyID uuid.UUID, delta int) error

	CreateMember(ctx context.Context, member *models.CompanyMember) error
	GetActiveMembership(ctx context.Context, profileID uuid.UUID) (*models.CompanyMember, error)

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter db.JobFilter) ([]models.Job, error)
	UpdateJob(ctx context.Context, update *models.JobUpdate) error
	DeleteJob(ctx context.Context, id, companyID uuid.UUID) error
	CountJobs(ctx context.Context, companyID uuid.UUID) (int64, error)

	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetActiveSubscription(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error)
	IncrementJobPostsUsed(ctx context.Context, subscriptionID uuid.UUID) error

	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	HasApplied(ctx context.Context, jobID, seekerID uuid.UUID) (bool, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]models.Application, error)
	ListApplicationsBySeeker(ctx context.Context, seekerID uuid.UUID) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error
	CountApplicationsByStatus(ctx context.Context, companyID uuid.UUID, status models.ApplicationStatus) (int64, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, companyID uuid.UUID) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, companyID, id uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, companyID uuid.UUID) error
	CountUnreadNotifications(ctx context.Context, companyID uuid.UUID) (int64, error)

	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// EventProducer publishes board events.
type EventProducer interface {
	Produce(eventType events.EventType, payload *events.Payload)
}

// PrincipalResolver resolves the requesting principal. *identity.Resolver
// is the production implementation.
type PrincipalResolver interface {
	ResolveProfile(ctx context.Context, userID string) (*models.Profile, error)
	Resolve(ctx context.Context, userID string) (*identity.Principal, error)
}

// Guard is the single authorization check used by every mutation entry
// point: an operation executes only if the resolved principal has an
// active, sufficiently privileged membership in the target company.
type Guard struct {
	resolver PrincipalResolver
}

func NewGuard(resolver PrincipalResolver) *Guard {
	return &Guard{resolver: resolver}
}

// RequireProfile resolves the principal's profile, for operations open
// to any authenticated user (job seekers included).
func (g *Guard) RequireProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return g.resolver.ResolveProfile(ctx, userID)
}

// RequireMember resolves the principal and checks the membership role
// against the allowed set. An empty set admits any active member.
func (g *Guard) RequireMember(ctx context.Context, userID string, roles ...models.Role) (*identity.Principal, error) {
	principal, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return principal, nil
	}
	for _, role := range roles {
		if principal.Role == role {
			return principal, nil
		}
	}
	return nil, fmt.Errorf("%w: role %q", e.ErrForbidden, principal.Role)
}

// NewEventHandler returns the consumer callback that keeps the cached
// company job counter in step with job mutations.
func NewEventHandler(repo Repository, logger *zap.Logger) func(context.Context, events.Event) error {
	logger = logger.Named("event_handler")
	return func(ctx context.Context, event events.Event) error {
		if event.Payload == nil {
			return nil
		}
		var delta int
		switch event.Type {
		case events.JobCreated:
			delta = 1
		case events.JobDeleted:
			delta = -1
		default:
			return nil
		}
		if err := repo.AddTotalJob(ctx, event.Payload.CompanyID, delta); err != nil {
			if errors.Is(err, e.ErrNotFound) {
				// Company removed since the event was produced; nothing to maintain.
				logger.Warn("company gone, skipping counter update",
					zap.String("company_id", event.Payload.CompanyID.String()),
				)
				return nil
			}
			return fmt.Errorf("failed to update job counter: %w", err)
		}
		return nil
	}
}
