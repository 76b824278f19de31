// Package identity maps the authenticated principal of a request to a
// profile and, through the membership table, to a company and a role.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/models"
	"go.uber.org/zap"
)

// Repository is the subset of storage the resolver needs.
type Repository interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetActiveMembership(ctx context.Context, profileID uuid.UUID) (*models.CompanyMember, error)
}

// Principal is the resolved company-side identity of a request.
type Principal struct {
	ProfileID uuid.UUID
	CompanyID uuid.UUID
	Role      models.Role
}

// Resolver resolves principals per request. No caching: the membership
// row is re-read every time so deactivations take effect immediately.
type Resolver struct {
	repo   Repository
	logger *zap.Logger
}

func NewResolver(repo Repository, logger *zap.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger.Named("identity_resolver"),
	}
}

// ResolveProfile returns the profile for an external user id, or
// ErrNoProfile when the user has not completed profile creation.
func (r *Resolver) ResolveProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", e.ErrInvalidInput)
	}
	profile, err := r.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.ErrNoProfile
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	return profile, nil
}

// Resolve returns the full principal: profile plus active company
// membership. ErrNoMembership when the profile belongs to no company.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Principal, error) {
	profile, err := r.ResolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	member, err := r.repo.GetActiveMembership(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.ErrNoMembership
		}
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	return &Principal{
		ProfileID: profile.ID,
		CompanyID: member.CompanyID,
		Role:      member.Role,
	}, nil
}
