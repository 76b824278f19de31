package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/identity"
	"github.com/openhire/hireboard/internal/board/models"
	"github.com/openhire/hireboard/internal/board/storage"
	"go.uber.org/zap"
)

// DirectoryClient reads identity records from the provider's admin
// API. *identity.Directory is the production implementation.
type DirectoryClient interface {
	LookupUser(ctx context.Context, userID string) *identity.User
}

// ProfileService manages the board-side profile of a principal.
type ProfileService struct {
	repo      Repository
	store     storage.ObjectStore
	directory DirectoryClient
	logger    *zap.Logger
}

func NewProfileService(repo Repository, store storage.ObjectStore, directory DirectoryClient, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:      repo,
		store:     store,
		directory: directory,
		logger:    logger.Named("profile_service"),
	}
}

// ProfileInput carries the profile-completion form fields.
type ProfileInput struct {
	FullName string
	Email    string
	Phone    string
	Location string
	Headline string
}

// Upsert creates the profile on first submit and updates it afterwards.
func (s *ProfileService) Upsert(ctx context.Context, userID string, in *ProfileInput) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", e.ErrInvalidInput)
	}
	if in.FullName == "" || len(in.FullName) > 120 {
		return nil, fmt.Errorf("%w: invalid full name", e.ErrInvalidInput)
	}

	existing, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up profile: %w", err)
		}
		profile := &models.Profile{
			ID:       uuid.New(),
			UserID:   userID,
			FullName: in.FullName,
			Email:    in.Email,
			Phone:    in.Phone,
			Location: in.Location,
			Headline: in.Headline,
		}
		if err := s.repo.CreateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		return profile, nil
	}

	existing.FullName = in.FullName
	existing.Email = in.Email
	existing.Phone = in.Phone
	existing.Location = in.Location
	existing.Headline = in.Headline
	if err := s.repo.UpdateProfile(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return existing, nil
}

// Get returns the principal's profile, or ErrNoProfile when the
// profile-completion form was never submitted.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.ErrNoProfile
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	// Backfill the display email from the identity provider when the
	// profile form left it empty. The lookup degrades to a placeholder.
	if profile.Email == "" && s.directory != nil {
		profile.Email = s.directory.LookupUser(ctx, userID).Email
	}
	return profile, nil
}

// UploadAvatar stores a new avatar at the profile's stable key,
// removing the previous object best-effort first.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: avatar file required", e.ErrInvalidInput)
	}
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/avatar", profile.ID)
	if profile.AvatarURL != "" {
		if err := s.store.Delete(ctx, path); err != nil {
			s.logger.Warn("failed to delete previous avatar", zap.Error(err))
		}
	}
	url, err := s.store.Upload(ctx, path, contentType, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	profile.AvatarURL = url
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return "", fmt.Errorf("failed to save avatar url: %w", err)
	}
	return url, nil
}
