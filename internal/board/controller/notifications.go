package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/models"
	"go.uber.org/zap"
)

// NotificationService exposes the company notification feed and its
// read-state. All operations are scoped to the principal's company.
type NotificationService struct {
	repo   Repository
	guard  *Guard
	logger *zap.Logger
}

func NewNotificationService(repo Repository, guard *Guard, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		guard:  guard,
		logger: logger.Named("notification_service"),
	}
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	principal, err := s.guard.RequireMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotifications(ctx, principal.CompanyID)
}

// MarkRead is idempotent: a second call on the same notification leaves
// the state unchanged and still succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	principal, err := s.guard.RequireMember(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.MarkNotificationRead(ctx, principal.CompanyID, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	principal, err := s.guard.RequireMember(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.MarkAllNotificationsRead(ctx, principal.CompanyID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
