package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/journey-app/server/internal/utils/pagination"
)

// Service handles the per-user notification inbox.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Notify stores a single notification for a user.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ NotificationType, message string) error {
	n := &Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    typ,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// NotifyAll stores the same notification for a set of users.
func (s *Service) NotifyAll(ctx context.Context, userIDs []uuid.UUID, typ NotificationType, message string) error {
	ns := make([]*Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		ns = append(ns, &Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    typ,
			Message: message,
		})
	}
	if err := s.repo.CreateBatch(ctx, ns); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}

// ListMine returns the caller's notifications, newest first, along with
// the unread count.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, unreadOnly bool, p *pagination.Pagination) ([]*Notification, int64, int64, error) {
	ns, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, p)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return ns, total, unread, nil
}

// MarkRead marks a single notification as read. Notifications belonging
// to other users are reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
