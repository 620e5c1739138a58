package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/journey-app/server/internal/shared/events"
)

// EventHandler consumes domain events and turns them into inbox
// notifications for the affected users.
type EventHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewEventHandler creates a new notification event handler.
func NewEventHandler(service *Service, logger *zap.Logger) *EventHandler {
	return &EventHandler{service: service, logger: logger}
}

// Handles returns the event types this handler subscribes to.
func (h *EventHandler) Handles() []string {
	return []string{
		events.MembershipAcceptedType,
		events.MembershipRejectedType,
		events.WeeklyAnalysisCompletedType,
	}
}

// Handle persists a notification for the event's audience.
func (h *EventHandler) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.MembershipAcceptedEvent:
		message := fmt.Sprintf("Your request to join %q was approved.", e.CrewName)
		if e.Role == "CREATOR" {
			message = fmt.Sprintf("You are now the creator of %q.", e.CrewName)
		}
		return h.service.Notify(ctx, e.UserID, TypeMembershipAccepted, message)

	case *events.MembershipRejectedEvent:
		message := fmt.Sprintf("Your request to join %q was declined.", e.CrewName)
		return h.service.Notify(ctx, e.UserID, TypeMembershipRejected, message)

	case *events.WeeklyAnalysisCompletedEvent:
		message := "Your weekly analysis is ready."
		if e.OwnerType == "CREW" {
			message = "Your crew's weekly analysis is ready."
		}
		return h.service.NotifyAll(ctx, e.UserIDs, TypeWeeklyAnalysis, message)

	default:
		h.logger.Warn("unexpected event type",
			zap.String("event_type", event.EventType()))
		return nil
	}
}
