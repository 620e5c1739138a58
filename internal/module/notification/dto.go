package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse is the public representation of a notification.
type NotificationResponse struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// ListNotificationsResponse is the paginated notification listing.
type ListNotificationsResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Total         int64                   `json:"total"`
	UnreadCount   int64                   `json:"unread_count"`
}

// ToResponse converts a Notification to its response form.
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
