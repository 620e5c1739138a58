package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	TypeMembershipAccepted NotificationType = "MEMBERSHIP_ACCEPTED"
	TypeMembershipRejected NotificationType = "MEMBERSHIP_REJECTED"
	TypeWeeklyAnalysis     NotificationType = "WEEKLY_ANALYSIS"
)

// Notification is a per-user inbox entry produced by domain events.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName returns the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}
