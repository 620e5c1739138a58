package notification

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification does not
	// exist or belongs to another user.
	ErrNotificationNotFound = errors.New("notification not found")
)
