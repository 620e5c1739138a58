package template

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/journey-app/server/internal/module/ownership"
)

// Template is a reusable retrospective outline. Templates are owned by a
// user, a crew, or shared as COMMON (read-only built-ins visible to
// everyone).
type Template struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	ownership.OwnerRef

	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description,omitempty"`
	Steps       pq.StringArray `gorm:"type:text[]" json:"steps"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Template) TableName() string {
	return "templates"
}
