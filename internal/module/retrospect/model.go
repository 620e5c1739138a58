package retrospect

import (
	"time"

	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
)

// Retrospect is a reflection written against a challenge, optionally
// following a template. CREW-owned retrospects cannot be PRIVATE.
type Retrospect struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	ChallengeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"challenge_id"`
	TemplateID  *uuid.UUID `gorm:"type:uuid" json:"template_id,omitempty"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`

	ownership.OwnerRef

	Content    string               `gorm:"not null" json:"content"`
	KPIResult  *float64             `json:"kpi_result,omitempty"`
	Visibility ownership.Visibility `gorm:"type:varchar(10);not null;default:'PRIVATE'" json:"visibility"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Retrospect) TableName() string {
	return "retrospects"
}

// Visible implements the ownership.Scoped interface.
func (r *Retrospect) Visible() ownership.Visibility {
	return r.Visibility
}

// WeeklyAnalysis is an LLM-generated weekly digest of retrospects for a
// user or a crew.
type WeeklyAnalysis struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	ownership.OwnerRef

	Summary   map[string]any `gorm:"type:jsonb;serializer:json;not null" json:"summary"`
	WeeklyKPI *int           `json:"weekly_kpi,omitempty"`
	StartDate time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time      `gorm:"type:date;not null" json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (WeeklyAnalysis) TableName() string {
	return "retrospect_weekly_analyses"
}
