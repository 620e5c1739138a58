package challenge

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/journey-app/server/internal/module/ownership"
)

// ChallengeStatus represents the lifecycle status of a challenge.
// Transitions are unconstrained: any status may be overwritten with any
// other valid status, including reopening a finished challenge.
type ChallengeStatus string

const (
	StatusLive    ChallengeStatus = "LIVE"
	StatusSuccess ChallengeStatus = "SUCCESS"
	StatusFail    ChallengeStatus = "FAIL"
)

// IsValid checks if the status is a known value.
func (s ChallengeStatus) IsValid() bool {
	switch s {
	case StatusLive, StatusSuccess, StatusFail:
		return true
	}
	return false
}

// AchievementStatus is a participant's personal result on a challenge.
type AchievementStatus string

const (
	AchievementPending  AchievementStatus = "PENDING"
	AchievementAchieved AchievementStatus = "ACHIEVED"
	AchievementFailed   AchievementStatus = "FAILED"
)

// IsValid checks if the achievement status is a known value.
func (s AchievementStatus) IsValid() bool {
	switch s {
	case AchievementPending, AchievementAchieved, AchievementFailed:
		return true
	}
	return false
}

// Plan holds the ordered steps generated (or written) for a challenge.
type Plan struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Steps     pq.StringArray `gorm:"type:text[]" json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Plan) TableName() string {
	return "plans"
}

// Challenge is a goal with a deadline, owned by a user or a crew.
type Challenge struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	ownership.OwnerRef

	Name           string            `gorm:"not null" json:"name"`
	Description    string            `json:"description,omitempty"`
	Deadline       time.Time         `gorm:"not null" json:"deadline"`
	KPIDescription string            `json:"kpi_description,omitempty"`
	KPIMetrics     map[string]string `gorm:"type:jsonb;serializer:json" json:"kpi_metrics,omitempty"`
	Status         ChallengeStatus   `gorm:"type:varchar(10);not null;default:'LIVE'" json:"status"`

	PlanID *uuid.UUID `gorm:"type:uuid" json:"plan_id,omitempty"`
	Plan   *Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Challenge) TableName() string {
	return "challenges"
}

// UserChallengeStatus tracks a participant's personal result on a
// challenge, one row per (user, challenge).
type UserChallengeStatus struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_user_challenge" json:"challenge_id"`
	Status      AchievementStatus `gorm:"type:varchar(10);not null;default:'PENDING'" json:"status"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (UserChallengeStatus) TableName() string {
	return "user_challenge_statuses"
}
