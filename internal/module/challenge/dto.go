package challenge

import (
	"time"

	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
)

// CreateChallengeRequest is the request body for challenge creation.
// Plan steps may be supplied by the client; when omitted the LLM
// collaborator fills them in on a best-effort basis.
type CreateChallengeRequest struct {
	OwnerType   ownership.OwnerType `json:"owner_type" binding:"required"`
	OwnerCrewID *uuid.UUID          `json:"owner_crew_id,omitempty"`
	Name        string              `json:"name" binding:"required,min=1,max=100"`
	Description string              `json:"description" binding:"max=1000"`
	Deadline    time.Time           `json:"deadline" binding:"required"`
	PlanSteps   []string            `json:"plan_steps,omitempty"`
}

// UpdateChallengeRequest is the request body for challenge updates.
type UpdateChallengeRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// UpdateStatusRequest is the request body for a status overwrite.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetMyStatusRequest is the request body for a participant's personal
// result.
type SetMyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlanResponse is the public representation of a plan.
type PlanResponse struct {
	ID    uuid.UUID `json:"id"`
	Steps []string  `json:"steps"`
}

// ChallengeResponse is the public representation of a challenge.
type ChallengeResponse struct {
	ID             uuid.UUID           `json:"id"`
	OwnerType      ownership.OwnerType `json:"owner_type"`
	OwnerUserID    *uuid.UUID          `json:"owner_user_id,omitempty"`
	OwnerCrewID    *uuid.UUID          `json:"owner_crew_id,omitempty"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Deadline       time.Time           `json:"deadline"`
	KPIDescription string              `json:"kpi_description,omitempty"`
	KPIMetrics     map[string]string   `json:"kpi_metrics,omitempty"`
	Status         ChallengeStatus     `json:"status"`
	Plan           *PlanResponse       `json:"plan,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ListChallengesResponse is the paginated challenge listing.
type ListChallengesResponse struct {
	Challenges []*ChallengeResponse `json:"challenges"`
	Total      int64                `json:"total"`
}

// UserStatusResponse is a participant's personal result.
type UserStatusResponse struct {
	UserID      uuid.UUID         `json:"user_id"`
	ChallengeID uuid.UUID         `json:"challenge_id"`
	Status      AchievementStatus `json:"status"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToResponse converts a Challenge to its public representation.
func (c *Challenge) ToResponse() *ChallengeResponse {
	resp := &ChallengeResponse{
		ID:             c.ID,
		OwnerType:      c.OwnerType,
		OwnerUserID:    c.OwnerUserID,
		OwnerCrewID:    c.OwnerCrewID,
		Name:           c.Name,
		Description:    c.Description,
		Deadline:       c.Deadline,
		KPIDescription: c.KPIDescription,
		KPIMetrics:     c.KPIMetrics,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Plan != nil {
		resp.Plan = &PlanResponse{ID: c.Plan.ID, Steps: c.Plan.Steps}
	}
	return resp
}

// ToResponse converts a UserChallengeStatus to its public representation.
func (s *UserChallengeStatus) ToResponse() *UserStatusResponse {
	return &UserStatusResponse{
		UserID:      s.UserID,
		ChallengeID: s.ChallengeID,
		Status:      s.Status,
		UpdatedAt:   s.UpdatedAt,
	}
}
