package retrospect

import (
	"time"

	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
)

// CreateRetrospectRequest is the request body for writing a retrospect.
type CreateRetrospectRequest struct {
	ChallengeID uuid.UUID            `json:"challenge_id" binding:"required"`
	TemplateID  *uuid.UUID           `json:"template_id,omitempty"`
	OwnerType   ownership.OwnerType  `json:"owner_type" binding:"required"`
	OwnerCrewID *uuid.UUID           `json:"owner_crew_id,omitempty"`
	Content     string               `json:"content" binding:"required,min=1"`
	KPIResult   *float64             `json:"kpi_result,omitempty"`
	Visibility  ownership.Visibility `json:"visibility,omitempty"`
}

// UpdateRetrospectRequest is the request body for retrospect updates.
type UpdateRetrospectRequest struct {
	Content    *string               `json:"content" binding:"omitempty,min=1"`
	KPIResult  *float64              `json:"kpi_result,omitempty"`
	Visibility *ownership.Visibility `json:"visibility,omitempty"`
}

// GenerateAnalysisRequest is the request body for a weekly analysis run.
type GenerateAnalysisRequest struct {
	OwnerType   ownership.OwnerType `json:"owner_type" binding:"required"`
	OwnerCrewID *uuid.UUID          `json:"owner_crew_id,omitempty"`
	StartDate   time.Time           `json:"start_date" binding:"required"`
	EndDate     time.Time           `json:"end_date" binding:"required"`
}

// RetrospectResponse is the public representation of a retrospect.
type RetrospectResponse struct {
	ID          uuid.UUID            `json:"id"`
	ChallengeID uuid.UUID            `json:"challenge_id"`
	TemplateID  *uuid.UUID           `json:"template_id,omitempty"`
	AuthorID    uuid.UUID            `json:"author_id"`
	OwnerType   ownership.OwnerType  `json:"owner_type"`
	OwnerUserID *uuid.UUID           `json:"owner_user_id,omitempty"`
	OwnerCrewID *uuid.UUID           `json:"owner_crew_id,omitempty"`
	Content     string               `json:"content"`
	KPIResult   *float64             `json:"kpi_result,omitempty"`
	Visibility  ownership.Visibility `json:"visibility"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ListRetrospectsResponse is the paginated retrospect listing.
type ListRetrospectsResponse struct {
	Retrospects []*RetrospectResponse `json:"retrospects"`
	Total       int64                 `json:"total"`
}

// AnalysisResponse is the public representation of a weekly analysis.
type AnalysisResponse struct {
	ID          uuid.UUID           `json:"id"`
	OwnerType   ownership.OwnerType `json:"owner_type"`
	OwnerUserID *uuid.UUID          `json:"owner_user_id,omitempty"`
	OwnerCrewID *uuid.UUID          `json:"owner_crew_id,omitempty"`
	Summary     map[string]any      `json:"summary"`
	WeeklyKPI   *int                `json:"weekly_kpi,omitempty"`
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ListAnalysesResponse is the paginated analysis listing.
type ListAnalysesResponse struct {
	Analyses []*AnalysisResponse `json:"analyses"`
	Total    int64               `json:"total"`
}

// ToResponse converts a Retrospect to its public representation.
func (r *Retrospect) ToResponse() *RetrospectResponse {
	return &RetrospectResponse{
		ID:          r.ID,
		ChallengeID: r.ChallengeID,
		TemplateID:  r.TemplateID,
		AuthorID:    r.AuthorID,
		OwnerType:   r.OwnerType,
		OwnerUserID: r.OwnerUserID,
		OwnerCrewID: r.OwnerCrewID,
		Content:     r.Content,
		KPIResult:   r.KPIResult,
		Visibility:  r.Visibility,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToResponse converts a WeeklyAnalysis to its public representation.
func (a *WeeklyAnalysis) ToResponse() *AnalysisResponse {
	return &AnalysisResponse{
		ID:          a.ID,
		OwnerType:   a.OwnerType,
		OwnerUserID: a.OwnerUserID,
		OwnerCrewID: a.OwnerCrewID,
		Summary:     a.Summary,
		WeeklyKPI:   a.WeeklyKPI,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		CreatedAt:   a.CreatedAt,
	}
}
