package template

import (
	"time"

	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
)

// CreateTemplateRequest is the request body for template creation.
type CreateTemplateRequest struct {
	OwnerType   ownership.OwnerType `json:"owner_type" binding:"required"`
	OwnerCrewID *uuid.UUID          `json:"owner_crew_id,omitempty"`
	Name        string              `json:"name" binding:"required,min=1,max=100"`
	Description string              `json:"description" binding:"max=500"`
	Steps       []string            `json:"steps" binding:"required,min=1,dive,min=1"`
}

// UpdateTemplateRequest is the request body for template updates.
type UpdateTemplateRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	Steps       []string `json:"steps" binding:"omitempty,min=1,dive,min=1"`
}

// TemplateResponse is the public representation of a template.
type TemplateResponse struct {
	ID          uuid.UUID           `json:"id"`
	OwnerType   ownership.OwnerType `json:"owner_type"`
	OwnerUserID *uuid.UUID          `json:"owner_user_id,omitempty"`
	OwnerCrewID *uuid.UUID          `json:"owner_crew_id,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Steps       []string            `json:"steps"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ListTemplatesResponse is the paginated template listing.
type ListTemplatesResponse struct {
	Templates []*TemplateResponse `json:"templates"`
	Total     int64               `json:"total"`
}

// ToResponse converts a Template to its public representation.
func (t *Template) ToResponse() *TemplateResponse {
	return &TemplateResponse{
		ID:          t.ID,
		OwnerType:   t.OwnerType,
		OwnerUserID: t.OwnerUserID,
		OwnerCrewID: t.OwnerCrewID,
		Name:        t.Name,
		Description: t.Description,
		Steps:       t.Steps,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
