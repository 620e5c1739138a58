package crew

import (
	"time"

	"github.com/google/uuid"
)

// CreateCrewRequest represents a request to create a crew.
type CreateCrewRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
}

// UpdateCrewRequest represents a request to update a crew.
type UpdateCrewRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url"`
}

// CrewResponse represents a crew in API responses.
type CrewResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Optional: current user's membership in this crew
	MyMembership *MembershipResponse `json:"my_membership,omitempty"`
}

// ToResponse converts a Crew to CrewResponse.
func (c *Crew) ToResponse(my *Membership) *CrewResponse {
	resp := &CrewResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		MemberCount: c.MemberCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if my != nil {
		resp.MyMembership = my.ToResponse()
	}
	return resp
}

// MembershipResponse represents a membership in API responses.
type MembershipResponse struct {
	ID       uuid.UUID        `json:"id"`
	UserID   uuid.UUID        `json:"user_id"`
	CrewID   uuid.UUID        `json:"crew_id"`
	Role     Role             `json:"role"`
	Status   MembershipStatus `json:"status"`
	JoinedAt time.Time        `json:"joined_at"`
}

// ToResponse converts a Membership to MembershipResponse.
func (m *Membership) ToResponse() *MembershipResponse {
	return &MembershipResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		CrewID:   m.CrewID,
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
}

// ListCrewsResponse is the paginated crew listing payload.
type ListCrewsResponse struct {
	Crews []*CrewResponse `json:"crews"`
	Total int64           `json:"total"`
}
