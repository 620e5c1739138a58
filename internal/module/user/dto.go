package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/auth"
)

// RegisterRequest is the request body for email registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname" binding:"required,min=1,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the request body for email login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the request body for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest is the request body for revoking a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,min=1,max=50"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Nickname        string    `json:"nickname"`
	Provider        *string   `json:"provider,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// AuthResponse is returned from login and OAuth callback endpoints.
type AuthResponse struct {
	User   *UserResponse   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// AuthorizeResponse carries the provider authorization URL for the client
// to redirect to.
type AuthorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// ToResponse converts a User to its public representation.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Nickname:        u.Nickname,
		Provider:        u.Provider,
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
	}
}
