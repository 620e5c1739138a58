package ownership

import "github.com/google/uuid"

// Principal is the acting identity of a request.
// The zero value is the anonymous principal.
type Principal struct {
	UserID uuid.UUID
}

// NewPrincipal creates a principal for an authenticated user.
func NewPrincipal(userID uuid.UUID) Principal {
	return Principal{UserID: userID}
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous reports whether the principal is unauthenticated.
func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}
