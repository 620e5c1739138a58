// Package ownership implements the polymorphic ownership and visibility
// policy shared by templates, challenges and retrospects.
package ownership

import (
	"github.com/google/uuid"
)

// OwnerType identifies who owns an entity.
type OwnerType string

// Owner types.
const (
	OwnerUser   OwnerType = "USER"
	OwnerCrew   OwnerType = "CREW"
	OwnerCommon OwnerType = "COMMON" // shared, read-only for regular users
)

// IsValid checks if the owner type is a known value.
func (t OwnerType) IsValid() bool {
	switch t {
	case OwnerUser, OwnerCrew, OwnerCommon:
		return true
	}
	return false
}

// Visibility controls who may read a content entity.
type Visibility string

// Visibility levels.
const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityCrew    Visibility = "CREW"
	VisibilityPublic  Visibility = "PUBLIC"
)

// IsValid checks if the visibility is a known value.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityCrew, VisibilityPublic:
		return true
	}
	return false
}

// OwnerRef is the owner reference embedded in owned entities.
// Exactly one of OwnerUserID/OwnerCrewID is set, matching OwnerType;
// COMMON entities carry neither.
type OwnerRef struct {
	OwnerType   OwnerType  `json:"owner_type" gorm:"type:varchar(16);not null;index"`
	OwnerUserID *uuid.UUID `json:"owner_user_id,omitempty" gorm:"type:uuid;index"`
	OwnerCrewID *uuid.UUID `json:"owner_crew_id,omitempty" gorm:"type:uuid;index"`
}

// Owner implements the Owned interface for embedding types.
func (o OwnerRef) Owner() OwnerRef {
	return o
}

// Owned is implemented by any entity carrying an owner reference.
type Owned interface {
	Owner() OwnerRef
}

// Scoped is implemented by owned entities that also carry a visibility.
type Scoped interface {
	Owned
	Visible() Visibility
}
