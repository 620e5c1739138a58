// Package crew implements crews and the membership ledger that records
// who belongs to them.
package crew

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a member's role in a crew.
type Role string

const (
	RoleCreator     Role = "CREATOR"
	RoleParticipant Role = "PARTICIPANT"
)

// MembershipStatus represents the lifecycle state of a membership.
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "PENDING"
	StatusAccepted MembershipStatus = "ACCEPTED"
	StatusRejected MembershipStatus = "REJECTED"
)

// Crew represents a group of users.
// MemberCount is a cached read optimization; the source of truth is
// always the count of ACCEPTED memberships.
type Crew struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	MemberCount int       `json:"member_count" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations (not loaded by default)
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:CrewID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (Crew) TableName() string {
	return "crews"
}

// Membership records a user's relationship with a crew.
type Membership struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_crew"`
	CrewID    uuid.UUID        `json:"crew_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_crew;index"`
	Role      Role             `json:"role" gorm:"type:varchar(16);not null;default:PARTICIPANT"`
	Status    MembershipStatus `json:"status" gorm:"type:varchar(16);not null;default:PENDING"`
	JoinedAt  time.Time        `json:"joined_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName returns the database table name.
func (Membership) TableName() string {
	return "memberships"
}

// IsAccepted returns true if the membership is ACCEPTED.
func (m *Membership) IsAccepted() bool {
	return m.Status == StatusAccepted
}

// IsPending returns true if the membership is PENDING.
func (m *Membership) IsPending() bool {
	return m.Status == StatusPending
}

// IsRejected returns true if the membership is REJECTED.
func (m *Membership) IsRejected() bool {
	return m.Status == StatusRejected
}

// IsCreator returns true if the member holds the CREATOR role.
func (m *Membership) IsCreator() bool {
	return m.Role == RoleCreator
}
