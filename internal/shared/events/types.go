package events

import "github.com/google/uuid"

// Membership event type constants.
const (
	MembershipAcceptedType = "MembershipAccepted"
	MembershipRejectedType = "MembershipRejected"
)

// Analysis event type constants.
const (
	WeeklyAnalysisCompletedType = "WeeklyAnalysisCompleted"
)

// MembershipAcceptedEvent is emitted when a membership transitions to ACCEPTED,
// either by a direct join or by approval of a pending request.
// This is defined in the events package to avoid cyclic imports.
type MembershipAcceptedEvent struct {
	BaseEvent

	// UserID is the user whose membership was accepted.
	UserID uuid.UUID `json:"user_id"`

	// CrewID is the crew the user joined.
	CrewID uuid.UUID `json:"crew_id"`

	// CrewName is the display name of the crew.
	CrewName string `json:"crew_name"`

	// Role is the role assigned at acceptance ("CREATOR" or "PARTICIPANT").
	Role string `json:"role"`
}

// NewMembershipAcceptedEvent creates a new MembershipAcceptedEvent.
func NewMembershipAcceptedEvent(userID, crewID uuid.UUID, crewName, role string) *MembershipAcceptedEvent {
	return &MembershipAcceptedEvent{
		BaseEvent: NewBaseEvent(MembershipAcceptedType, crewID, "Crew"),
		UserID:    userID,
		CrewID:    crewID,
		CrewName:  crewName,
		Role:      role,
	}
}

// MembershipRejectedEvent is emitted when a pending join request is rejected.
type MembershipRejectedEvent struct {
	BaseEvent

	// UserID is the user whose join request was rejected.
	UserID uuid.UUID `json:"user_id"`

	// CrewID is the crew that rejected the request.
	CrewID uuid.UUID `json:"crew_id"`

	// CrewName is the display name of the crew.
	CrewName string `json:"crew_name"`
}

// NewMembershipRejectedEvent creates a new MembershipRejectedEvent.
func NewMembershipRejectedEvent(userID, crewID uuid.UUID, crewName string) *MembershipRejectedEvent {
	return &MembershipRejectedEvent{
		BaseEvent: NewBaseEvent(MembershipRejectedType, crewID, "Crew"),
		UserID:    userID,
		CrewID:    crewID,
		CrewName:  crewName,
	}
}

// WeeklyAnalysisCompletedEvent is emitted when a weekly retrospective
// analysis finishes for a user or crew.
type WeeklyAnalysisCompletedEvent struct {
	BaseEvent

	// AnalysisID is the completed analysis record.
	AnalysisID uuid.UUID `json:"analysis_id"`

	// UserIDs are the users to be notified of the completed analysis.
	UserIDs []uuid.UUID `json:"user_ids"`

	// OwnerType is "USER" or "CREW".
	OwnerType string `json:"owner_type"`
}

// NewWeeklyAnalysisCompletedEvent creates a new WeeklyAnalysisCompletedEvent.
func NewWeeklyAnalysisCompletedEvent(analysisID uuid.UUID, userIDs []uuid.UUID, ownerType string) *WeeklyAnalysisCompletedEvent {
	return &WeeklyAnalysisCompletedEvent{
		BaseEvent:  NewBaseEvent(WeeklyAnalysisCompletedType, analysisID, "RetrospectWeeklyAnalysis"),
		AnalysisID: analysisID,
		UserIDs:    userIDs,
		OwnerType:  ownerType,
	}
}
