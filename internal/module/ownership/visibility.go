package ownership

import "github.com/google/uuid"

// ReadScope is a principal's materialized read scope: its own user ID
// and the crews where it holds an ACCEPTED membership. The zero value
// is the anonymous scope, which sees only PUBLIC entities.
type ReadScope struct {
	UserID  uuid.UUID
	CrewIDs []uuid.UUID
}

// IsAnonymous reports whether the scope belongs to an unauthenticated
// principal.
func (s ReadScope) IsAnonymous() bool {
	return s.UserID == uuid.Nil
}

// InCrew reports whether the scope includes the given crew.
func (s ReadScope) InCrew(crewID uuid.UUID) bool {
	for _, id := range s.CrewIDs {
		if id == crewID {
			return true
		}
	}
	return false
}

// CanRead reports whether a visibility-scoped entity is readable.
// Rules: PUBLIC always; PRIVATE only for the owning user; CREW for
// ACCEPTED members of the owning crew. The owning user of a
// USER-owned entity reads it at any visibility.
func (s ReadScope) CanRead(e Scoped) bool {
	ref := e.Owner()
	if s.isOwningUser(ref) {
		return true
	}

	switch e.Visible() {
	case VisibilityPublic:
		return true

	case VisibilityCrew:
		if ref.OwnerCrewID == nil {
			return false
		}
		return s.InCrew(*ref.OwnerCrewID)
	}

	return false
}

func (s ReadScope) isOwningUser(ref OwnerRef) bool {
	return ref.OwnerType == OwnerUser &&
		ref.OwnerUserID != nil &&
		!s.IsAnonymous() &&
		*ref.OwnerUserID == s.UserID
}

// FilterReadable narrows a candidate set to the entities readable in
// this scope, preserving order. An entity satisfying multiple clauses
// appears once.
func FilterReadable[T Scoped](scope ReadScope, entities []T) []T {
	result := make([]T, 0, len(entities))
	for _, e := range entities {
		if scope.CanRead(e) {
			result = append(result, e)
		}
	}
	return result
}
