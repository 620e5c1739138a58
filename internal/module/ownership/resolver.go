package ownership

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/journey-app/server/internal/shared/errors"
)

// MembershipReader is the ledger view the resolver needs.
// Implemented by the crew module; membership records are the single
// source of truth for every crew-scoped decision.
type MembershipReader interface {
	// IsAcceptedMember reports whether the user has an ACCEPTED
	// membership in the crew.
	IsAcceptedMember(ctx context.Context, userID, crewID uuid.UUID) (bool, error)

	// HasCreatorRole reports whether the user holds the ACCEPTED
	// CREATOR membership of the crew.
	HasCreatorRole(ctx context.Context, userID, crewID uuid.UUID) (bool, error)

	// AcceptedCrewIDs returns the IDs of all crews where the user
	// has an ACCEPTED membership.
	AcceptedCrewIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver answers "can principal P perform action A on entity E".
type Resolver struct {
	memberships MembershipReader
}

// NewResolver creates an ownership resolver backed by the given ledger view.
func NewResolver(memberships MembershipReader) *Resolver {
	return &Resolver{memberships: memberships}
}

// CanWrite returns nil if the principal may mutate the entity.
// USER entities are writable by their owner, CREW entities by any
// ACCEPTED member of the owning crew, COMMON entities by nobody.
func (r *Resolver) CanWrite(ctx context.Context, p Principal, e Owned) error {
	if p.IsAnonymous() {
		return apperrors.Unauthorized("authentication required")
	}

	ref := e.Owner()
	switch ref.OwnerType {
	case OwnerUser:
		if ref.OwnerUserID != nil && *ref.OwnerUserID == p.UserID {
			return nil
		}
		return apperrors.Forbidden("not the owner")

	case OwnerCrew:
		if ref.OwnerCrewID == nil {
			return apperrors.Forbidden("entity has no owning crew")
		}
		member, err := r.memberships.IsAcceptedMember(ctx, p.UserID, *ref.OwnerCrewID)
		if err != nil {
			return fmt.Errorf("check crew membership: %w", err)
		}
		if !member {
			return apperrors.Forbidden("not a member of the owning crew")
		}
		return nil

	case OwnerCommon:
		// Reserved for privileged maintenance
		return apperrors.Forbidden("shared entities are read-only")

	default:
		return apperrors.Forbidden("unknown owner type")
	}
}

// CanRead returns nil if the principal may read the entity. Entities
// without a visibility attribute are readable by anyone; scoped
// entities defer to the visibility rules.
func (r *Resolver) CanRead(ctx context.Context, p Principal, e Owned) error {
	scoped, ok := e.(Scoped)
	if !ok {
		return nil
	}

	readScope, err := r.ReadScopeFor(ctx, p)
	if err != nil {
		return err
	}
	if !readScope.CanRead(scoped) {
		return apperrors.Forbidden("not visible to this user")
	}
	return nil
}

// ValidateOwnerFields enforces the owner reference rules at creation
// time: exactly one of userID/crewID set, matching ownerType (COMMON:
// neither), and for CREW ownership the principal must already be an
// ACCEPTED member of the target crew.
func (r *Resolver) ValidateOwnerFields(ctx context.Context, p Principal, ownerType OwnerType, userID, crewID *uuid.UUID) error {
	if !ownerType.IsValid() {
		return apperrors.ValidationError(fmt.Sprintf("invalid owner_type: %s", ownerType))
	}

	switch ownerType {
	case OwnerUser:
		if userID == nil || crewID != nil {
			return apperrors.ValidationError("USER ownership requires owner_user_id and no owner_crew_id")
		}
		if p.IsAnonymous() || *userID != p.UserID {
			return apperrors.Forbidden("cannot create entities for another user")
		}

	case OwnerCrew:
		if crewID == nil || userID != nil {
			return apperrors.ValidationError("CREW ownership requires owner_crew_id and no owner_user_id")
		}
		if p.IsAnonymous() {
			return apperrors.Unauthorized("authentication required")
		}
		member, err := r.memberships.IsAcceptedMember(ctx, p.UserID, *crewID)
		if err != nil {
			return fmt.Errorf("check crew membership: %w", err)
		}
		if !member {
			return apperrors.Forbidden("not a member of the target crew")
		}

	case OwnerCommon:
		if userID != nil || crewID != nil {
			return apperrors.ValidationError("COMMON ownership carries no owner reference")
		}
	}

	return nil
}

// RequireCreator returns nil if the principal holds the CREATOR role of
// the crew. Used by membership approval/rejection and crew mutation.
func (r *Resolver) RequireCreator(ctx context.Context, p Principal, crewID uuid.UUID) error {
	if p.IsAnonymous() {
		return apperrors.Unauthorized("authentication required")
	}
	creator, err := r.memberships.HasCreatorRole(ctx, p.UserID, crewID)
	if err != nil {
		return fmt.Errorf("check creator role: %w", err)
	}
	if !creator {
		return apperrors.Forbidden("crew creator role required")
	}
	return nil
}

// ReadScopeFor computes the principal's read scope for query composition.
func (r *Resolver) ReadScopeFor(ctx context.Context, p Principal) (ReadScope, error) {
	if p.IsAnonymous() {
		return ReadScope{}, nil
	}
	crewIDs, err := r.memberships.AcceptedCrewIDs(ctx, p.UserID)
	if err != nil {
		return ReadScope{}, fmt.Errorf("list accepted crews: %w", err)
	}
	return ReadScope{UserID: p.UserID, CrewIDs: crewIDs}, nil
}
