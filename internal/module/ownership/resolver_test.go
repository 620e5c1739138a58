package ownership

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/journey-app/server/internal/shared/errors"
)

// fakeMemberships is an in-memory MembershipReader for tests.
type fakeMemberships struct {
	accepted map[uuid.UUID][]uuid.UUID // userID -> crew IDs
	creators map[uuid.UUID]uuid.UUID   // crewID -> creator user ID
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{
		accepted: make(map[uuid.UUID][]uuid.UUID),
		creators: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeMemberships) addMember(userID, crewID uuid.UUID) {
	f.accepted[userID] = append(f.accepted[userID], crewID)
}

func (f *fakeMemberships) IsAcceptedMember(_ context.Context, userID, crewID uuid.UUID) (bool, error) {
	for _, id := range f.accepted[userID] {
		if id == crewID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMemberships) HasCreatorRole(_ context.Context, userID, crewID uuid.UUID) (bool, error) {
	return f.creators[crewID] == userID, nil
}

func (f *fakeMemberships) AcceptedCrewIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.accepted[userID], nil
}

// testEntity is a minimal owned entity.
type testEntity struct {
	OwnerRef
}

// testScopedEntity additionally carries visibility.
type testScopedEntity struct {
	OwnerRef
	visibility Visibility
}

func (e testScopedEntity) Visible() Visibility { return e.visibility }

func userOwned(userID uuid.UUID) testEntity {
	return testEntity{OwnerRef{OwnerType: OwnerUser, OwnerUserID: &userID}}
}

func crewOwned(crewID uuid.UUID) testEntity {
	return testEntity{OwnerRef{OwnerType: OwnerCrew, OwnerCrewID: &crewID}}
}

func TestResolver_CanWrite(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()
	crewID := uuid.New()

	memberships := newFakeMemberships()
	memberships.addMember(owner, crewID)
	resolver := NewResolver(memberships)

	tests := []struct {
		name      string
		principal Principal
		entity    Owned
		wantErr   error
	}{
		{
			name:      "user entity writable by owner",
			principal: NewPrincipal(owner),
			entity:    userOwned(owner),
			wantErr:   nil,
		},
		{
			name:      "user entity denied for other user",
			principal: NewPrincipal(other),
			entity:    userOwned(owner),
			wantErr:   apperrors.ErrForbidden,
		},
		{
			name:      "crew entity writable by accepted member",
			principal: NewPrincipal(owner),
			entity:    crewOwned(crewID),
			wantErr:   nil,
		},
		{
			name:      "crew entity denied for non-member",
			principal: NewPrincipal(other),
			entity:    crewOwned(crewID),
			wantErr:   apperrors.ErrForbidden,
		},
		{
			name:      "common entity always denied",
			principal: NewPrincipal(owner),
			entity:    testEntity{OwnerRef{OwnerType: OwnerCommon}},
			wantErr:   apperrors.ErrForbidden,
		},
		{
			name:      "anonymous always denied",
			principal: Anonymous(),
			entity:    userOwned(owner),
			wantErr:   apperrors.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolver.CanWrite(ctx, tt.principal, tt.entity)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestResolver_ValidateOwnerFields(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	crewID := uuid.New()
	otherCrew := uuid.New()

	memberships := newFakeMemberships()
	memberships.addMember(userID, crewID)
	resolver := NewResolver(memberships)

	principal := NewPrincipal(userID)

	t.Run("valid user ownership", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerUser, &userID, nil)
		assert.NoError(t, err)
	})

	t.Run("user ownership for another user forbidden", func(t *testing.T) {
		other := uuid.New()
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerUser, &other, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("user ownership with both refs invalid", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerUser, &userID, &crewID)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("valid crew ownership for member", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerCrew, nil, &crewID)
		assert.NoError(t, err)
	})

	t.Run("crew ownership for non-member forbidden", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerCrew, nil, &otherCrew)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("crew ownership without crew ref invalid", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerCrew, &userID, nil)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("common with refs invalid", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerCommon, &userID, nil)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("common without refs valid", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerCommon, nil, nil)
		assert.NoError(t, err)
	})

	t.Run("unknown owner type invalid", func(t *testing.T) {
		err := resolver.ValidateOwnerFields(ctx, principal, OwnerType("TEAM"), nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestResolver_RequireCreator(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()
	crewID := uuid.New()

	memberships := newFakeMemberships()
	memberships.addMember(creator, crewID)
	memberships.addMember(member, crewID)
	memberships.creators[crewID] = creator
	resolver := NewResolver(memberships)

	assert.NoError(t, resolver.RequireCreator(ctx, NewPrincipal(creator), crewID))
	assert.ErrorIs(t, resolver.RequireCreator(ctx, NewPrincipal(member), crewID), apperrors.ErrForbidden)
	assert.ErrorIs(t, resolver.RequireCreator(ctx, Anonymous(), crewID), apperrors.ErrUnauthorized)
}

func TestResolver_ReadScopeFor(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	crewID := uuid.New()

	memberships := newFakeMemberships()
	memberships.addMember(userID, crewID)
	resolver := NewResolver(memberships)

	t.Run("authenticated scope", func(t *testing.T) {
		scope, err := resolver.ReadScopeFor(ctx, NewPrincipal(userID))
		require.NoError(t, err)
		assert.Equal(t, userID, scope.UserID)
		assert.Equal(t, []uuid.UUID{crewID}, scope.CrewIDs)
	})

	t.Run("anonymous scope", func(t *testing.T) {
		scope, err := resolver.ReadScopeFor(ctx, Anonymous())
		require.NoError(t, err)
		assert.True(t, scope.IsAnonymous())
		assert.Empty(t, scope.CrewIDs)
	})
}
