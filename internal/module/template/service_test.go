package template

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/journey-app/server/internal/module/ownership"
	apperrors "github.com/journey-app/server/internal/shared/errors"
	"github.com/journey-app/server/internal/utils/pagination"
)

type fakeMemberships struct {
	// crews per user with accepted membership
	accepted map[uuid.UUID][]uuid.UUID
}

func (f *fakeMemberships) IsAcceptedMember(_ context.Context, userID, crewID uuid.UUID) (bool, error) {
	for _, id := range f.accepted[userID] {
		if id == crewID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMemberships) HasCreatorRole(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeMemberships) AcceptedCrewIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.accepted[userID], nil
}

type fakeRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*Template
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{templates: make(map[uuid.UUID]*Template)}
}

func (r *fakeRepo) Create(_ context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return ErrTemplateNotFound
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *fakeRepo) ListVisible(_ context.Context, scope ownership.ReadScope, p *pagination.Pagination) ([]*Template, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*Template
	for _, t := range r.templates {
		if readable(scope, t) {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func newTestService(members *fakeMemberships) (*Service, *fakeRepo) {
	if members == nil {
		members = &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{}}
	}
	repo := newFakeRepo()
	svc := NewService(repo, ownership.NewResolver(members), zap.NewNop())
	return svc, repo
}

func seedTemplate(t *testing.T, repo *fakeRepo, ref ownership.OwnerRef, name string) *Template {
	t.Helper()
	tmpl := &Template{
		ID:       uuid.New(),
		OwnerRef: ref,
		Name:     name,
		Steps:    []string{"what went well", "what to improve"},
	}
	require.NoError(t, repo.Create(context.Background(), tmpl))
	return tmpl
}

func userRef(userID uuid.UUID) ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerUser, OwnerUserID: &userID}
}

func crewRef(crewID uuid.UUID) ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerCrew, OwnerCrewID: &crewID}
}

func commonRef() ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerCommon}
}

func TestCreateTemplate(t *testing.T) {
	userID := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{userID: {crewID}}}
	svc, _ := newTestService(members)
	ctx := context.Background()
	p := ownership.NewPrincipal(userID)

	t.Run("user owned", func(t *testing.T) {
		tmpl, err := svc.CreateTemplate(ctx, p, &CreateTemplateRequest{
			OwnerType: ownership.OwnerUser,
			Name:      "daily",
			Steps:     []string{"step"},
		})
		require.NoError(t, err)
		require.NotNil(t, tmpl.OwnerUserID)
		assert.Equal(t, userID, *tmpl.OwnerUserID)
	})

	t.Run("crew owned by member", func(t *testing.T) {
		tmpl, err := svc.CreateTemplate(ctx, p, &CreateTemplateRequest{
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			Name:        "weekly",
			Steps:       []string{"step"},
		})
		require.NoError(t, err)
		require.NotNil(t, tmpl.OwnerCrewID)
		assert.Equal(t, crewID, *tmpl.OwnerCrewID)
	})

	t.Run("crew owned by non-member", func(t *testing.T) {
		other := uuid.New()
		_, err := svc.CreateTemplate(ctx, ownership.NewPrincipal(other), &CreateTemplateRequest{
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			Name:        "nope",
			Steps:       []string{"step"},
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("common denied", func(t *testing.T) {
		_, err := svc.CreateTemplate(ctx, p, &CreateTemplateRequest{
			OwnerType: ownership.OwnerCommon,
			Name:      "shared",
			Steps:     []string{"step"},
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("anonymous denied", func(t *testing.T) {
		_, err := svc.CreateTemplate(ctx, ownership.Anonymous(), &CreateTemplateRequest{
			OwnerType: ownership.OwnerUser,
			Name:      "anon",
			Steps:     []string{"step"},
		})
		assert.Error(t, err)
	})
}

func TestListTemplates(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	crewID := uuid.New()
	otherCrew := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}}}
	svc, repo := newTestService(members)
	ctx := context.Background()

	common := seedTemplate(t, repo, commonRef(), "common")
	mine := seedTemplate(t, repo, userRef(alice), "mine")
	theirs := seedTemplate(t, repo, userRef(bob), "theirs")
	myCrew := seedTemplate(t, repo, crewRef(crewID), "my crew")
	foreignCrew := seedTemplate(t, repo, crewRef(otherCrew), "foreign crew")

	ids := func(templates []*Template) map[uuid.UUID]bool {
		m := make(map[uuid.UUID]bool, len(templates))
		for _, tmpl := range templates {
			m[tmpl.ID] = true
		}
		return m
	}

	t.Run("member sees common, own, and crew", func(t *testing.T) {
		got, total, err := svc.ListTemplates(ctx, ownership.NewPrincipal(alice), pagination.New())
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		visible := ids(got)
		assert.True(t, visible[common.ID])
		assert.True(t, visible[mine.ID])
		assert.True(t, visible[myCrew.ID])
		assert.False(t, visible[theirs.ID])
		assert.False(t, visible[foreignCrew.ID])
	})

	t.Run("anonymous sees common only", func(t *testing.T) {
		got, total, err := svc.ListTemplates(ctx, ownership.Anonymous(), pagination.New())
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.True(t, ids(got)[common.ID])
	})
}

func TestGetTemplate(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{}}
	svc, repo := newTestService(members)
	ctx := context.Background()

	private := seedTemplate(t, repo, userRef(alice), "private")
	common := seedTemplate(t, repo, commonRef(), "common")

	got, err := svc.GetTemplate(ctx, ownership.NewPrincipal(alice), private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	// Another user's private template reads as not found.
	_, err = svc.GetTemplate(ctx, ownership.NewPrincipal(bob), private.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	got, err = svc.GetTemplate(ctx, ownership.Anonymous(), common.ID)
	require.NoError(t, err)
	assert.Equal(t, common.ID, got.ID)
}

func TestUpdateTemplate(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{}}
	svc, repo := newTestService(members)
	ctx := context.Background()

	mine := seedTemplate(t, repo, userRef(alice), "mine")
	shared := seedTemplate(t, repo, commonRef(), "shared")

	name := "renamed"
	got, err := svc.UpdateTemplate(ctx, ownership.NewPrincipal(alice), mine.ID, &UpdateTemplateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	_, err = svc.UpdateTemplate(ctx, ownership.NewPrincipal(bob), mine.ID, &UpdateTemplateRequest{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// COMMON templates are read-only, even for authenticated users.
	_, err = svc.UpdateTemplate(ctx, ownership.NewPrincipal(alice), shared.ID, &UpdateTemplateRequest{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteTemplate(t *testing.T) {
	alice := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}}}
	svc, repo := newTestService(members)
	ctx := context.Background()

	crewTmpl := seedTemplate(t, repo, crewRef(crewID), "crew")

	// Any accepted member may delete a crew template.
	require.NoError(t, svc.DeleteTemplate(ctx, ownership.NewPrincipal(alice), crewTmpl.ID))
	_, err := repo.GetByID(ctx, crewTmpl.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	err = svc.DeleteTemplate(ctx, ownership.NewPrincipal(alice), uuid.New())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
