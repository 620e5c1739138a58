package retrospect

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/journey-app/server/internal/module/ai"
	"github.com/journey-app/server/internal/module/ownership"
	apperrors "github.com/journey-app/server/internal/shared/errors"
	"github.com/journey-app/server/internal/shared/events"
	"github.com/journey-app/server/internal/utils/pagination"
)

type fakeMemberships struct {
	accepted map[uuid.UUID][]uuid.UUID
	members  map[uuid.UUID][]uuid.UUID
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

func (f *fakeMemberships) AcceptedMemberIDs(_ context.Context, crewID uuid.UUID) ([]uuid.UUID, error) {
	return f.members[crewID], nil
}

type fakeLLM struct {
	summaryErr error
	received   []string
}

func (f *fakeLLM) GeneratePlan(context.Context, string) ([]string, error) {
	return nil, ai.ErrDisabled
}

func (f *fakeLLM) GenerateKPI(context.Context, string, []string) (string, map[string]string, error) {
	return "", nil, ai.ErrDisabled
}

func (f *fakeLLM) GenerateWeeklySummary(_ context.Context, retrospects []string) (*ai.WeeklySummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	f.received = retrospects
	kpi := 75
	return &ai.WeeklySummary{
		Summary:   map[string]any{"highlights": "steady progress"},
		WeeklyKPI: &kpi,
	}, nil
}

type fakeRepo struct {
	mu       sync.Mutex
	retros   map[uuid.UUID]*Retrospect
	analyses map[uuid.UUID]*WeeklyAnalysis
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		retros:   make(map[uuid.UUID]*Retrospect),
		analyses: make(map[uuid.UUID]*WeeklyAnalysis),
	}
}

func (r *fakeRepo) Create(_ context.Context, retro *Retrospect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *retro
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.retros[retro.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Retrospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	retro, ok := r.retros[id]
	if !ok {
		return nil, ErrRetrospectNotFound
	}
	cp := *retro
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, retro *Retrospect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.retros[retro.ID]; !ok {
		return ErrRetrospectNotFound
	}
	cp := *retro
	r.retros[retro.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.retros[id]; !ok {
		return ErrRetrospectNotFound
	}
	delete(r.retros, id)
	return nil
}

func (r *fakeRepo) ListVisible(_ context.Context, scope ownership.ReadScope, filter ListFilter, _ *pagination.Pagination) ([]*Retrospect, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*Retrospect
	for _, retro := range r.retros {
		if filter.ChallengeID != nil && retro.ChallengeID != *filter.ChallengeID {
			continue
		}
		if scope.CanRead(retro) {
			cp := *retro
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeRepo) ListByOwnerInRange(_ context.Context, ref ownership.OwnerRef, start, end time.Time) ([]*Retrospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*Retrospect
	for _, retro := range r.retros {
		if retro.OwnerType != ref.OwnerType {
			continue
		}
		switch ref.OwnerType {
		case ownership.OwnerUser:
			if retro.OwnerUserID == nil || ref.OwnerUserID == nil || *retro.OwnerUserID != *ref.OwnerUserID {
				continue
			}
		case ownership.OwnerCrew:
			if retro.OwnerCrewID == nil || ref.OwnerCrewID == nil || *retro.OwnerCrewID != *ref.OwnerCrewID {
				continue
			}
		}
		if retro.CreatedAt.Before(start) || !retro.CreatedAt.Before(end) {
			continue
		}
		cp := *retro
		result = append(result, &cp)
	}
	return result, nil
}

func (r *fakeRepo) CreateAnalysis(_ context.Context, a *WeeklyAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.analyses[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetAnalysis(_ context.Context, id uuid.UUID) (*WeeklyAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) ListAnalyses(_ context.Context, scope ownership.ReadScope, _ *pagination.Pagination) ([]*WeeklyAnalysis, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*WeeklyAnalysis
	for _, a := range r.analyses {
		if analysisReadable(scope, a) {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

type capturingHandler struct {
	mu     sync.Mutex
	events []events.Event
}

func (h *capturingHandler) Handles() []string {
	return []string{events.WeeklyAnalysisCompletedType}
}

func (h *capturingHandler) Handle(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func newTestService(members *fakeMemberships, llm ai.Client) (*Service, *fakeRepo, *capturingHandler) {
	if members == nil {
		members = &fakeMemberships{
			accepted: map[uuid.UUID][]uuid.UUID{},
			members:  map[uuid.UUID][]uuid.UUID{},
		}
	}
	if llm == nil {
		llm = ai.Disabled()
	}
	repo := newFakeRepo()
	bus := events.NewBus(zap.NewNop())
	captured := &capturingHandler{}
	bus.Register(captured)
	svc := NewService(repo, ownership.NewResolver(members), members, llm, bus, zap.NewNop())
	return svc, repo, captured
}

func userRef(userID uuid.UUID) ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerUser, OwnerUserID: &userID}
}

func crewRef(crewID uuid.UUID) ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerCrew, OwnerCrewID: &crewID}
}

func seedRetro(t *testing.T, repo *fakeRepo, ref ownership.OwnerRef, author uuid.UUID, visibility ownership.Visibility, content string, createdAt time.Time) *Retrospect {
	t.Helper()
	retro := &Retrospect{
		ID:          uuid.New(),
		ChallengeID: uuid.New(),
		AuthorID:    author,
		OwnerRef:    ref,
		Content:     content,
		Visibility:  visibility,
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), retro))
	return retro
}

func TestCreateRetrospect(t *testing.T) {
	alice := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{
		accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}},
		members:  map[uuid.UUID][]uuid.UUID{},
	}
	svc, _, _ := newTestService(members, nil)
	ctx := context.Background()
	p := ownership.NewPrincipal(alice)

	t.Run("user owned defaults private", func(t *testing.T) {
		retro, err := svc.CreateRetrospect(ctx, p, &CreateRetrospectRequest{
			ChallengeID: uuid.New(),
			OwnerType:   ownership.OwnerUser,
			Content:     "went well",
		})
		require.NoError(t, err)
		assert.Equal(t, ownership.VisibilityPrivate, retro.Visibility)
		assert.Equal(t, alice, retro.AuthorID)
	})

	t.Run("crew owned cannot be private", func(t *testing.T) {
		_, err := svc.CreateRetrospect(ctx, p, &CreateRetrospectRequest{
			ChallengeID: uuid.New(),
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			Content:     "crew note",
			Visibility:  ownership.VisibilityPrivate,
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("crew owned with crew visibility", func(t *testing.T) {
		retro, err := svc.CreateRetrospect(ctx, p, &CreateRetrospectRequest{
			ChallengeID: uuid.New(),
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			Content:     "crew note",
			Visibility:  ownership.VisibilityCrew,
		})
		require.NoError(t, err)
		assert.Equal(t, ownership.VisibilityCrew, retro.Visibility)
	})

	t.Run("non-member cannot write for crew", func(t *testing.T) {
		outsider := uuid.New()
		_, err := svc.CreateRetrospect(ctx, ownership.NewPrincipal(outsider), &CreateRetrospectRequest{
			ChallengeID: uuid.New(),
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			Content:     "nope",
			Visibility:  ownership.VisibilityCrew,
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		_, err := svc.CreateRetrospect(ctx, ownership.Anonymous(), &CreateRetrospectRequest{
			ChallengeID: uuid.New(),
			OwnerType:   ownership.OwnerUser,
			Content:     "anon",
		})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestVisibilityMatrix(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{
		accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}},
		members:  map[uuid.UUID][]uuid.UUID{},
	}
	svc, repo, _ := newTestService(members, nil)
	ctx := context.Background()
	now := time.Now()

	private := seedRetro(t, repo, userRef(alice), alice, ownership.VisibilityPrivate, "private", now)
	public := seedRetro(t, repo, userRef(bob), bob, ownership.VisibilityPublic, "public", now)
	crewOnly := seedRetro(t, repo, crewRef(crewID), alice, ownership.VisibilityCrew, "crew", now)

	ids := func(retros []*Retrospect) map[uuid.UUID]bool {
		m := make(map[uuid.UUID]bool, len(retros))
		for _, retro := range retros {
			m[retro.ID] = true
		}
		return m
	}

	t.Run("owner sees own private plus crew plus public", func(t *testing.T) {
		got, total, err := svc.ListRetrospects(ctx, ownership.NewPrincipal(alice), nil, pagination.New())
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		visible := ids(got)
		assert.True(t, visible[private.ID])
		assert.True(t, visible[public.ID])
		assert.True(t, visible[crewOnly.ID])
	})

	t.Run("non-member sees public only", func(t *testing.T) {
		got, _, err := svc.ListRetrospects(ctx, ownership.NewPrincipal(bob), nil, pagination.New())
		require.NoError(t, err)
		visible := ids(got)
		assert.True(t, visible[public.ID])
		assert.False(t, visible[private.ID])
		assert.False(t, visible[crewOnly.ID])
	})

	t.Run("anonymous sees public only", func(t *testing.T) {
		got, total, err := svc.ListRetrospects(ctx, ownership.Anonymous(), nil, pagination.New())
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.True(t, ids(got)[public.ID])
	})

	t.Run("user-owned crew visibility stays readable by its owner", func(t *testing.T) {
		retro := seedRetro(t, repo, userRef(bob), bob, ownership.VisibilityCrew, "mine", now)

		got, err := svc.GetRetrospect(ctx, ownership.NewPrincipal(bob), retro.ID)
		require.NoError(t, err)
		assert.Equal(t, retro.ID, got.ID)

		listed, _, err := svc.ListRetrospects(ctx, ownership.NewPrincipal(bob), nil, pagination.New())
		require.NoError(t, err)
		assert.True(t, ids(listed)[retro.ID])

		_, err = svc.GetRetrospect(ctx, ownership.NewPrincipal(alice), retro.ID)
		assert.ErrorIs(t, err, ErrRetrospectNotFound)

		require.NoError(t, repo.Delete(ctx, retro.ID))
	})

	t.Run("get hides unreadable", func(t *testing.T) {
		_, err := svc.GetRetrospect(ctx, ownership.NewPrincipal(bob), private.ID)
		assert.ErrorIs(t, err, ErrRetrospectNotFound)

		_, err = svc.GetRetrospect(ctx, ownership.Anonymous(), crewOnly.ID)
		assert.ErrorIs(t, err, ErrRetrospectNotFound)

		got, err := svc.GetRetrospect(ctx, ownership.Anonymous(), public.ID)
		require.NoError(t, err)
		assert.Equal(t, public.ID, got.ID)
	})
}

func TestUpdateRetrospect(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{
		accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}},
		members:  map[uuid.UUID][]uuid.UUID{},
	}
	svc, repo, _ := newTestService(members, nil)
	ctx := context.Background()

	mine := seedRetro(t, repo, userRef(alice), alice, ownership.VisibilityPrivate, "v1", time.Now())
	crewRetro := seedRetro(t, repo, crewRef(crewID), alice, ownership.VisibilityCrew, "crew", time.Now())

	t.Run("owner updates content and visibility", func(t *testing.T) {
		content := "v2"
		visibility := ownership.VisibilityPublic
		got, err := svc.UpdateRetrospect(ctx, ownership.NewPrincipal(alice), mine.ID, &UpdateRetrospectRequest{
			Content:    &content,
			Visibility: &visibility,
		})
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Content)
		assert.Equal(t, ownership.VisibilityPublic, got.Visibility)
	})

	t.Run("crew retrospect rejects private", func(t *testing.T) {
		private := ownership.VisibilityPrivate
		_, err := svc.UpdateRetrospect(ctx, ownership.NewPrincipal(alice), crewRetro.ID, &UpdateRetrospectRequest{
			Visibility: &private,
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		content := "hijack"
		_, err := svc.UpdateRetrospect(ctx, ownership.NewPrincipal(bob), mine.ID, &UpdateRetrospectRequest{
			Content: &content,
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestGenerateWeeklyAnalysis(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{
		accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}, bob: {crewID}},
		members:  map[uuid.UUID][]uuid.UUID{crewID: {alice, bob}},
	}

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	t.Run("user analysis", func(t *testing.T) {
		llm := &fakeLLM{}
		svc, repo, captured := newTestService(members, llm)
		seedRetro(t, repo, userRef(alice), alice, ownership.VisibilityPrivate, "day one", start.Add(24*time.Hour))
		seedRetro(t, repo, userRef(alice), alice, ownership.VisibilityPrivate, "day two", start.Add(48*time.Hour))
		// Outside the window.
		seedRetro(t, repo, userRef(alice), alice, ownership.VisibilityPrivate, "stale", start.Add(-24*time.Hour))

		analysis, err := svc.GenerateWeeklyAnalysis(context.Background(), ownership.NewPrincipal(alice), &GenerateAnalysisRequest{
			OwnerType: ownership.OwnerUser,
			StartDate: start,
			EndDate:   end,
		})
		require.NoError(t, err)
		assert.Len(t, llm.received, 2)
		assert.Equal(t, "steady progress", analysis.Summary["highlights"])
		require.NotNil(t, analysis.WeeklyKPI)
		assert.Equal(t, 75, *analysis.WeeklyKPI)

		require.Len(t, captured.events, 1)
		event := captured.events[0].(*events.WeeklyAnalysisCompletedEvent)
		assert.Equal(t, analysis.ID, event.AnalysisID)
		assert.Equal(t, []uuid.UUID{alice}, event.UserIDs)
	})

	t.Run("crew analysis notifies all members", func(t *testing.T) {
		svc, repo, captured := newTestService(members, &fakeLLM{})
		seedRetro(t, repo, crewRef(crewID), alice, ownership.VisibilityCrew, "crew week", start.Add(24*time.Hour))

		analysis, err := svc.GenerateWeeklyAnalysis(context.Background(), ownership.NewPrincipal(alice), &GenerateAnalysisRequest{
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			StartDate:   start,
			EndDate:     end,
		})
		require.NoError(t, err)

		require.Len(t, captured.events, 1)
		event := captured.events[0].(*events.WeeklyAnalysisCompletedEvent)
		assert.Equal(t, analysis.ID, event.AnalysisID)
		assert.ElementsMatch(t, []uuid.UUID{alice, bob}, event.UserIDs)
	})

	t.Run("empty period", func(t *testing.T) {
		svc, _, _ := newTestService(members, &fakeLLM{})
		_, err := svc.GenerateWeeklyAnalysis(context.Background(), ownership.NewPrincipal(alice), &GenerateAnalysisRequest{
			OwnerType: ownership.OwnerUser,
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, ErrNoRetrospects)
	})

	t.Run("llm failure fails the request", func(t *testing.T) {
		svc, repo, captured := newTestService(members, &fakeLLM{summaryErr: ai.ErrUnavailable})
		seedRetro(t, repo, userRef(alice), alice, ownership.VisibilityPrivate, "day", start.Add(24*time.Hour))

		_, err := svc.GenerateWeeklyAnalysis(context.Background(), ownership.NewPrincipal(alice), &GenerateAnalysisRequest{
			OwnerType: ownership.OwnerUser,
			StartDate: start,
			EndDate:   end,
		})
		assert.ErrorIs(t, err, ai.ErrUnavailable)
		assert.Empty(t, captured.events)
	})

	t.Run("invalid period", func(t *testing.T) {
		svc, _, _ := newTestService(members, &fakeLLM{})
		_, err := svc.GenerateWeeklyAnalysis(context.Background(), ownership.NewPrincipal(alice), &GenerateAnalysisRequest{
			OwnerType: ownership.OwnerUser,
			StartDate: end,
			EndDate:   start,
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestAnalysisVisibility(t *testing.T) {
	alice := uuid.New()
	outsider := uuid.New()
	members := &fakeMemberships{
		accepted: map[uuid.UUID][]uuid.UUID{},
		members:  map[uuid.UUID][]uuid.UUID{},
	}
	svc, repo, _ := newTestService(members, nil)
	ctx := context.Background()

	analysis := &WeeklyAnalysis{
		ID:        uuid.New(),
		OwnerRef:  userRef(alice),
		Summary:   map[string]any{"highlights": "x"},
		StartDate: time.Now().AddDate(0, 0, -7),
		EndDate:   time.Now(),
	}
	require.NoError(t, repo.CreateAnalysis(ctx, analysis))

	got, err := svc.GetAnalysis(ctx, ownership.NewPrincipal(alice), analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ID, got.ID)

	_, err = svc.GetAnalysis(ctx, ownership.NewPrincipal(outsider), analysis.ID)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)

	list, total, err := svc.ListAnalyses(ctx, ownership.NewPrincipal(alice), pagination.New())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
}
