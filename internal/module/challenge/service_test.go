package challenge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/journey-app/server/internal/module/ai"
	"github.com/journey-app/server/internal/module/ownership"
	apperrors "github.com/journey-app/server/internal/shared/errors"
	"github.com/journey-app/server/internal/utils/pagination"
)

type fakeMemberships struct {
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

type fakeLLM struct {
	planErr error
	kpiErr  error
	steps   []string
}

func (f *fakeLLM) GeneratePlan(context.Context, string) ([]string, error) {
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.steps, nil
}

func (f *fakeLLM) GenerateKPI(context.Context, string, []string) (string, map[string]string, error) {
	if f.kpiErr != nil {
		return "", nil, f.kpiErr
	}
	return "complete every step", map[string]string{"completion_rate": "steps done / total"}, nil
}

func (f *fakeLLM) GenerateWeeklySummary(context.Context, []string) (*ai.WeeklySummary, error) {
	return nil, ai.ErrDisabled
}

type fakeRepo struct {
	mu         sync.Mutex
	plans      map[uuid.UUID]*Plan
	challenges map[uuid.UUID]*Challenge
	statuses   map[uuid.UUID]*UserChallengeStatus
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		plans:      make(map[uuid.UUID]*Plan),
		challenges: make(map[uuid.UUID]*Challenge),
		statuses:   make(map[uuid.UUID]*UserChallengeStatus),
	}
}

func (r *fakeRepo) CreatePlan(_ context.Context, plan *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *fakeRepo) Create(_ context.Context, ch *Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ch
	r.challenges[ch.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, ch *Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.challenges[ch.ID]; !ok {
		return ErrChallengeNotFound
	}
	cp := *ch
	r.challenges[ch.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.challenges[id]; !ok {
		return ErrChallengeNotFound
	}
	delete(r.challenges, id)
	for sid, status := range r.statuses {
		if status.ChallengeID == id {
			delete(r.statuses, sid)
		}
	}
	return nil
}

func (r *fakeRepo) ListVisible(_ context.Context, scope ownership.ReadScope, filter ListFilter, _ *pagination.Pagination) ([]*Challenge, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scope.IsAnonymous() {
		return nil, 0, nil
	}

	var result []*Challenge
	for _, ch := range r.challenges {
		visible := false
		switch ch.OwnerType {
		case ownership.OwnerUser:
			visible = ch.OwnerUserID != nil && *ch.OwnerUserID == scope.UserID
		case ownership.OwnerCrew:
			visible = ch.OwnerCrewID != nil && scope.InCrew(*ch.OwnerCrewID)
		}
		if visible && (filter.Status == nil || ch.Status == *filter.Status) {
			cp := *ch
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeRepo) UpsertUserStatus(_ context.Context, status *UserChallengeStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.statuses {
		if existing.UserID == status.UserID && existing.ChallengeID == status.ChallengeID {
			existing.Status = status.Status
			existing.UpdatedAt = status.UpdatedAt
			return nil
		}
	}
	cp := *status
	r.statuses[status.ID] = &cp
	return nil
}

func (r *fakeRepo) GetUserStatus(_ context.Context, userID, challengeID uuid.UUID) (*UserChallengeStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, status := range r.statuses {
		if status.UserID == userID && status.ChallengeID == challengeID {
			cp := *status
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListUserStatuses(_ context.Context, challengeID uuid.UUID) ([]*UserChallengeStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*UserChallengeStatus
	for _, status := range r.statuses {
		if status.ChallengeID == challengeID {
			cp := *status
			result = append(result, &cp)
		}
	}
	return result, nil
}

func newTestService(members *fakeMemberships, llm ai.Client) (*Service, *fakeRepo) {
	if members == nil {
		members = &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{}}
	}
	if llm == nil {
		llm = ai.Disabled()
	}
	repo := newFakeRepo()
	svc := NewService(repo, ownership.NewResolver(members), llm, zap.NewNop())
	return svc, repo
}

func deadline() time.Time {
	return time.Now().Add(30 * 24 * time.Hour)
}

func TestCreateChallenge(t *testing.T) {
	userID := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{userID: {crewID}}}
	ctx := context.Background()
	p := ownership.NewPrincipal(userID)

	t.Run("user owned with llm enrichment", func(t *testing.T) {
		svc, _ := newTestService(members, &fakeLLM{steps: []string{"stretch", "run"}})
		ch, err := svc.CreateChallenge(ctx, p, &CreateChallengeRequest{
			OwnerType: ownership.OwnerUser,
			Name:      "run a 10k",
			Deadline:  deadline(),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusLive, ch.Status)
		require.NotNil(t, ch.Plan)
		assert.Equal(t, []string{"stretch", "run"}, []string(ch.Plan.Steps))
		assert.Equal(t, "complete every step", ch.KPIDescription)
		assert.Contains(t, ch.KPIMetrics, "completion_rate")
	})

	t.Run("llm failure is non-fatal", func(t *testing.T) {
		svc, _ := newTestService(members, &fakeLLM{planErr: errors.New("upstream down")})
		ch, err := svc.CreateChallenge(ctx, p, &CreateChallengeRequest{
			OwnerType: ownership.OwnerUser,
			Name:      "read more",
			Deadline:  deadline(),
		})
		require.NoError(t, err)
		assert.Nil(t, ch.Plan)
		assert.Empty(t, ch.KPIDescription)
	})

	t.Run("client supplied plan skips generation", func(t *testing.T) {
		svc, _ := newTestService(members, &fakeLLM{planErr: errors.New("should not be called")})
		ch, err := svc.CreateChallenge(ctx, p, &CreateChallengeRequest{
			OwnerType: ownership.OwnerUser,
			Name:      "meditate",
			Deadline:  deadline(),
			PlanSteps: []string{"sit down", "breathe"},
		})
		require.NoError(t, err)
		require.NotNil(t, ch.Plan)
		assert.Equal(t, []string{"sit down", "breathe"}, []string(ch.Plan.Steps))
	})

	t.Run("crew owned by non-member", func(t *testing.T) {
		svc, _ := newTestService(members, nil)
		other := uuid.New()
		_, err := svc.CreateChallenge(ctx, ownership.NewPrincipal(other), &CreateChallengeRequest{
			OwnerType:   ownership.OwnerCrew,
			OwnerCrewID: &crewID,
			Name:        "crew goal",
			Deadline:    deadline(),
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("common ownership rejected", func(t *testing.T) {
		svc, _ := newTestService(members, nil)
		_, err := svc.CreateChallenge(ctx, p, &CreateChallengeRequest{
			OwnerType: ownership.OwnerCommon,
			Name:      "shared goal",
			Deadline:  deadline(),
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func seedChallenge(t *testing.T, repo *fakeRepo, ref ownership.OwnerRef, name string, status ChallengeStatus) *Challenge {
	t.Helper()
	ch := &Challenge{
		ID:       uuid.New(),
		OwnerRef: ref,
		Name:     name,
		Deadline: deadline(),
		Status:   status,
	}
	require.NoError(t, repo.Create(context.Background(), ch))
	return ch
}

func userRef(userID uuid.UUID) ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerUser, OwnerUserID: &userID}
}

func crewRef(crewID uuid.UUID) ownership.OwnerRef {
	return ownership.OwnerRef{OwnerType: ownership.OwnerCrew, OwnerCrewID: &crewID}
}

func TestUpdateStatus(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	svc, repo := newTestService(&fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{}}, nil)
	ctx := context.Background()

	ch := seedChallenge(t, repo, userRef(alice), "run", StatusLive)

	t.Run("owner overwrites", func(t *testing.T) {
		got, err := svc.UpdateStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "SUCCESS")
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, got.Status)
	})

	t.Run("finished challenge may reopen", func(t *testing.T) {
		got, err := svc.UpdateStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "LIVE")
		require.NoError(t, err)
		assert.Equal(t, StatusLive, got.Status)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "DONE")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, ownership.NewPrincipal(bob), ch.ID, "FAIL")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, ownership.Anonymous(), ch.ID, "FAIL")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestListChallenges(t *testing.T) {
	alice := uuid.New()
	crewID := uuid.New()
	otherCrew := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}}}
	svc, repo := newTestService(members, nil)
	ctx := context.Background()

	mine := seedChallenge(t, repo, userRef(alice), "mine", StatusLive)
	done := seedChallenge(t, repo, userRef(alice), "done", StatusSuccess)
	crewCh := seedChallenge(t, repo, crewRef(crewID), "crew", StatusLive)
	seedChallenge(t, repo, crewRef(otherCrew), "foreign", StatusLive)

	ids := func(challenges []*Challenge) map[uuid.UUID]bool {
		m := make(map[uuid.UUID]bool, len(challenges))
		for _, ch := range challenges {
			m[ch.ID] = true
		}
		return m
	}

	t.Run("no filter", func(t *testing.T) {
		got, total, err := svc.ListChallenges(ctx, ownership.NewPrincipal(alice), "", pagination.New())
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		visible := ids(got)
		assert.True(t, visible[mine.ID])
		assert.True(t, visible[done.ID])
		assert.True(t, visible[crewCh.ID])
	})

	t.Run("status filter", func(t *testing.T) {
		got, _, err := svc.ListChallenges(ctx, ownership.NewPrincipal(alice), "SUCCESS", pagination.New())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, done.ID, got[0].ID)
	})

	t.Run("unrecognized filter ignored", func(t *testing.T) {
		_, total, err := svc.ListChallenges(ctx, ownership.NewPrincipal(alice), "BOGUS", pagination.New())
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("anonymous sees nothing", func(t *testing.T) {
		got, total, err := svc.ListChallenges(ctx, ownership.Anonymous(), "", pagination.New())
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, total)
	})
}

func TestGetChallengeVisibility(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}, bob: {crewID}}}
	svc, repo := newTestService(members, nil)
	ctx := context.Background()

	private := seedChallenge(t, repo, userRef(alice), "private", StatusLive)
	crewCh := seedChallenge(t, repo, crewRef(crewID), "crew", StatusLive)

	_, err := svc.GetChallenge(ctx, ownership.NewPrincipal(alice), private.ID)
	require.NoError(t, err)

	// Another user's personal challenge reads as not found.
	_, err = svc.GetChallenge(ctx, ownership.NewPrincipal(bob), private.ID)
	assert.ErrorIs(t, err, ErrChallengeNotFound)

	// Fellow crew members see crew challenges.
	_, err = svc.GetChallenge(ctx, ownership.NewPrincipal(bob), crewCh.ID)
	require.NoError(t, err)
}

func TestMyStatus(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	crewID := uuid.New()
	members := &fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{alice: {crewID}, bob: {crewID}}}
	svc, repo := newTestService(members, nil)
	ctx := context.Background()

	ch := seedChallenge(t, repo, crewRef(crewID), "crew goal", StatusLive)

	t.Run("defaults to pending", func(t *testing.T) {
		record, err := svc.MyStatus(ctx, ownership.NewPrincipal(alice), ch.ID)
		require.NoError(t, err)
		assert.Equal(t, AchievementPending, record.Status)
	})

	t.Run("set and read back", func(t *testing.T) {
		record, err := svc.SetMyStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "ACHIEVED")
		require.NoError(t, err)
		assert.Equal(t, AchievementAchieved, record.Status)

		got, err := svc.MyStatus(ctx, ownership.NewPrincipal(alice), ch.ID)
		require.NoError(t, err)
		assert.Equal(t, AchievementAchieved, got.Status)
	})

	t.Run("overwrite", func(t *testing.T) {
		_, err := svc.SetMyStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "FAILED")
		require.NoError(t, err)
		got, err := svc.MyStatus(ctx, ownership.NewPrincipal(alice), ch.ID)
		require.NoError(t, err)
		assert.Equal(t, AchievementFailed, got.Status)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := svc.SetMyStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "WON")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("non-member cannot record", func(t *testing.T) {
		outsider := uuid.New()
		_, err := svc.SetMyStatus(ctx, ownership.NewPrincipal(outsider), ch.ID, "ACHIEVED")
		assert.ErrorIs(t, err, ErrChallengeNotFound)
	})

	t.Run("achievements listing", func(t *testing.T) {
		_, err := svc.SetMyStatus(ctx, ownership.NewPrincipal(bob), ch.ID, "ACHIEVED")
		require.NoError(t, err)

		records, err := svc.ListAchievements(ctx, ownership.NewPrincipal(alice), ch.ID)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestDeleteChallenge(t *testing.T) {
	alice := uuid.New()
	svc, repo := newTestService(&fakeMemberships{accepted: map[uuid.UUID][]uuid.UUID{}}, nil)
	ctx := context.Background()

	ch := seedChallenge(t, repo, userRef(alice), "temp", StatusLive)
	_, err := svc.SetMyStatus(ctx, ownership.NewPrincipal(alice), ch.ID, "ACHIEVED")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChallenge(ctx, ownership.NewPrincipal(alice), ch.ID))
	_, err = repo.GetByID(ctx, ch.ID)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.Empty(t, repo.statuses)
}
