package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/journey-app/server/internal/module/ai"
	"github.com/journey-app/server/internal/module/ownership"
	apperrors "github.com/journey-app/server/internal/shared/errors"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Service handles challenges, plans, and participant results.
type Service struct {
	repo     Repository
	resolver *ownership.Resolver
	llm      ai.Client
	logger   *zap.Logger
}

// NewService creates a new challenge service.
func NewService(repo Repository, resolver *ownership.Resolver, llm ai.Client, logger *zap.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, llm: llm, logger: logger}
}

// CreateChallenge creates a challenge owned by a user or a crew. When
// the client supplies no plan, the LLM collaborator generates one; LLM
// failures are logged and the challenge is created without enrichment.
func (s *Service) CreateChallenge(ctx context.Context, p ownership.Principal, req *CreateChallengeRequest) (*Challenge, error) {
	if req.OwnerType == ownership.OwnerCommon {
		return nil, apperrors.ValidationError("challenges cannot be commonly owned")
	}

	ref, err := s.ownerRef(ctx, p, req.OwnerType, req.OwnerCrewID)
	if err != nil {
		return nil, err
	}

	ch := &Challenge{
		ID:          uuid.New(),
		OwnerRef:    ref,
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      StatusLive,
	}

	steps := req.PlanSteps
	if len(steps) == 0 {
		steps = s.generatePlan(ctx, req)
	}
	if len(steps) > 0 {
		plan := &Plan{ID: uuid.New(), Steps: steps}
		if err := s.repo.CreatePlan(ctx, plan); err != nil {
			return nil, fmt.Errorf("create plan: %w", err)
		}
		ch.PlanID = &plan.ID
		ch.Plan = plan

		s.generateKPI(ctx, ch, steps)
	}

	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}

	s.logger.Info("challenge created",
		zap.String("challenge_id", ch.ID.String()),
		zap.String("owner_type", string(ch.OwnerType)),
		zap.Bool("has_plan", ch.PlanID != nil))
	return ch, nil
}

// GetChallenge returns a challenge if it is readable by the principal.
// Unreadable challenges are reported as not found.
func (s *Service) GetChallenge(ctx context.Context, p ownership.Principal, id uuid.UUID) (*Challenge, error) {
	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadable(ctx, p, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// ListChallenges returns the challenges visible to the principal. The
// status filter is lenient: unrecognized values are ignored rather than
// rejected.
func (s *Service) ListChallenges(ctx context.Context, p ownership.Principal, statusFilter string, pg *pagination.Pagination) ([]*Challenge, int64, error) {
	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	var filter ListFilter
	if status := ChallengeStatus(statusFilter); status.IsValid() {
		filter.Status = &status
	}
	return s.repo.ListVisible(ctx, scope, filter, pg)
}

// UpdateChallenge applies partial updates. The owner reference is
// immutable.
func (s *Service) UpdateChallenge(ctx context.Context, p ownership.Principal, id uuid.UUID, req *UpdateChallengeRequest) (*Challenge, error) {
	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanWrite(ctx, p, ch); err != nil {
		return nil, err
	}

	if req.Name != nil {
		ch.Name = *req.Name
	}
	if req.Description != nil {
		ch.Description = *req.Description
	}
	if req.Deadline != nil {
		ch.Deadline = *req.Deadline
	}
	if err := s.repo.Update(ctx, ch); err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}
	return ch, nil
}

// UpdateStatus overwrites the challenge status. Any valid status may
// replace any other; there is no transition graph.
func (s *Service) UpdateStatus(ctx context.Context, p ownership.Principal, id uuid.UUID, status string) (*Challenge, error) {
	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanWrite(ctx, p, ch); err != nil {
		return nil, err
	}

	next := ChallengeStatus(status)
	if !next.IsValid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid status: %s", status))
	}

	ch.Status = next
	if err := s.repo.Update(ctx, ch); err != nil {
		return nil, fmt.Errorf("update challenge status: %w", err)
	}

	s.logger.Info("challenge status updated",
		zap.String("challenge_id", ch.ID.String()),
		zap.String("status", string(next)))
	return ch, nil
}

// DeleteChallenge removes a challenge and its participant results.
func (s *Service) DeleteChallenge(ctx context.Context, p ownership.Principal, id uuid.UUID) error {
	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resolver.CanWrite(ctx, p, ch); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ch.ID)
}

// SetMyStatus records the principal's personal result on a readable
// challenge.
func (s *Service) SetMyStatus(ctx context.Context, p ownership.Principal, challengeID uuid.UUID, status string) (*UserChallengeStatus, error) {
	if p.IsAnonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}

	ch, err := s.repo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadable(ctx, p, ch); err != nil {
		return nil, err
	}

	next := AchievementStatus(status)
	if !next.IsValid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid status: %s", status))
	}

	record := &UserChallengeStatus{
		ID:          uuid.New(),
		UserID:      p.UserID,
		ChallengeID: challengeID,
		Status:      next,
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.UpsertUserStatus(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert user status: %w", err)
	}
	return record, nil
}

// MyStatus returns the principal's personal result, defaulting to
// PENDING when none has been recorded yet.
func (s *Service) MyStatus(ctx context.Context, p ownership.Principal, challengeID uuid.UUID) (*UserChallengeStatus, error) {
	if p.IsAnonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}

	ch, err := s.repo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadable(ctx, p, ch); err != nil {
		return nil, err
	}

	record, err := s.repo.GetUserStatus(ctx, p.UserID, challengeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &UserChallengeStatus{
			UserID:      p.UserID,
			ChallengeID: challengeID,
			Status:      AchievementPending,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user status: %w", err)
	}
	return record, nil
}

// ListAchievements returns all participant results on a readable
// challenge.
func (s *Service) ListAchievements(ctx context.Context, p ownership.Principal, challengeID uuid.UUID) ([]*UserChallengeStatus, error) {
	ch, err := s.repo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if err := s.requireReadable(ctx, p, ch); err != nil {
		return nil, err
	}
	return s.repo.ListUserStatuses(ctx, challengeID)
}

// generatePlan asks the LLM for plan steps. Failures are non-fatal.
func (s *Service) generatePlan(ctx context.Context, req *CreateChallengeRequest) []string {
	description := req.Description
	if description == "" {
		description = req.Name
	}
	steps, err := s.llm.GeneratePlan(ctx, description)
	if err != nil {
		if !errors.Is(err, ai.ErrDisabled) {
			s.logger.Warn("plan generation failed", zap.Error(err))
		}
		return nil
	}
	return steps
}

// generateKPI asks the LLM for KPI enrichment. Failures are non-fatal.
func (s *Service) generateKPI(ctx context.Context, ch *Challenge, steps []string) {
	description, metrics, err := s.llm.GenerateKPI(ctx, ch.Name, steps)
	if err != nil {
		if !errors.Is(err, ai.ErrDisabled) {
			s.logger.Warn("kpi generation failed",
				zap.String("challenge_id", ch.ID.String()),
				zap.Error(err))
		}
		return
	}
	ch.KPIDescription = description
	ch.KPIMetrics = metrics
}

// ownerRef validates owner fields and builds the reference.
func (s *Service) ownerRef(ctx context.Context, p ownership.Principal, ownerType ownership.OwnerType, crewID *uuid.UUID) (ownership.OwnerRef, error) {
	var userID *uuid.UUID
	if ownerType == ownership.OwnerUser {
		userID = &p.UserID
	}
	if err := s.resolver.ValidateOwnerFields(ctx, p, ownerType, userID, crewID); err != nil {
		return ownership.OwnerRef{}, err
	}
	return ownership.OwnerRef{
		OwnerType:   ownerType,
		OwnerUserID: userID,
		OwnerCrewID: crewID,
	}, nil
}

// requireReadable hides challenges outside the principal's scope as not
// found. USER challenges are readable by their owner, CREW challenges
// by accepted members.
func (s *Service) requireReadable(ctx context.Context, p ownership.Principal, ch *Challenge) error {
	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return err
	}

	switch ch.OwnerType {
	case ownership.OwnerUser:
		if ch.OwnerUserID != nil && !scope.IsAnonymous() && *ch.OwnerUserID == scope.UserID {
			return nil
		}
	case ownership.OwnerCrew:
		if ch.OwnerCrewID != nil && scope.InCrew(*ch.OwnerCrewID) {
			return nil
		}
	}
	return ErrChallengeNotFound
}
