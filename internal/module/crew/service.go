package crew

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/journey-app/server/internal/shared/events"
	"github.com/journey-app/server/internal/shared/metrics"
)

// Service provides crew and membership business logic.
type Service struct {
	repo    Repository
	bus     *events.Bus
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a new crew service.
func NewService(repo Repository, bus *events.Bus, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		bus:     bus,
		metrics: m,
		logger:  logger,
	}
}

// ========== Crew Operations ==========

// CreateCrew creates a crew with the creator as its first ACCEPTED member.
func (s *Service) CreateCrew(ctx context.Context, creatorID uuid.UUID, req *CreateCrewRequest) (*Crew, error) {
	existing, err := s.repo.GetCrewByName(ctx, req.Name)
	if err != nil && !errors.Is(err, ErrCrewNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCrewNameTaken
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)

	crew := &Crew{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		MemberCount: 1,
	}
	if err := txRepo.CreateCrew(ctx, crew); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCrewNameTaken
		}
		return nil, err
	}

	membership := &Membership{
		ID:       uuid.New(),
		UserID:   creatorID,
		CrewID:   crew.ID,
		Role:     RoleCreator,
		Status:   StatusAccepted,
		JoinedAt: time.Now(),
	}
	if err := txRepo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.logger.Info("crew created",
		zap.String("crew_id", crew.ID.String()),
		zap.String("creator_id", creatorID.String()),
		zap.String("name", crew.Name),
	)

	s.recordMembership("join")
	s.setMemberGauge(crew.ID, 1)
	s.publish(ctx, events.NewMembershipAcceptedEvent(creatorID, crew.ID, crew.Name, string(RoleCreator)))

	return crew, nil
}

// GetCrew retrieves a crew by ID.
func (s *Service) GetCrew(ctx context.Context, id uuid.UUID) (*Crew, error) {
	return s.repo.GetCrewByID(ctx, id)
}

// ListCrews lists crews with pagination.
func (s *Service) ListCrews(ctx context.Context, limit, offset int) ([]*Crew, int64, error) {
	return s.repo.ListCrews(ctx, limit, offset)
}

// MyCrews lists the crews where the user holds an ACCEPTED membership.
func (s *Service) MyCrews(ctx context.Context, userID uuid.UUID) ([]*Crew, error) {
	return s.repo.ListCrewsByMember(ctx, userID)
}

// UpdateCrew updates a crew. CREATOR only.
func (s *Service) UpdateCrew(ctx context.Context, actorID, crewID uuid.UUID, req *UpdateCrewRequest) (*Crew, error) {
	if err := s.requireCreator(ctx, actorID, crewID); err != nil {
		return nil, err
	}

	crew, err := s.repo.GetCrewByID(ctx, crewID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != crew.Name {
		existing, err := s.repo.GetCrewByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, ErrCrewNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrCrewNameTaken
		}
		crew.Name = *req.Name
	}
	if req.Description != nil {
		crew.Description = *req.Description
	}
	if req.ImageURL != nil {
		crew.ImageURL = *req.ImageURL
	}

	if err := s.repo.UpdateCrew(ctx, crew); err != nil {
		return nil, err
	}
	return crew, nil
}

// DeleteCrew deletes a crew and its memberships. CREATOR only.
func (s *Service) DeleteCrew(ctx context.Context, actorID, crewID uuid.UUID) error {
	if err := s.requireCreator(ctx, actorID, crewID); err != nil {
		return err
	}

	if err := s.repo.DeleteCrew(ctx, crewID); err != nil {
		return err
	}

	s.logger.Info("crew deleted",
		zap.String("crew_id", crewID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// ========== Membership Ledger ==========

// RequestJoin creates a PENDING membership. Conflict if any membership
// already exists for the pair, regardless of status. The provisional
// CREATOR role (no membership of any status yet) is re-validated at
// acceptance time.
func (s *Service) RequestJoin(ctx context.Context, userID, crewID uuid.UUID) (*Membership, error) {
	if _, err := s.repo.GetCrewByID(ctx, crewID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMembership(ctx, userID, crewID)
	if err != nil && !errors.Is(err, ErrMembershipNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMembershipExists
	}

	total, err := s.repo.CountMemberships(ctx, crewID)
	if err != nil {
		return nil, err
	}
	role := RoleParticipant
	if total == 0 {
		role = RoleCreator
	}

	membership := &Membership{
		ID:     uuid.New(),
		UserID: userID,
		CrewID: crewID,
		Role:   role,
		Status: StatusPending,
	}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrMembershipExists
		}
		return nil, err
	}

	s.recordMembership("request_join")
	return membership, nil
}

// Join transitions the target's membership to ACCEPTED. When actor and
// target differ this is an approval and requires the actor to hold the
// crew's CREATOR role. State matrix: absent creates ACCEPTED, PENDING
// is accepted in place, ACCEPTED is a Conflict, REJECTED is Forbidden.
//
// The first-accepted-member-becomes-CREATOR decision and the
// member_count refresh run inside one transaction holding the crew's
// row lock, so two concurrent joins can never both claim CREATOR.
func (s *Service) Join(ctx context.Context, actorID, targetID, crewID uuid.UUID) (*Membership, error) {
	if actorID != targetID {
		if err := s.requireCreator(ctx, actorID, crewID); err != nil {
			return nil, err
		}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)

	crew, err := txRepo.GetCrewForUpdate(ctx, crewID)
	if err != nil {
		return nil, err
	}

	membership, err := txRepo.GetMembership(ctx, targetID, crewID)
	if err != nil && !errors.Is(err, ErrMembershipNotFound) {
		return nil, err
	}

	if membership != nil {
		switch membership.Status {
		case StatusAccepted:
			return nil, ErrAlreadyMember
		case StatusRejected:
			return nil, ErrJoinRejected
		}
	}

	// Role is decided strictly by the absence of any other ACCEPTED
	// membership at this instant, under the crew lock.
	accepted, err := txRepo.CountAccepted(ctx, crewID)
	if err != nil {
		return nil, err
	}
	role := RoleParticipant
	if accepted == 0 {
		role = RoleCreator
	}

	now := time.Now()
	if membership == nil {
		membership = &Membership{
			ID:       uuid.New(),
			UserID:   targetID,
			CrewID:   crewID,
			Role:     role,
			Status:   StatusAccepted,
			JoinedAt: now,
		}
		if err := txRepo.CreateMembership(ctx, membership); err != nil {
			return nil, err
		}
	} else {
		membership.Status = StatusAccepted
		membership.Role = role
		membership.JoinedAt = now
		if err := txRepo.UpdateMembership(ctx, membership); err != nil {
			return nil, err
		}
	}

	// Always recomputed from the ledger, never incremented.
	count, err := txRepo.CountAccepted(ctx, crewID)
	if err != nil {
		return nil, err
	}
	if err := txRepo.SetMemberCount(ctx, crewID, count); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	s.logger.Info("membership accepted",
		zap.String("crew_id", crewID.String()),
		zap.String("user_id", targetID.String()),
		zap.String("role", string(membership.Role)),
		zap.Int64("member_count", count),
	)

	if actorID == targetID {
		s.recordMembership("join")
	} else {
		s.recordMembership("accept")
	}
	s.setMemberGauge(crewID, count)
	s.publish(ctx, events.NewMembershipAcceptedEvent(targetID, crewID, crew.Name, string(membership.Role)))

	return membership, nil
}

// Reject marks the target's PENDING membership as REJECTED. CREATOR
// only. member_count is unchanged, a pending request was never counted.
func (s *Service) Reject(ctx context.Context, actorID, targetID, crewID uuid.UUID) (*Membership, error) {
	if err := s.requireCreator(ctx, actorID, crewID); err != nil {
		return nil, err
	}

	crew, err := s.repo.GetCrewByID(ctx, crewID)
	if err != nil {
		return nil, err
	}

	membership, err := s.repo.GetMembership(ctx, targetID, crewID)
	if err != nil {
		return nil, err
	}
	if !membership.IsPending() {
		return nil, ErrNotPending
	}

	membership.Status = StatusRejected
	if err := s.repo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.Info("membership rejected",
		zap.String("crew_id", crewID.String()),
		zap.String("user_id", targetID.String()),
	)

	s.recordMembership("reject")
	s.publish(ctx, events.NewMembershipRejectedEvent(targetID, crewID, crew.Name))

	return membership, nil
}

// Leave deletes the user's membership and recomputes member_count.
func (s *Service) Leave(ctx context.Context, userID, crewID uuid.UUID) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)

	if _, err := txRepo.GetCrewForUpdate(ctx, crewID); err != nil {
		return err
	}

	if err := txRepo.DeleteMembership(ctx, userID, crewID); err != nil {
		return err
	}

	count, err := txRepo.CountAccepted(ctx, crewID)
	if err != nil {
		return err
	}
	if err := txRepo.SetMemberCount(ctx, crewID, count); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	s.logger.Info("member left",
		zap.String("crew_id", crewID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("member_count", count),
	)

	s.recordMembership("leave")
	s.setMemberGauge(crewID, count)
	return nil
}

// ListMembers lists ACCEPTED memberships ordered by join time.
func (s *Service) ListMembers(ctx context.Context, crewID uuid.UUID) ([]*Membership, error) {
	if _, err := s.repo.GetCrewByID(ctx, crewID); err != nil {
		return nil, err
	}
	return s.repo.ListAcceptedMembers(ctx, crewID)
}

// GetMembership returns the membership for (user, crew), any status.
func (s *Service) GetMembership(ctx context.Context, userID, crewID uuid.UUID) (*Membership, error) {
	return s.repo.GetMembership(ctx, userID, crewID)
}

// ========== Ledger views for the ownership resolver ==========

// IsAcceptedMember reports whether the user is an ACCEPTED member.
func (s *Service) IsAcceptedMember(ctx context.Context, userID, crewID uuid.UUID) (bool, error) {
	m, err := s.repo.GetMembership(ctx, userID, crewID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.IsAccepted(), nil
}

// HasCreatorRole reports whether the user is the ACCEPTED CREATOR.
func (s *Service) HasCreatorRole(ctx context.Context, userID, crewID uuid.UUID) (bool, error) {
	m, err := s.repo.GetMembership(ctx, userID, crewID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.IsAccepted() && m.IsCreator(), nil
}

// AcceptedCrewIDs returns the crews where the user is an ACCEPTED member.
func (s *Service) AcceptedCrewIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.AcceptedCrewIDs(ctx, userID)
}

// AcceptedMemberIDs returns the user IDs of all ACCEPTED members of a
// crew, in join order.
func (s *Service) AcceptedMemberIDs(ctx context.Context, crewID uuid.UUID) ([]uuid.UUID, error) {
	members, err := s.repo.ListAcceptedMembers(ctx, crewID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// ========== helpers ==========

func (s *Service) requireCreator(ctx context.Context, actorID, crewID uuid.UUID) error {
	creator, err := s.HasCreatorRole(ctx, actorID, crewID)
	if err != nil {
		return err
	}
	if !creator {
		return ErrCreatorOnly
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func (s *Service) recordMembership(event string) {
	if s.metrics != nil {
		s.metrics.RecordMembershipEvent(event)
	}
}

func (s *Service) setMemberGauge(crewID uuid.UUID, count int64) {
	if s.metrics != nil {
		s.metrics.CrewMembers.WithLabelValues(crewID.String()).Set(float64(count))
	}
}

// isUniqueViolation detects a unique constraint violation from postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value")
}
