package retrospect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/journey-app/server/internal/module/ai"
	"github.com/journey-app/server/internal/module/ownership"
	apperrors "github.com/journey-app/server/internal/shared/errors"
	"github.com/journey-app/server/internal/shared/events"
	"github.com/journey-app/server/internal/utils/pagination"
)

// CrewMembers is the crew view needed to fan out analysis notifications.
type CrewMembers interface {
	AcceptedMemberIDs(ctx context.Context, crewID uuid.UUID) ([]uuid.UUID, error)
}

// Service handles retrospects and weekly analyses.
type Service struct {
	repo     Repository
	resolver *ownership.Resolver
	members  CrewMembers
	llm      ai.Client
	bus      *events.Bus
	logger   *zap.Logger
}

// NewService creates a new retrospect service.
func NewService(
	repo Repository,
	resolver *ownership.Resolver,
	members CrewMembers,
	llm ai.Client,
	bus *events.Bus,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		members:  members,
		llm:      llm,
		bus:      bus,
		logger:   logger,
	}
}

// CreateRetrospect writes a retrospect against a challenge. CREW-owned
// retrospects cannot be PRIVATE.
func (s *Service) CreateRetrospect(ctx context.Context, p ownership.Principal, req *CreateRetrospectRequest) (*Retrospect, error) {
	if p.IsAnonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if req.OwnerType == ownership.OwnerCommon {
		return nil, apperrors.ValidationError("retrospects cannot be commonly owned")
	}

	ref, err := s.ownerRef(ctx, p, req.OwnerType, req.OwnerCrewID)
	if err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = ownership.VisibilityPrivate
	}
	if err := validateVisibility(ref.OwnerType, visibility); err != nil {
		return nil, err
	}

	retro := &Retrospect{
		ID:          uuid.New(),
		ChallengeID: req.ChallengeID,
		TemplateID:  req.TemplateID,
		AuthorID:    p.UserID,
		OwnerRef:    ref,
		Content:     req.Content,
		KPIResult:   req.KPIResult,
		Visibility:  visibility,
	}
	if err := s.repo.Create(ctx, retro); err != nil {
		return nil, fmt.Errorf("create retrospect: %w", err)
	}

	s.logger.Info("retrospect created",
		zap.String("retrospect_id", retro.ID.String()),
		zap.String("challenge_id", retro.ChallengeID.String()),
		zap.String("visibility", string(retro.Visibility)))
	return retro, nil
}

// GetRetrospect returns a retrospect if it is readable under the
// visibility rules. Unreadable retrospects are reported as not found.
func (s *Service) GetRetrospect(ctx context.Context, p ownership.Principal, id uuid.UUID) (*Retrospect, error) {
	retro, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if !scope.CanRead(retro) {
		return nil, ErrRetrospectNotFound
	}
	return retro, nil
}

// ListRetrospects returns the retrospects visible to the principal,
// optionally narrowed to one challenge.
func (s *Service) ListRetrospects(ctx context.Context, p ownership.Principal, challengeID *uuid.UUID, pg *pagination.Pagination) ([]*Retrospect, int64, error) {
	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListVisible(ctx, scope, ListFilter{ChallengeID: challengeID}, pg)
}

// UpdateRetrospect applies partial updates, revalidating the
// visibility rule on change.
func (s *Service) UpdateRetrospect(ctx context.Context, p ownership.Principal, id uuid.UUID, req *UpdateRetrospectRequest) (*Retrospect, error) {
	retro, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanWrite(ctx, p, retro); err != nil {
		return nil, err
	}

	if req.Content != nil {
		retro.Content = *req.Content
	}
	if req.KPIResult != nil {
		retro.KPIResult = req.KPIResult
	}
	if req.Visibility != nil {
		if err := validateVisibility(retro.OwnerType, *req.Visibility); err != nil {
			return nil, err
		}
		retro.Visibility = *req.Visibility
	}
	if err := s.repo.Update(ctx, retro); err != nil {
		return nil, fmt.Errorf("update retrospect: %w", err)
	}
	return retro, nil
}

// DeleteRetrospect removes a retrospect.
func (s *Service) DeleteRetrospect(ctx context.Context, p ownership.Principal, id uuid.UUID) error {
	retro, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resolver.CanWrite(ctx, p, retro); err != nil {
		return err
	}
	return s.repo.Delete(ctx, retro.ID)
}

// GenerateWeeklyAnalysis runs the LLM over the owner's retrospects in
// the given period, persists the digest, and publishes
// WeeklyAnalysisCompleted. Unlike challenge enrichment this is the
// operation itself, so LLM failure fails the request.
func (s *Service) GenerateWeeklyAnalysis(ctx context.Context, p ownership.Principal, req *GenerateAnalysisRequest) (*WeeklyAnalysis, error) {
	if p.IsAnonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if req.OwnerType == ownership.OwnerCommon {
		return nil, apperrors.ValidationError("analyses cannot be commonly owned")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.ValidationError("end_date must be after start_date")
	}

	ref, err := s.ownerRef(ctx, p, req.OwnerType, req.OwnerCrewID)
	if err != nil {
		return nil, err
	}

	retros, err := s.repo.ListByOwnerInRange(ctx, ref, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list retrospects in range: %w", err)
	}
	if len(retros) == 0 {
		return nil, ErrNoRetrospects
	}

	contents := make([]string, 0, len(retros))
	for _, retro := range retros {
		contents = append(contents, retro.Content)
	}

	summary, err := s.llm.GenerateWeeklySummary(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("generate weekly summary: %w", err)
	}

	analysis := &WeeklyAnalysis{
		ID:        uuid.New(),
		OwnerRef:  ref,
		Summary:   summary.Summary,
		WeeklyKPI: summary.WeeklyKPI,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.repo.CreateAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}

	s.publishCompleted(ctx, analysis)
	return analysis, nil
}

// GetAnalysis returns an analysis if the principal falls inside its
// owner scope.
func (s *Service) GetAnalysis(ctx context.Context, p ownership.Principal, id uuid.UUID) (*WeeklyAnalysis, error) {
	analysis, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if !analysisReadable(scope, analysis) {
		return nil, ErrAnalysisNotFound
	}
	return analysis, nil
}

// ListAnalyses returns the analyses visible to the principal.
func (s *Service) ListAnalyses(ctx context.Context, p ownership.Principal, pg *pagination.Pagination) ([]*WeeklyAnalysis, int64, error) {
	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListAnalyses(ctx, scope, pg)
}

// publishCompleted fans the completion event out to the analysis
// audience: the owning user, or every accepted member of the owning
// crew.
func (s *Service) publishCompleted(ctx context.Context, analysis *WeeklyAnalysis) {
	if s.bus == nil {
		return
	}

	var userIDs []uuid.UUID
	switch analysis.OwnerType {
	case ownership.OwnerUser:
		if analysis.OwnerUserID != nil {
			userIDs = []uuid.UUID{*analysis.OwnerUserID}
		}
	case ownership.OwnerCrew:
		if analysis.OwnerCrewID != nil && s.members != nil {
			ids, err := s.members.AcceptedMemberIDs(ctx, *analysis.OwnerCrewID)
			if err != nil {
				s.logger.Warn("list crew members for analysis event failed",
					zap.String("analysis_id", analysis.ID.String()),
					zap.Error(err))
			} else {
				userIDs = ids
			}
		}
	}

	s.bus.Publish(ctx, events.NewWeeklyAnalysisCompletedEvent(analysis.ID, userIDs, string(analysis.OwnerType)))
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

// validateVisibility rejects the one excluded combination: a CREW-owned
// retrospect cannot be PRIVATE.
func validateVisibility(ownerType ownership.OwnerType, v ownership.Visibility) error {
	if !v.IsValid() {
		return apperrors.ValidationError(fmt.Sprintf("invalid visibility: %s", v))
	}
	if ownerType == ownership.OwnerCrew && v == ownership.VisibilityPrivate {
		return apperrors.ValidationError("crew retrospects cannot be private")
	}
	return nil
}

// analysisReadable reports whether an analysis belongs to the scope's
// user or one of its crews.
func analysisReadable(scope ownership.ReadScope, a *WeeklyAnalysis) bool {
	switch a.OwnerType {
	case ownership.OwnerUser:
		return a.OwnerUserID != nil && !scope.IsAnonymous() && *a.OwnerUserID == scope.UserID
	case ownership.OwnerCrew:
		return a.OwnerCrewID != nil && scope.InCrew(*a.OwnerCrewID)
	}
	return false
}
