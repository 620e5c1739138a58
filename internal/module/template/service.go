package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/journey-app/server/internal/module/ownership"
	apperrors "github.com/journey-app/server/internal/shared/errors"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Service handles retrospective templates.
type Service struct {
	repo     Repository
	resolver *ownership.Resolver
	logger   *zap.Logger
}

// NewService creates a new template service.
func NewService(repo Repository, resolver *ownership.Resolver, logger *zap.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// CreateTemplate creates a user- or crew-owned template. COMMON templates
// are seeded, not created through the API.
func (s *Service) CreateTemplate(ctx context.Context, p ownership.Principal, req *CreateTemplateRequest) (*Template, error) {
	if req.OwnerType == ownership.OwnerCommon {
		return nil, apperrors.Forbidden("shared templates are read-only")
	}

	ref, err := s.ownerRef(ctx, p, req.OwnerType, req.OwnerCrewID)
	if err != nil {
		return nil, err
	}

	t := &Template{
		ID:          uuid.New(),
		OwnerRef:    ref,
		Name:        req.Name,
		Description: req.Description,
		Steps:       req.Steps,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logger.Info("template created",
		zap.String("template_id", t.ID.String()),
		zap.String("owner_type", string(t.OwnerType)))
	return t, nil
}

// GetTemplate returns a template if it is readable by the principal.
// Unreadable templates are reported as not found.
func (s *Service) GetTemplate(ctx context.Context, p ownership.Principal, id uuid.UUID) (*Template, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if !readable(scope, t) {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

// ListTemplates returns the templates visible to the principal.
func (s *Service) ListTemplates(ctx context.Context, p ownership.Principal, pg *pagination.Pagination) ([]*Template, int64, error) {
	scope, err := s.resolver.ReadScopeFor(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListVisible(ctx, scope, pg)
}

// UpdateTemplate applies partial updates. The owner reference is
// immutable.
func (s *Service) UpdateTemplate(ctx context.Context, p ownership.Principal, id uuid.UUID, req *UpdateTemplateRequest) (*Template, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.CanWrite(ctx, p, t); err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Steps != nil {
		t.Steps = req.Steps
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, p ownership.Principal, id uuid.UUID) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resolver.CanWrite(ctx, p, t); err != nil {
		return err
	}
	return s.repo.Delete(ctx, t.ID)
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

// readable reports whether a template falls inside a read scope:
// COMMON for everyone, USER for its owner, CREW for accepted members.
func readable(scope ownership.ReadScope, t *Template) bool {
	switch t.OwnerType {
	case ownership.OwnerCommon:
		return true
	case ownership.OwnerUser:
		return t.OwnerUserID != nil && !scope.IsAnonymous() && *t.OwnerUserID == scope.UserID
	case ownership.OwnerCrew:
		return t.OwnerCrewID != nil && scope.InCrew(*t.OwnerCrewID)
	}
	return false
}
