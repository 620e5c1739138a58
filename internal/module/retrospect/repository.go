package retrospect

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/utils/pagination"
)

// ListFilter narrows retrospect listings.
type ListFilter struct {
	ChallengeID *uuid.UUID
}

// Repository defines the interface for retrospect data access.
type Repository interface {
	Create(ctx context.Context, r *Retrospect) error
	GetByID(ctx context.Context, id uuid.UUID) (*Retrospect, error)
	Update(ctx context.Context, r *Retrospect) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListVisible(ctx context.Context, scope ownership.ReadScope, filter ListFilter, p *pagination.Pagination) ([]*Retrospect, int64, error)
	ListByOwnerInRange(ctx context.Context, ref ownership.OwnerRef, start, end time.Time) ([]*Retrospect, error)

	CreateAnalysis(ctx context.Context, a *WeeklyAnalysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*WeeklyAnalysis, error)
	ListAnalyses(ctx context.Context, scope ownership.ReadScope, p *pagination.Pagination) ([]*WeeklyAnalysis, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new retrospect repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, retro *Retrospect) error {
	return r.db.WithContext(ctx).Create(retro).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Retrospect, error) {
	var retro Retrospect
	err := r.db.WithContext(ctx).First(&retro, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRetrospectNotFound
		}
		return nil, err
	}
	return &retro, nil
}

func (r *repository) Update(ctx context.Context, retro *Retrospect) error {
	return r.db.WithContext(ctx).Save(retro).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Retrospect{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRetrospectNotFound
	}
	return nil
}

// ListVisible composes the visibility union in SQL: all PUBLIC, the
// principal's own USER-owned rows regardless of visibility, and
// member-crew CREW-owned rows that are not PRIVATE. Anonymous scopes
// see PUBLIC only.
func (r *repository) ListVisible(ctx context.Context, scope ownership.ReadScope, filter ListFilter, p *pagination.Pagination) ([]*Retrospect, int64, error) {
	query := r.db.WithContext(ctx).Model(&Retrospect{})

	if scope.IsAnonymous() {
		query = query.Where("visibility = ?", ownership.VisibilityPublic)
	} else if len(scope.CrewIDs) > 0 {
		query = query.Where(
			"visibility = ? OR (owner_type = ? AND owner_user_id = ?) OR (owner_type = ? AND owner_crew_id IN ? AND visibility <> ?)",
			ownership.VisibilityPublic,
			ownership.OwnerUser, scope.UserID,
			ownership.OwnerCrew, scope.CrewIDs, ownership.VisibilityPrivate,
		)
	} else {
		query = query.Where(
			"visibility = ? OR (owner_type = ? AND owner_user_id = ?)",
			ownership.VisibilityPublic,
			ownership.OwnerUser, scope.UserID,
		)
	}
	if filter.ChallengeID != nil {
		query = query.Where("challenge_id = ?", *filter.ChallengeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var retros []*Retrospect
	err := query.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&retros).Error
	if err != nil {
		return nil, 0, err
	}
	return retros, total, nil
}

func (r *repository) ListByOwnerInRange(ctx context.Context, ref ownership.OwnerRef, start, end time.Time) ([]*Retrospect, error) {
	query := r.db.WithContext(ctx).
		Where("owner_type = ?", ref.OwnerType).
		Where("created_at >= ? AND created_at < ?", start, end)

	switch ref.OwnerType {
	case ownership.OwnerUser:
		query = query.Where("owner_user_id = ?", ref.OwnerUserID)
	case ownership.OwnerCrew:
		query = query.Where("owner_crew_id = ?", ref.OwnerCrewID)
	}

	var retros []*Retrospect
	err := query.Order("created_at ASC").Find(&retros).Error
	return retros, err
}

func (r *repository) CreateAnalysis(ctx context.Context, a *WeeklyAnalysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) GetAnalysis(ctx context.Context, id uuid.UUID) (*WeeklyAnalysis, error) {
	var analysis WeeklyAnalysis
	err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return &analysis, nil
}

// ListAnalyses returns analyses owned by the scope's user or by crews
// where the user is an accepted member.
func (r *repository) ListAnalyses(ctx context.Context, scope ownership.ReadScope, p *pagination.Pagination) ([]*WeeklyAnalysis, int64, error) {
	if scope.IsAnonymous() {
		return nil, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&WeeklyAnalysis{})
	if len(scope.CrewIDs) > 0 {
		query = query.Where(
			"(owner_type = ? AND owner_user_id = ?) OR (owner_type = ? AND owner_crew_id IN ?)",
			ownership.OwnerUser, scope.UserID,
			ownership.OwnerCrew, scope.CrewIDs,
		)
	} else {
		query = query.Where("owner_type = ? AND owner_user_id = ?", ownership.OwnerUser, scope.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var analyses []*WeeklyAnalysis
	err := query.
		Order("end_date DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&analyses).Error
	if err != nil {
		return nil, 0, err
	}
	return analyses, total, nil
}
