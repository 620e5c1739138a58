package template

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Repository defines the interface for template data access.
type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListVisible(ctx context.Context, scope ownership.ReadScope, p *pagination.Pagination) ([]*Template, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new template repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Template) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	var t Template
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) Update(ctx context.Context, t *Template) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Template{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// ListVisible returns the templates readable in the given scope: COMMON
// templates, the principal's own USER templates, and CREW templates of
// crews where the principal is an accepted member. Anonymous scopes see
// COMMON only.
func (r *repository) ListVisible(ctx context.Context, scope ownership.ReadScope, p *pagination.Pagination) ([]*Template, int64, error) {
	query := r.db.WithContext(ctx).Model(&Template{})

	if scope.IsAnonymous() {
		query = query.Where("owner_type = ?", ownership.OwnerCommon)
	} else if len(scope.CrewIDs) > 0 {
		query = query.Where(
			"owner_type = ? OR (owner_type = ? AND owner_user_id = ?) OR (owner_type = ? AND owner_crew_id IN ?)",
			ownership.OwnerCommon,
			ownership.OwnerUser, scope.UserID,
			ownership.OwnerCrew, scope.CrewIDs,
		)
	} else {
		query = query.Where(
			"owner_type = ? OR (owner_type = ? AND owner_user_id = ?)",
			ownership.OwnerCommon,
			ownership.OwnerUser, scope.UserID,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []*Template
	err := query.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}
