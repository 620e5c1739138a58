package challenge

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/utils/pagination"
)

// ListFilter narrows challenge listings. A nil Status means no status
// filtering.
type ListFilter struct {
	Status *ChallengeStatus
}

// Repository defines the interface for challenge data access.
type Repository interface {
	CreatePlan(ctx context.Context, plan *Plan) error
	Create(ctx context.Context, ch *Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*Challenge, error)
	Update(ctx context.Context, ch *Challenge) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListVisible(ctx context.Context, scope ownership.ReadScope, filter ListFilter, p *pagination.Pagination) ([]*Challenge, int64, error)

	UpsertUserStatus(ctx context.Context, status *UserChallengeStatus) error
	GetUserStatus(ctx context.Context, userID, challengeID uuid.UUID) (*UserChallengeStatus, error)
	ListUserStatuses(ctx context.Context, challengeID uuid.UUID) ([]*UserChallengeStatus, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new challenge repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(ctx context.Context, plan *Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) Create(ctx context.Context, ch *Challenge) error {
	return r.db.WithContext(ctx).Create(ch).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	var ch Challenge
	err := r.db.WithContext(ctx).
		Preload("Plan").
		First(&ch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (r *repository) Update(ctx context.Context, ch *Challenge) error {
	return r.db.WithContext(ctx).Save(ch).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&UserChallengeStatus{}, "challenge_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&Challenge{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrChallengeNotFound
		}
		return nil
	})
}

// ListVisible returns challenges owned by the scope's user or by crews
// where the user is an accepted member. Anonymous scopes see nothing;
// challenges carry no PUBLIC visibility.
func (r *repository) ListVisible(ctx context.Context, scope ownership.ReadScope, filter ListFilter, p *pagination.Pagination) ([]*Challenge, int64, error) {
	if scope.IsAnonymous() {
		return nil, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&Challenge{})
	if len(scope.CrewIDs) > 0 {
		query = query.Where(
			"(owner_type = ? AND owner_user_id = ?) OR (owner_type = ? AND owner_crew_id IN ?)",
			ownership.OwnerUser, scope.UserID,
			ownership.OwnerCrew, scope.CrewIDs,
		)
	} else {
		query = query.Where("owner_type = ? AND owner_user_id = ?", ownership.OwnerUser, scope.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var challenges []*Challenge
	err := query.
		Preload("Plan").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&challenges).Error
	if err != nil {
		return nil, 0, err
	}
	return challenges, total, nil
}

func (r *repository) UpsertUserStatus(ctx context.Context, status *UserChallengeStatus) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(status).Error
}

func (r *repository) GetUserStatus(ctx context.Context, userID, challengeID uuid.UUID) (*UserChallengeStatus, error) {
	var status UserChallengeStatus
	err := r.db.WithContext(ctx).
		First(&status, "user_id = ? AND challenge_id = ?", userID, challengeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &status, nil
}

func (r *repository) ListUserStatuses(ctx context.Context, challengeID uuid.UUID) ([]*UserChallengeStatus, error) {
	var statuses []*UserChallengeStatus
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("updated_at DESC").
		Find(&statuses).Error
	return statuses, err
}
