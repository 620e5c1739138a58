package crew

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for crew and membership data access.
type Repository interface {
	// Crew operations
	CreateCrew(ctx context.Context, crew *Crew) error
	GetCrewByID(ctx context.Context, id uuid.UUID) (*Crew, error)
	GetCrewByName(ctx context.Context, name string) (*Crew, error)
	// GetCrewForUpdate locks the crew row for the duration of the
	// surrounding transaction, serializing membership mutations per crew.
	GetCrewForUpdate(ctx context.Context, id uuid.UUID) (*Crew, error)
	ListCrews(ctx context.Context, limit, offset int) ([]*Crew, int64, error)
	ListCrewsByMember(ctx context.Context, userID uuid.UUID) ([]*Crew, error)
	UpdateCrew(ctx context.Context, crew *Crew) error
	DeleteCrew(ctx context.Context, id uuid.UUID) error

	// Membership operations
	CreateMembership(ctx context.Context, m *Membership) error
	GetMembership(ctx context.Context, userID, crewID uuid.UUID) (*Membership, error)
	UpdateMembership(ctx context.Context, m *Membership) error
	DeleteMembership(ctx context.Context, userID, crewID uuid.UUID) error
	ListAcceptedMembers(ctx context.Context, crewID uuid.UUID) ([]*Membership, error)
	CountAccepted(ctx context.Context, crewID uuid.UUID) (int64, error)
	CountMemberships(ctx context.Context, crewID uuid.UUID) (int64, error)
	AcceptedCrewIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	SetMemberCount(ctx context.Context, crewID uuid.UUID, count int64) error

	// Transaction support
	WithTx(tx *gorm.DB) Repository
	BeginTx(ctx context.Context) (*gorm.DB, error)
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new crew repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a new repository bound to the given transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// BeginTx starts a new transaction.
func (r *repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

func (r *repository) CreateCrew(ctx context.Context, crew *Crew) error {
	return r.db.WithContext(ctx).Create(crew).Error
}

func (r *repository) GetCrewByID(ctx context.Context, id uuid.UUID) (*Crew, error) {
	var crew Crew
	err := r.db.WithContext(ctx).First(&crew, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCrewNotFound
		}
		return nil, err
	}
	return &crew, nil
}

func (r *repository) GetCrewByName(ctx context.Context, name string) (*Crew, error) {
	var crew Crew
	err := r.db.WithContext(ctx).First(&crew, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCrewNotFound
		}
		return nil, err
	}
	return &crew, nil
}

// GetCrewForUpdate acquires a SELECT ... FOR UPDATE lock on the crew row.
// Only meaningful inside a transaction obtained via BeginTx/WithTx.
func (r *repository) GetCrewForUpdate(ctx context.Context, id uuid.UUID) (*Crew, error) {
	var crew Crew
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&crew, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCrewNotFound
		}
		return nil, err
	}
	return &crew, nil
}

func (r *repository) ListCrews(ctx context.Context, limit, offset int) ([]*Crew, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Crew{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var crews []*Crew
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&crews).Error
	if err != nil {
		return nil, 0, err
	}
	return crews, total, nil
}

func (r *repository) ListCrewsByMember(ctx context.Context, userID uuid.UUID) ([]*Crew, error) {
	var crews []*Crew
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.crew_id = crews.id").
		Where("memberships.user_id = ? AND memberships.status = ?", userID, StatusAccepted).
		Order("memberships.joined_at ASC").
		Find(&crews).Error
	if err != nil {
		return nil, err
	}
	return crews, nil
}

func (r *repository) UpdateCrew(ctx context.Context, crew *Crew) error {
	return r.db.WithContext(ctx).Save(crew).Error
}

// DeleteCrew removes the crew and, via the FK cascade, its memberships.
func (r *repository) DeleteCrew(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("crew_id = ?", id).
		Delete(&Membership{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&Crew{}, "id = ?", id).Error
}

func (r *repository) CreateMembership(ctx context.Context, m *Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) GetMembership(ctx context.Context, userID, crewID uuid.UUID) (*Membership, error) {
	var m Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND crew_id = ?", userID, crewID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdateMembership(ctx context.Context, m *Membership) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *repository) DeleteMembership(ctx context.Context, userID, crewID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND crew_id = ?", userID, crewID).
		Delete(&Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (r *repository) ListAcceptedMembers(ctx context.Context, crewID uuid.UUID) ([]*Membership, error) {
	var members []*Membership
	err := r.db.WithContext(ctx).
		Where("crew_id = ? AND status = ?", crewID, StatusAccepted).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) CountAccepted(ctx context.Context, crewID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Membership{}).
		Where("crew_id = ? AND status = ?", crewID, StatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *repository) CountMemberships(ctx context.Context, crewID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Membership{}).
		Where("crew_id = ?", crewID).
		Count(&count).Error
	return count, err
}

func (r *repository) AcceptedCrewIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Membership{}).
		Where("user_id = ? AND status = ?", userID, StatusAccepted).
		Pluck("crew_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) SetMemberCount(ctx context.Context, crewID uuid.UUID, count int64) error {
	return r.db.WithContext(ctx).
		Model(&Crew{}).
		Where("id = ?", crewID).
		Update("member_count", count).Error
}
