package spaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/pkg/db/models"
)

// ErrNotFound is returned when no space or membership matches the lookup.
var ErrNotFound = errors.New("space not found")

// Repository exposes persistence helpers for collaborative spaces.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSpace(ctx context.Context, space *models.Space) error
	FindSpace(ctx context.Context, id uuid.UUID) (*models.Space, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Space, error)

	CreateMembership(ctx context.Context, membership *models.SpaceMembership) error
	FindMembership(ctx context.Context, spaceID, userID uuid.UUID) (*models.SpaceMembership, error)
	DeleteMembership(ctx context.Context, spaceID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, spaceID uuid.UUID) ([]models.SpaceMembership, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a spaces repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateSpace(ctx context.Context, space *models.Space) error {
	return r.db.WithContext(ctx).Create(space).Error
}

func (r *repositoryImpl) FindSpace(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	var space models.Space
	err := r.db.WithContext(ctx).First(&space, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *repositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Space, error) {
	var spaces []models.Space
	err := r.db.WithContext(ctx).
		Joins("JOIN space_memberships ON space_memberships.space_id = spaces.id").
		Where("space_memberships.user_id = ?", userID).
		Order("spaces.updated_at DESC").
		Find(&spaces).Error
	if err != nil {
		return nil, err
	}
	return spaces, nil
}

func (r *repositoryImpl) CreateMembership(ctx context.Context, membership *models.SpaceMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repositoryImpl) FindMembership(ctx context.Context, spaceID, userID uuid.UUID) (*models.SpaceMembership, error) {
	var membership models.SpaceMembership
	err := r.db.WithContext(ctx).
		First(&membership, "space_id = ? AND user_id = ?", spaceID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repositoryImpl) DeleteMembership(ctx context.Context, spaceID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Delete(&models.SpaceMembership{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListMembers(ctx context.Context, spaceID uuid.UUID) ([]models.SpaceMembership, error) {
	var members []models.SpaceMembership
	err := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
