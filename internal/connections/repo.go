package connections

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/pagination"
)

// ErrNotFound is returned when no follow edge matches the lookup.
var ErrNotFound = errors.New("connection not found")

// Repository exposes persistence helpers for follow edges.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, connection *models.Connection) error
	Find(ctx context.Context, followerID, followedID uuid.UUID) (*models.Connection, error)
	Delete(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, params listConnectionsParams) ([]models.Connection, *pagination.Cursor, error)
	ListFollowing(ctx context.Context, params listConnectionsParams) ([]models.Connection, *pagination.Cursor, error)
	UpdateInteraction(ctx context.Context, connection *models.Connection) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a connections repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listConnectionsParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, connection *models.Connection) error {
	return r.db.WithContext(ctx).Create(connection).Error
}

func (r *repositoryImpl) Find(ctx context.Context, followerID, followedID uuid.UUID) (*models.Connection, error) {
	var connection models.Connection
	err := r.db.WithContext(ctx).
		First(&connection, "follower_id = ? AND followed_id = ?", followerID, followedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Connection{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListFollowers(ctx context.Context, params listConnectionsParams) ([]models.Connection, *pagination.Cursor, error) {
	return r.list(ctx, params, "followed_id")
}

func (r *repositoryImpl) ListFollowing(ctx context.Context, params listConnectionsParams) ([]models.Connection, *pagination.Cursor, error) {
	return r.list(ctx, params, "follower_id")
}

func (r *repositoryImpl) list(ctx context.Context, params listConnectionsParams, column string) ([]models.Connection, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Connection{}).Where(column+" = ?", params.UserID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Connection
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UpdateInteraction(ctx context.Context, connection *models.Connection) error {
	return r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ?", connection.ID).
		Updates(map[string]any{
			"interaction_count":   connection.InteractionCount,
			"strength":            connection.Strength,
			"last_interaction_at": connection.LastInteractionAt,
		}).Error
}
