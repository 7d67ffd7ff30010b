package posts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	"github.com/aviz85/socisphere/pkg/pagination"
	"github.com/aviz85/socisphere/pkg/types"
)

// ErrNotFound is returned when a post, comment, reaction, or referenced
// content row does not exist.
var ErrNotFound = errors.New("content not found")

// Repository exposes persistence helpers for posts, comments, and reactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePost(ctx context.Context, post *models.Post) error
	FindPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListByAuthor(ctx context.Context, params listPostsParams) ([]models.Post, *pagination.Cursor, error)
	DeletePost(ctx context.Context, authorID, id uuid.UUID) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListComments(ctx context.Context, ref types.ContentRef) ([]models.Comment, error)

	FindReaction(ctx context.Context, userID uuid.UUID, ref types.ContentRef) (*models.Reaction, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	UpdateReactionType(ctx context.Context, id uuid.UUID, kind enums.ReactionType) error
	DeleteReaction(ctx context.Context, id uuid.UUID) error

	// ContentAuthor resolves the author of the referenced post or community
	// post. Ownership checks for comment and reaction notifications go
	// through here.
	ContentAuthor(ctx context.Context, ref types.ContentRef) (uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a posts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listPostsParams struct {
	AuthorID uuid.UUID
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repositoryImpl) FindPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repositoryImpl) ListByAuthor(ctx context.Context, params listPostsParams) ([]models.Post, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", params.AuthorID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Post
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

func (r *repositoryImpl) DeletePost(ctx context.Context, authorID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Post{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repositoryImpl) FindComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *repositoryImpl) ListComments(ctx context.Context, ref types.ContentRef) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("content_kind = ? AND content_id = ?", ref.Kind, ref.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *repositoryImpl) FindReaction(ctx context.Context, userID uuid.UUID, ref types.ContentRef) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		First(&reaction, "user_id = ? AND content_kind = ? AND content_id = ?", userID, ref.Kind, ref.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *repositoryImpl) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *repositoryImpl) UpdateReactionType(ctx context.Context, id uuid.UUID, kind enums.ReactionType) error {
	return r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("id = ?", id).
		UpdateColumn("reaction_type", kind).Error
}

func (r *repositoryImpl) DeleteReaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reaction{}).Error
}

func (r *repositoryImpl) ContentAuthor(ctx context.Context, ref types.ContentRef) (uuid.UUID, error) {
	var row struct {
		AuthorID uuid.UUID
	}
	query := r.db.WithContext(ctx)
	switch ref.Kind {
	case types.ContentKindPost:
		query = query.Model(&models.Post{})
	case types.ContentKindCommunityPost:
		query = query.Model(&models.CommunityPost{})
	default:
		return uuid.Nil, ErrNotFound
	}
	err := query.Select("author_id").Where("id = ?", ref.ID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return row.AuthorID, nil
}
