package communities

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
)

// ErrNotFound is returned when no community-scoped row matches the lookup.
var ErrNotFound = errors.New("not found")

// Repository exposes persistence helpers for communities, memberships,
// moderators, invitations, and community posts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCommunity(ctx context.Context, community *models.Community) error
	FindCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error)
	FindCommunityBySlug(ctx context.Context, slug string) (*models.Community, error)
	RecomputeMembersCount(ctx context.Context, communityID uuid.UUID) error
	RecomputePostsCount(ctx context.Context, communityID uuid.UUID) error

	CreateMembership(ctx context.Context, membership *models.CommunityMembership) error
	FindMembership(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMembership, error)
	UpdateMembershipStatus(ctx context.Context, membershipID uuid.UUID, status enums.MembershipStatus) error
	DeleteMembership(ctx context.Context, communityID, userID uuid.UUID) (bool, error)

	AddModerator(ctx context.Context, moderator *models.CommunityModerator) error
	RemoveModerator(ctx context.Context, communityID, userID uuid.UUID) (bool, error)
	IsModerator(ctx context.Context, communityID, userID uuid.UUID) (bool, error)
	ListModerators(ctx context.Context, communityID uuid.UUID) ([]models.CommunityModerator, error)

	CreateInvitation(ctx context.Context, invitation *models.CommunityInvitation) error
	FindInvitation(ctx context.Context, id uuid.UUID) (*models.CommunityInvitation, error)
	ResolveInvitation(ctx context.Context, id uuid.UUID, status enums.InvitationStatus, respondedAt time.Time) error

	CreatePost(ctx context.Context, post *models.CommunityPost) error
	FindPost(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error)
	UpdatePostStatus(ctx context.Context, postID uuid.UUID, status enums.CommunityPostStatus) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a communities repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateCommunity(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Create(community).Error
}

func (r *repositoryImpl) FindCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	var community models.Community
	err := r.db.WithContext(ctx).First(&community, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *repositoryImpl) FindCommunityBySlug(ctx context.Context, slug string) (*models.Community, error) {
	var community models.Community
	err := r.db.WithContext(ctx).First(&community, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// RecomputeMembersCount rewrites members_count from the membership table. Run
// inside the same transaction as the membership change it reflects.
func (r *repositoryImpl) RecomputeMembersCount(ctx context.Context, communityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", communityID).
		UpdateColumn("members_count", r.db.
			Model(&models.CommunityMembership{}).
			Select("COUNT(*)").
			Where("community_id = ? AND status = ?", communityID, enums.MembershipStatusMember),
		).Error
}

// RecomputePostsCount rewrites posts_count from approved posts only.
func (r *repositoryImpl) RecomputePostsCount(ctx context.Context, communityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("id = ?", communityID).
		UpdateColumn("posts_count", r.db.
			Model(&models.CommunityPost{}).
			Select("COUNT(*)").
			Where("community_id = ? AND status = ?", communityID, enums.CommunityPostStatusApproved),
		).Error
}

func (r *repositoryImpl) CreateMembership(ctx context.Context, membership *models.CommunityMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repositoryImpl) FindMembership(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMembership, error) {
	var membership models.CommunityMembership
	err := r.db.WithContext(ctx).
		First(&membership, "community_id = ? AND user_id = ?", communityID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repositoryImpl) UpdateMembershipStatus(ctx context.Context, membershipID uuid.UUID, status enums.MembershipStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CommunityMembership{}).
		Where("id = ?", membershipID).
		UpdateColumn("status", status).Error
}

func (r *repositoryImpl) DeleteMembership(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMembership{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) AddModerator(ctx context.Context, moderator *models.CommunityModerator) error {
	return r.db.WithContext(ctx).Create(moderator).Error
}

func (r *repositoryImpl) RemoveModerator(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityModerator{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) IsModerator(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommunityModerator{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) ListModerators(ctx context.Context, communityID uuid.UUID) ([]models.CommunityModerator, error) {
	var moderators []models.CommunityModerator
	err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&moderators).Error
	return moderators, err
}

func (r *repositoryImpl) CreateInvitation(ctx context.Context, invitation *models.CommunityInvitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *repositoryImpl) FindInvitation(ctx context.Context, id uuid.UUID) (*models.CommunityInvitation, error) {
	var invitation models.CommunityInvitation
	err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repositoryImpl) ResolveInvitation(ctx context.Context, id uuid.UUID, status enums.InvitationStatus, respondedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CommunityInvitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"responded_at": respondedAt,
		}).Error
}

func (r *repositoryImpl) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repositoryImpl) FindPost(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	var post models.CommunityPost
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repositoryImpl) UpdatePostStatus(ctx context.Context, postID uuid.UUID, status enums.CommunityPostStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("status", status).Error
}
