package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/enums"
)

// Community is a topic-specific space users join and post into.
// members_count and posts_count are recomputed inside the transaction that
// changes membership or post state; they are never incremented in place.
type Community struct {
	ID                   uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string                    `gorm:"type:text;not null"`
	Slug                 string                    `gorm:"type:text;not null;uniqueIndex"`
	Description          string                    `gorm:"type:text;not null;default:''"`
	Visibility           enums.CommunityVisibility `gorm:"type:community_visibility;not null;default:'public'"`
	RequiresPostApproval bool                      `gorm:"column:requires_post_approval;not null;default:false"`
	CreatorID            *uuid.UUID                `gorm:"column:creator_id;type:uuid"`
	MembersCount         int                       `gorm:"column:members_count;not null;default:0"`
	PostsCount           int                       `gorm:"column:posts_count;not null;default:0"`
	CreatedAt            time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// CommunityModerator marks a user as moderator of a community.
type CommunityModerator struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CommunityID uuid.UUID `gorm:"column:community_id;type:uuid;not null;uniqueIndex:idx_community_moderators_pair"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_community_moderators_pair"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CommunityMembership links a user with a community and captures their status.
type CommunityMembership struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CommunityID uuid.UUID              `gorm:"column:community_id;type:uuid;not null;uniqueIndex:idx_community_memberships_pair"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_community_memberships_pair"`
	Status      enums.MembershipStatus `gorm:"type:membership_status;not null;default:'member'"`
	JoinedAt    time.Time              `gorm:"column:joined_at;autoCreateTime"`
}

// CommunityInvitation invites a user into a community. At most one pending
// invitation may exist per (community, inviter, invitee) triple.
type CommunityInvitation struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CommunityID uuid.UUID              `gorm:"column:community_id;type:uuid;not null"`
	InviterID   uuid.UUID              `gorm:"column:inviter_id;type:uuid;not null"`
	InviteeID   uuid.UUID              `gorm:"column:invitee_id;type:uuid;not null"`
	Status      enums.InvitationStatus `gorm:"type:invitation_status;not null;default:'pending'"`
	Message     string                 `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	RespondedAt *time.Time             `gorm:"column:responded_at"`
}

// CommunityPost is a post inside a community, subject to moderation when the
// community requires approval.
type CommunityPost struct {
	ID          uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CommunityID uuid.UUID                 `gorm:"column:community_id;type:uuid;not null;index"`
	AuthorID    uuid.UUID                 `gorm:"column:author_id;type:uuid;not null"`
	Title       string                    `gorm:"type:text;not null"`
	Body        string                    `gorm:"type:text;not null"`
	URL         *string                   `gorm:"type:text"`
	Status      enums.CommunityPostStatus `gorm:"type:community_post_status;not null;default:'approved'"`
	IsPinned    bool                      `gorm:"column:is_pinned;not null;default:false"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
