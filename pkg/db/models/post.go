package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aviz85/socisphere/pkg/enums"
	"github.com/aviz85/socisphere/pkg/types"
)

// Post is a user's own post outside any community.
type Post struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID   uuid.UUID            `gorm:"column:author_id;type:uuid;not null;index"`
	Title      string               `gorm:"type:text;not null;default:''"`
	Body       string               `gorm:"type:text;not null"`
	Visibility enums.PostVisibility `gorm:"type:post_visibility;not null;default:'public'"`
	Tags       pq.StringArray       `gorm:"type:text[]"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// Comment attaches to a post or community post via a typed content reference.
// Replies nest through parent_id.
type Comment struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID    uuid.UUID         `gorm:"column:author_id;type:uuid;not null"`
	ContentKind types.ContentKind `gorm:"column:content_kind;type:content_kind;not null;index:idx_comments_content"`
	ContentID   uuid.UUID         `gorm:"column:content_id;type:uuid;not null;index:idx_comments_content"`
	ParentID    *uuid.UUID        `gorm:"column:parent_id;type:uuid"`
	Body        string            `gorm:"type:text;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// ContentRef rebuilds the typed reference for the comment target.
func (c Comment) ContentRef() types.ContentRef {
	return types.ContentRef{Kind: c.ContentKind, ID: c.ContentID}
}

// Reaction is one user's reaction to a piece of content; unique per
// (user, content).
type Reaction struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reactions_user_content"`
	ContentKind types.ContentKind  `gorm:"column:content_kind;type:content_kind;not null;uniqueIndex:idx_reactions_user_content"`
	ContentID   uuid.UUID          `gorm:"column:content_id;type:uuid;not null;uniqueIndex:idx_reactions_user_content"`
	Type        enums.ReactionType `gorm:"column:reaction_type;type:reaction_type;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// ContentRef rebuilds the typed reference for the reaction target.
func (r Reaction) ContentRef() types.ContentRef {
	return types.ContentRef{Kind: r.ContentKind, ID: r.ContentID}
}
