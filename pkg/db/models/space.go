package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/enums"
)

// Space is a collaborative space for group projects.
type Space struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"type:text;not null"`
	Description string     `gorm:"type:text;not null;default:''"`
	CreatorID   *uuid.UUID `gorm:"column:creator_id;type:uuid"`
	IsPublic    bool       `gorm:"column:is_public;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// SpaceMembership links a user into a space with a role.
type SpaceMembership struct {
	ID       uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SpaceID  uuid.UUID       `gorm:"column:space_id;type:uuid;not null;uniqueIndex:idx_space_memberships_pair"`
	UserID   uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_space_memberships_pair"`
	Role     enums.SpaceRole `gorm:"type:space_role;not null;default:'contributor'"`
	JoinedAt time.Time       `gorm:"column:joined_at;autoCreateTime"`
}
