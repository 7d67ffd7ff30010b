package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/enums"
)

// Connection is a follow edge from follower to followed. The pair is unique;
// self-follows are rejected by the connections service, not the schema.
type Connection struct {
	ID                uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FollowerID        uuid.UUID                `gorm:"column:follower_id;type:uuid;not null;uniqueIndex:idx_connections_pair"`
	FollowedID        uuid.UUID                `gorm:"column:followed_id;type:uuid;not null;uniqueIndex:idx_connections_pair"`
	Strength          enums.ConnectionStrength `gorm:"type:connection_strength;not null;default:'weak'"`
	InteractionCount  int                      `gorm:"column:interaction_count;not null;default:0"`
	LastInteractionAt *time.Time               `gorm:"column:last_interaction_at"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
}
