package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username       string     `gorm:"type:text;not null;uniqueIndex"`
	Email          string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	Bio            string     `gorm:"type:text;not null;default:''"`
	Location       *string    `gorm:"type:text"`
	Website        *string    `gorm:"type:text"`
	PrivateProfile bool       `gorm:"column:private_profile;not null;default:false"`
	IsVerified     bool       `gorm:"column:is_verified;not null;default:false"`
	LastActiveAt   *time.Time `gorm:"column:last_active_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Summary is the nested user representation embedded in API payloads.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	IsVerified bool      `json:"is_verified"`
}

// Summary projects the user into its public API shape.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, IsVerified: u.IsVerified}
}
