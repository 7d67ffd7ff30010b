package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/db/models"
)

// UserDTO is the public user representation returned by the API.
type UserDTO struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Bio            string     `json:"bio"`
	Location       *string    `json:"location,omitempty"`
	Website        *string    `json:"website,omitempty"`
	PrivateProfile bool       `json:"private_profile"`
	IsVerified     bool       `json:"is_verified"`
	LastActiveAt   *time.Time `json:"last_active_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FromModel projects the persisted user into its API shape.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		Location:       user.Location,
		Website:        user.Website,
		PrivateProfile: user.PrivateProfile,
		IsVerified:     user.IsVerified,
		LastActiveAt:   user.LastActiveAt,
		CreatedAt:      user.CreatedAt,
	}
}
