package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/enums"
)

// Notification stores in-app notification payloads scoped to recipients.
// read_at doubles as the read flag: a non-null value means read. The acting
// user is referenced only inside the message text, never relationally.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null;index"`
	Kind        enums.NotificationKind `gorm:"type:notification_kind;not null"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	Link        *string                `gorm:"type:text"`
	ReadAt      *time.Time             `gorm:"type:timestamptz"`
	CreatedAt   time.Time              `gorm:"type:timestamptz;default:now()"`
}

// IsRead reports whether the notification has been read.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
