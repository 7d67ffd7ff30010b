package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups messages between a set of participants. updated_at is
// bumped on every new message so conversation lists sort by recency.
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	IsGroup   bool      `gorm:"column:is_group;not null;default:false"`
	Name      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ConversationParticipant links a user into a conversation.
type ConversationParticipant struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;uniqueIndex:idx_conversation_participants_pair"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_conversation_participants_pair"`
	JoinedAt       time.Time `gorm:"column:joined_at;autoCreateTime"`
}

// ConversationMessage belongs to exactly one conversation; the sender must be
// a participant at send time.
type ConversationMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;index"`
	SenderID       uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	Body           string    `gorm:"type:text;not null"`
	HasAttachment  bool      `gorm:"column:has_attachment;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ConversationRead tracks when a user last read a conversation. One row per
// (conversation, user); absence means never read.
type ConversationRead struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;uniqueIndex:idx_conversation_reads_pair"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_conversation_reads_pair"`
	LastReadAt     time.Time `gorm:"column:last_read_at;not null"`
}
