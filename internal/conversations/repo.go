package conversations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aviz85/socisphere/pkg/db/models"
)

// ErrNotFound is returned when no conversation row matches the lookup.
var ErrNotFound = errors.New("conversation not found")

// Repository exposes persistence helpers for conversations, messages, and the
// per-(conversation,user) read ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateConversation(ctx context.Context, conversation *models.Conversation, participantIDs []uuid.UUID) error
	FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	AddParticipant(ctx context.Context, conversationID, userID uuid.UUID) error
	RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.ConversationMessage) error
	TouchUpdatedAt(ctx context.Context, conversationID uuid.UUID, now time.Time) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ConversationMessage, error)
	LastMessage(ctx context.Context, conversationID uuid.UUID) (*models.ConversationMessage, error)
	UpsertRead(ctx context.Context, conversationID, userID uuid.UUID, now time.Time) (*models.ConversationRead, error)
	FindRead(ctx context.Context, conversationID, userID uuid.UUID) (*models.ConversationRead, error)
	UnreadCount(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a conversations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateConversation(ctx context.Context, conversation *models.Conversation, participantIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}
		for _, userID := range participantIDs {
			participant := models.ConversationParticipant{
				ID:             uuid.New(),
				ConversationID: conversation.ID,
				UserID:         userID,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repositoryImpl) AddParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	participant := models.ConversationParticipant{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
	}
	return r.db.WithContext(ctx).Create(&participant).Error
}

func (r *repositoryImpl) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.ConversationParticipant{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants ON conversation_participants.conversation_id = conversations.id").
		Where("conversation_participants.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func (r *repositoryImpl) CreateMessage(ctx context.Context, message *models.ConversationMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) TouchUpdatedAt(ctx context.Context, conversationID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn("updated_at", now).Error
}

func (r *repositoryImpl) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *repositoryImpl) LastMessage(ctx context.Context, conversationID uuid.UUID) (*models.ConversationMessage, error) {
	var message models.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repositoryImpl) UpsertRead(ctx context.Context, conversationID, userID uuid.UUID, now time.Time) (*models.ConversationRead, error) {
	read := models.ConversationRead{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		LastReadAt:     now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"last_read_at": now}),
		}).
		Create(&read).Error
	if err != nil {
		return nil, err
	}
	return r.FindRead(ctx, conversationID, userID)
}

func (r *repositoryImpl) FindRead(ctx context.Context, conversationID, userID uuid.UUID) (*models.ConversationRead, error) {
	var read models.ConversationRead
	err := r.db.WithContext(ctx).
		First(&read, "conversation_id = ? AND user_id = ?", conversationID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &read, nil
}

// UnreadCount derives the unread total from the read ledger: without a ledger
// row every message from someone else counts, otherwise only messages newer
// than last_read_at. The user's own messages never count.
func (r *repositoryImpl) UnreadCount(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	read, err := r.FindRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.ConversationMessage{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID)
	if read != nil {
		query = query.Where("created_at > ?", read.LastReadAt)
	}

	var count int64
	err = query.Count(&count).Error
	return count, err
}
