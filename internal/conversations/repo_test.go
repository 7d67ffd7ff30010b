package conversations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/pkg/db/models"
)

func setupConversationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  is_group INTEGER NOT NULL DEFAULT 0,
  name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS conversation_participants (
  id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  joined_at DATETIME,
  UNIQUE (conversation_id, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
  id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  body TEXT NOT NULL,
  has_attachment INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS conversation_reads (
  id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  last_read_at DATETIME NOT NULL,
  UNIQUE (conversation_id, user_id)
);`,
	}
	for _, ddl := range schema {
		require.NoError(t, db.Exec(ddl).Error)
	}
	for _, table := range []string{"conversation_reads", "conversation_messages", "conversation_participants", "conversations"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

func seedConversation(t *testing.T, repo Repository, participants ...uuid.UUID) *models.Conversation {
	t.Helper()
	conversation := models.Conversation{ID: uuid.New()}
	require.NoError(t, repo.CreateConversation(context.Background(), &conversation, participants))
	return &conversation
}

func seedMessage(t *testing.T, db *gorm.DB, conversationID, senderID uuid.UUID, createdAt time.Time) models.ConversationMessage {
	t.Helper()
	message := models.ConversationMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           "hello",
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(&message).Error)
	return message
}

func TestUnreadCountWithoutReadRow(t *testing.T) {
	db := setupConversationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	conversation := seedConversation(t, repo, alice, bob)

	now := time.Now().UTC()
	seedMessage(t, db, conversation.ID, bob, now.Add(-2*time.Hour))
	seedMessage(t, db, conversation.ID, bob, now.Add(-time.Hour))
	// Alice's own message never counts against her.
	seedMessage(t, db, conversation.ID, alice, now)

	count, err := repo.UnreadCount(ctx, conversation.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.UnreadCount(ctx, conversation.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnreadCountAfterMarkRead(t *testing.T) {
	db := setupConversationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	conversation := seedConversation(t, repo, alice, bob)

	now := time.Now().UTC().Truncate(time.Second)
	seedMessage(t, db, conversation.ID, bob, now.Add(-2*time.Hour))

	read, err := repo.UpsertRead(ctx, conversation.ID, alice, now.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, read)

	count, err := repo.UnreadCount(ctx, conversation.ID, alice)
	require.NoError(t, err)
	assert.Zero(t, count, "messages before last_read_at are read")

	seedMessage(t, db, conversation.ID, bob, now)
	count, err = repo.UnreadCount(ctx, conversation.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "newer messages count again")
}

func TestUpsertReadIsSingleRow(t *testing.T) {
	db := setupConversationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	conversation := seedConversation(t, repo, alice)

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	second := time.Now().UTC().Truncate(time.Second)

	_, err := repo.UpsertRead(ctx, conversation.ID, alice, first)
	require.NoError(t, err)
	read, err := repo.UpsertRead(ctx, conversation.ID, alice, second)
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.WithinDuration(t, second, read.LastReadAt, time.Second)

	var count int64
	require.NoError(t, db.Model(&models.ConversationRead{}).
		Where("conversation_id = ? AND user_id = ?", conversation.ID, alice).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "upsert must keep one row per pair")
}

func TestListForUserOrdersByRecency(t *testing.T) {
	db := setupConversationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	older := seedConversation(t, repo, alice)
	newer := seedConversation(t, repo, alice)
	seedConversation(t, repo, uuid.New()) // someone else's conversation

	now := time.Now().UTC()
	require.NoError(t, repo.TouchUpdatedAt(ctx, older.ID, now.Add(-time.Hour)))
	require.NoError(t, repo.TouchUpdatedAt(ctx, newer.ID, now))

	conversations, err := repo.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, newer.ID, conversations[0].ID)
	assert.Equal(t, older.ID, conversations[1].ID)
}

func TestParticipantMembership(t *testing.T) {
	db := setupConversationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	conversation := seedConversation(t, repo, alice)

	ok, err := repo.IsParticipant(ctx, conversation.ID, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsParticipant(ctx, conversation.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := repo.RemoveParticipant(ctx, conversation.ID, alice)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveParticipant(ctx, conversation.ID, alice)
	require.NoError(t, err)
	assert.False(t, removed)
}
