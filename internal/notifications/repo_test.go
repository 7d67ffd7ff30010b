package notifications

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
	"github.com/aviz85/socisphere/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  bio TEXT NOT NULL DEFAULT '',
  location TEXT,
  website TEXT,
  private_profile INTEGER NOT NULL DEFAULT 0,
  is_verified INTEGER NOT NULL DEFAULT 0,
  last_active_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	notifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  link TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(notifications).Error)
	require.NoError(t, db.Exec("DELETE FROM notifications").Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, recipientID uuid.UUID, createdAt time.Time, readAt *time.Time) models.Notification {
	t.Helper()
	row := models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Kind:        enums.NotificationKindSystem,
		Title:       "title",
		Message:     "message",
		ReadAt:      readAt,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryListScopedAndPaged(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	other := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	oldest := seedNotification(t, db, recipient, base.Add(-3*time.Hour), nil)
	middle := seedNotification(t, db, recipient, base.Add(-2*time.Hour), nil)
	newest := seedNotification(t, db, recipient, base.Add(-time.Hour), nil)
	seedNotification(t, db, other, base, nil)

	rows, next, err := repo.List(ctx, listNotificationsParams{RecipientID: recipient, Limit: 2, Filter: FilterAll})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)
	assert.Equal(t, middle.ID, next.ID)

	rows, next, err = repo.List(ctx, listNotificationsParams{RecipientID: recipient, Limit: 2, Filter: FilterAll, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryListReadFilter(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	read := seedNotification(t, db, recipient, now.Add(-2*time.Hour), &now)
	unread := seedNotification(t, db, recipient, now.Add(-time.Hour), nil)

	rows, _, err := repo.List(ctx, listNotificationsParams{RecipientID: recipient, Filter: FilterUnread})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unread.ID, rows[0].ID)

	rows, _, err = repo.List(ctx, listNotificationsParams{RecipientID: recipient, Filter: FilterRead})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, read.ID, rows[0].ID)
}

func TestRepositoryMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	row := seedNotification(t, db, recipient, now.Add(-time.Hour), nil)

	mark, err := repo.MarkRead(ctx, recipient, row.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	// Second call finds the row but changes nothing.
	mark, err = repo.MarkRead(ctx, recipient, row.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	require.NotNil(t, stored.ReadAt)
	assert.WithinDuration(t, now, *stored.ReadAt, time.Second)
}

func TestRepositoryMarkReadOtherRecipientInvisible(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()
	row := seedNotification(t, db, owner, time.Now().UTC(), nil)

	mark, err := repo.MarkRead(ctx, stranger, row.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, mark.Found, "another recipient's row must look missing")

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Nil(t, stored.ReadAt)
}

func TestRepositoryMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	seedNotification(t, db, recipient, now.Add(-2*time.Hour), nil)
	seedNotification(t, db, recipient, now.Add(-time.Hour), nil)
	seedNotification(t, db, recipient, now.Add(-3*time.Hour), &now)
	seedNotification(t, db, uuid.New(), now, nil)

	count, err := repo.MarkAllRead(ctx, recipient, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := repo.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestRepositoryDeleteScoped(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	row := seedNotification(t, db, owner, time.Now().UTC(), nil)

	found, err := repo.Delete(ctx, uuid.New(), row.ID)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.Delete(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.Delete(ctx, owner, row.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryPurgeOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	cutoff := now.Add(-30 * 24 * time.Hour)
	stale := seedNotification(t, db, recipient, cutoff.Add(-time.Hour), &now)
	fresh := seedNotification(t, db, recipient, now.Add(-time.Hour), nil)

	count, err := repo.CountOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)
	assert.NotEqual(t, stale.ID, remaining[0].ID)
}

func TestRepositoryStats(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	seedNotification(t, db, recipient, now.Add(-2*time.Hour), nil)
	seedNotification(t, db, recipient, now.Add(-time.Hour), &now)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Unread)
	assert.Equal(t, int64(2), stats.ByKind[string(enums.NotificationKindSystem)])
}

func TestRepositoryUnreadOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Username: "maya", Email: "maya@example.com"}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now().UTC()
	cutoff := now.Add(-48 * time.Hour)
	for i := 0; i < 7; i++ {
		seedNotification(t, db, user.ID, cutoff.Add(-time.Duration(i+1)*time.Hour), nil)
	}
	// Fresh unread and read-stale rows stay out of the digest.
	seedNotification(t, db, user.ID, now.Add(-time.Hour), nil)
	seedNotification(t, db, user.ID, cutoff.Add(-time.Hour), &now)

	digests, err := repo.UnreadOlderThan(ctx, cutoff, 5)
	require.NoError(t, err)
	require.Len(t, digests, 1)

	digest := digests[0]
	assert.Equal(t, user.ID, digest.RecipientID)
	assert.Equal(t, "maya@example.com", digest.Email)
	assert.Equal(t, int64(7), digest.UnreadTotal)
	assert.Len(t, digest.Items, 5)
}
