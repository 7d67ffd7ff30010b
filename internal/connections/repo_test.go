package connections

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

func setupConnectionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS connections (
  id TEXT PRIMARY KEY,
  follower_id TEXT NOT NULL,
  followed_id TEXT NOT NULL,
  strength TEXT NOT NULL DEFAULT 'weak',
  interaction_count INTEGER NOT NULL DEFAULT 0,
  last_interaction_at DATETIME,
  created_at DATETIME,
  UNIQUE (follower_id, followed_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM connections").Error)
	return db
}

func seedConnection(t *testing.T, db *gorm.DB, followerID, followedID uuid.UUID, createdAt time.Time) models.Connection {
	t.Helper()
	row := models.Connection{
		ID:         uuid.New(),
		FollowerID: followerID,
		FollowedID: followedID,
		Strength:   enums.ConnectionStrengthWeak,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryListFollowersPaged(t *testing.T) {
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	followed := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	oldest := seedConnection(t, db, uuid.New(), followed, base.Add(-3*time.Hour))
	middle := seedConnection(t, db, uuid.New(), followed, base.Add(-2*time.Hour))
	newest := seedConnection(t, db, uuid.New(), followed, base.Add(-time.Hour))
	seedConnection(t, db, uuid.New(), uuid.New(), base)

	rows, next, err := repo.ListFollowers(ctx, listConnectionsParams{UserID: followed, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)
	assert.Equal(t, middle.ID, next.ID)

	rows, next, err = repo.ListFollowers(ctx, listConnectionsParams{UserID: followed, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryListFollowingScoped(t *testing.T) {
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	follower := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	edge := seedConnection(t, db, follower, uuid.New(), base.Add(-time.Hour))
	seedConnection(t, db, uuid.New(), uuid.New(), base)

	rows, next, err := repo.ListFollowing(ctx, listConnectionsParams{UserID: follower, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, edge.ID, rows[0].ID)
	assert.Nil(t, next)
}
