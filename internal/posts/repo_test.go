package posts

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

func setupPostsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS posts (
  id TEXT PRIMARY KEY,
  author_id TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  visibility TEXT NOT NULL DEFAULT 'public',
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM posts").Error)
	return db
}

func seedPost(t *testing.T, db *gorm.DB, authorID uuid.UUID, createdAt time.Time) models.Post {
	t.Helper()
	row := models.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Title:      "title",
		Body:       "body",
		Visibility: enums.PostVisibilityPublic,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryListByAuthorPaged(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	author := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	oldest := seedPost(t, db, author, base.Add(-3*time.Hour))
	middle := seedPost(t, db, author, base.Add(-2*time.Hour))
	newest := seedPost(t, db, author, base.Add(-time.Hour))
	seedPost(t, db, uuid.New(), base)

	rows, next, err := repo.ListByAuthor(ctx, listPostsParams{AuthorID: author, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)
	assert.Equal(t, middle.ID, next.ID)

	rows, next, err = repo.ListByAuthor(ctx, listPostsParams{AuthorID: author, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Nil(t, next)
}
