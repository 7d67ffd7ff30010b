package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
)

type captureRepository struct {
	fakeRepository
	created   []models.Notification
	createErr error
}

func (c *captureRepository) Create(ctx context.Context, notification *models.Notification) error {
	if c.createErr != nil {
		return c.createErr
	}
	c.created = append(c.created, *notification)
	return nil
}

func TestEmitterWritesNotification(t *testing.T) {
	repo := &captureRepository{}
	emit := NewEmitter(repo, nil)

	recipient := uuid.New()
	emit.Emit(context.Background(), Event{
		RecipientID: recipient,
		ActorID:     uuid.New(),
		Kind:        enums.NotificationKindFollow,
		Title:       "New Follower",
		Message:     "maya started following you",
		Link:        "/users/maya",
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	row := repo.created[0]
	if row.RecipientID != recipient {
		t.Fatalf("wrong recipient %s", row.RecipientID)
	}
	if row.Kind != enums.NotificationKindFollow {
		t.Fatalf("wrong kind %s", row.Kind)
	}
	if row.Link == nil || *row.Link != "/users/maya" {
		t.Fatal("link not preserved")
	}
	if row.ReadAt != nil {
		t.Fatal("new notifications must start unread")
	}
}

func TestEmitterSkipsSelfNotification(t *testing.T) {
	repo := &captureRepository{}
	emit := NewEmitter(repo, nil)

	actor := uuid.New()
	emit.Emit(context.Background(), Event{
		RecipientID: actor,
		ActorID:     actor,
		Kind:        enums.NotificationKindLike,
		Title:       "Post Liked",
	})

	if len(repo.created) != 0 {
		t.Fatalf("self-notification must be skipped, got %d rows", len(repo.created))
	}
}

func TestEmitterSwallowsRepoFailure(t *testing.T) {
	repo := &captureRepository{createErr: errors.New("db down")}
	emit := NewEmitter(repo, nil)

	// Must not panic or surface the error.
	emit.Emit(context.Background(), Event{
		RecipientID: uuid.New(),
		Kind:        enums.NotificationKindSystem,
		Title:       "Heads up",
	})
}

func TestEmitterDropsInvalidKind(t *testing.T) {
	repo := &captureRepository{}
	emit := NewEmitter(repo, nil)

	emit.Emit(context.Background(), Event{
		RecipientID: uuid.New(),
		Kind:        enums.NotificationKind("bogus"),
		Title:       "Broken",
	})

	if len(repo.created) != 0 {
		t.Fatal("invalid kind must not be persisted")
	}
}
