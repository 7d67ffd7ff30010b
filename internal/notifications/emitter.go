package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	"github.com/aviz85/socisphere/pkg/logger"
)

// Event describes a notification about to be written. ActorID is informational
// only; the stored row references the actor solely inside its text.
type Event struct {
	RecipientID uuid.UUID
	ActorID     uuid.UUID
	Kind        enums.NotificationKind
	Title       string
	Message     string
	Link        string
}

// Emitter writes notifications on a best-effort basis. Emission never fails
// the operation that triggered it: failures are logged and swallowed, and
// self-notifications (actor == recipient) are silently skipped.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

type emitter struct {
	repo Repository
	logg *logger.Logger
}

// NewEmitter wires the best-effort notification writer.
func NewEmitter(repo Repository, logg *logger.Logger) Emitter {
	return &emitter{repo: repo, logg: logg}
}

func (e *emitter) Emit(ctx context.Context, event Event) {
	if event.RecipientID == uuid.Nil {
		return
	}
	if event.ActorID != uuid.Nil && event.ActorID == event.RecipientID {
		return
	}
	if !event.Kind.IsValid() {
		e.warn(ctx, event, "invalid notification kind, dropping event")
		return
	}

	notification := models.Notification{
		RecipientID: event.RecipientID,
		Kind:        event.Kind,
		Title:       event.Title,
		Message:     event.Message,
	}
	if event.Link != "" {
		link := event.Link
		notification.Link = &link
	}

	if err := e.repo.Create(ctx, &notification); err != nil {
		e.fail(ctx, event, err)
	}
}

func (e *emitter) warn(ctx context.Context, event Event, msg string) {
	if e.logg == nil {
		return
	}
	ctx = e.logg.WithFields(ctx, map[string]any{
		"recipient_id": event.RecipientID.String(),
		"kind":         string(event.Kind),
	})
	e.logg.Warn(ctx, msg)
}

func (e *emitter) fail(ctx context.Context, event Event, err error) {
	if e.logg == nil {
		return
	}
	ctx = e.logg.WithFields(ctx, map[string]any{
		"recipient_id": event.RecipientID.String(),
		"kind":         string(event.Kind),
	})
	e.logg.Error(ctx, "notification emit failed", err)
}
