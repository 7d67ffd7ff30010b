package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/pkg/db/models"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
	"github.com/aviz85/socisphere/pkg/pagination"
)

// Service defines the notification inbox operations. Everything is scoped to
// the acting recipient; a notification owned by someone else behaves exactly
// like a missing one.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, recipientID, notificationID uuid.UUID) error
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	PurgeOlderThan(ctx context.Context, age time.Duration, dryRun bool) (int64, error)
	Stats(ctx context.Context) (StatsResult, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination and filtering for notifications.
type ListParams struct {
	RecipientID uuid.UUID
	Limit       int
	Cursor      string
	Filter      ReadFilter
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notification dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	filter := params.Filter
	if filter == "" {
		filter = FilterAll
	}
	if filter != FilterAll && filter != FilterUnread && filter != FilterRead {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid read filter")
	}

	query := listNotificationsParams{
		RecipientID: params.RecipientID,
		Limit:       params.Limit,
		Filter:      filter,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

// MarkRead reports whether the call transitioned the row; marking an already
// read notification succeeds without changing read_at.
func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
	if recipientID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if notificationID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, recipientID, notificationID, time.Now().UTC())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return result.Updated, nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	count, err := s.repo.MarkAllRead(ctx, recipientID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	found, err := s.repo.Delete(ctx, recipientID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}

	count, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

// PurgeOlderThan removes notifications older than the provided age, read or
// not. With dryRun it only reports how many rows would go.
func (s *service) PurgeOlderThan(ctx context.Context, age time.Duration, dryRun bool) (int64, error) {
	if age <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "age must be positive")
	}

	cutoff := time.Now().UTC().Add(-age)
	if dryRun {
		count, err := s.repo.CountOlderThan(ctx, cutoff)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stale notifications")
		}
		return count, nil
	}

	count, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge stale notifications")
	}
	return count, nil
}

func (s *service) Stats(ctx context.Context) (StatsResult, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return StatsResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gather notification stats")
	}
	return stats, nil
}
