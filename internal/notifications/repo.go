package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/pagination"
)

// ReadFilter narrows a notification listing by read state.
type ReadFilter string

const (
	FilterAll    ReadFilter = "all"
	FilterUnread ReadFilter = "unread"
	FilterRead   ReadFilter = "read"
)

// Repository exposes persistence helpers for notifications. Every query that
// touches existing rows is scoped by recipient_id; rows belonging to other
// recipients are invisible, not forbidden.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, now time.Time) (int64, error)
	Delete(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (StatsResult, error)
	UnreadOlderThan(ctx context.Context, cutoff time.Time, perRecipient int) ([]RecipientDigest, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	RecipientID uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
	Filter      ReadFilter
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

// StatsResult aggregates notification counts for the admin surface.
type StatsResult struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	ByKind map[string]int64 `json:"by_kind"`
}

// RecipientDigest groups a recipient's stale unread notifications for the
// reminder sweep. Items holds at most the requested number of rows.
type RecipientDigest struct {
	RecipientID uuid.UUID
	Email       string
	Username    string
	UnreadTotal int64
	Items       []models.Notification
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", params.RecipientID)
	switch params.Filter {
	case FilterUnread:
		query = query.Where("read_at IS NULL")
	case FilterRead:
		query = query.Where("read_at IS NOT NULL")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	if len(notifications) > normalized {
		notifications = notifications[:normalized]
		last := notifications[normalized-1]
		return notifications, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return notifications, nil, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	var mark notificationMarkResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var notification models.Notification
		err := tx.First(&notification, "id = ? AND recipient_id = ?", notificationID, recipientID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mark.Found = true
		if notification.ReadAt != nil {
			return nil
		}

		result := tx.Model(&models.Notification{}).
			Where("id = ? AND read_at IS NULL", notificationID).
			UpdateColumn("read_at", now)
		if result.Error != nil {
			return result.Error
		}
		mark.Updated = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return notificationMarkResult{}, err
	}
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, recipientID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) Stats(ctx context.Context) (StatsResult, error) {
	stats := StatsResult{ByKind: map[string]int64{}}

	if err := r.db.WithContext(ctx).Model(&models.Notification{}).Count(&stats.Total).Error; err != nil {
		return StatsResult{}, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read_at IS NULL").
		Count(&stats.Unread).Error; err != nil {
		return StatsResult{}, err
	}

	type kindRow struct {
		Kind  string
		Count int64
	}
	var rows []kindRow
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("kind, COUNT(*) AS count").
		Group("kind").
		Find(&rows).Error; err != nil {
		return StatsResult{}, err
	}
	for _, row := range rows {
		stats.ByKind[row.Kind] = row.Count
	}
	return stats, nil
}

func (r *repositoryImpl) UnreadOlderThan(ctx context.Context, cutoff time.Time, perRecipient int) ([]RecipientDigest, error) {
	type recipientRow struct {
		RecipientID uuid.UUID
		Email       string
		Username    string
		UnreadTotal int64
	}
	var recipients []recipientRow
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("notifications.recipient_id, users.email, users.username, COUNT(*) AS unread_total").
		Joins("JOIN users ON users.id = notifications.recipient_id").
		Where("notifications.read_at IS NULL AND notifications.created_at < ?", cutoff).
		Group("notifications.recipient_id, users.email, users.username").
		Order("unread_total DESC").
		Find(&recipients).Error
	if err != nil {
		return nil, err
	}

	digests := make([]RecipientDigest, 0, len(recipients))
	for _, rec := range recipients {
		var items []models.Notification
		err := r.db.WithContext(ctx).
			Where("recipient_id = ? AND read_at IS NULL AND created_at < ?", rec.RecipientID, cutoff).
			Order("created_at DESC").
			Limit(perRecipient).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
		digests = append(digests, RecipientDigest{
			RecipientID: rec.RecipientID,
			Email:       rec.Email,
			Username:    rec.Username,
			UnreadTotal: rec.UnreadTotal,
			Items:       items,
		})
	}
	return digests, nil
}
