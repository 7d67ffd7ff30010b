package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/aviz85/socisphere/pkg/logger"
	"github.com/aviz85/socisphere/pkg/metrics"
)

const defaultRetentionDays = 30

type notificationPurger interface {
	PurgeOlderThan(ctx context.Context, age time.Duration, dryRun bool) (int64, error)
}

// NotificationCleanupJobParams configure the retention sweep.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPurger
	Metrics       *metrics.CronJobMetrics
	RetentionDays int
}

// NewNotificationCleanupJob builds the job that deletes notifications past
// their retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		purger:    params.Notifications,
		metrics:   params.Metrics,
		retention: retention,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	purger    notificationPurger
	metrics   *metrics.CronJobMetrics
	retention int
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	age := time.Duration(j.retention) * 24 * time.Hour
	deleted, err := j.purger.PurgeOlderThan(ctx, age, false)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	j.metrics.AddItemsProcessed(j.Name(), deleted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
