package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/pkg/logger"
	"github.com/aviz85/socisphere/pkg/mailer"
	"github.com/aviz85/socisphere/pkg/metrics"
)

const (
	defaultReminderAfterDays = 2
	reminderItemLimit        = 5
)

type unreadDigestSource interface {
	UnreadOlderThan(ctx context.Context, cutoff time.Time, perRecipient int) ([]notifications.RecipientDigest, error)
}

// ReadReminderJobParams configure the unread-notification reminder sweep.
type ReadReminderJobParams struct {
	Logger    *logger.Logger
	Source    unreadDigestSource
	Mailer    mailer.Mailer
	Metrics   *metrics.CronJobMetrics
	AfterDays int
	DryRun    bool
}

// NewReadReminderJob builds the job that emails users about notifications
// left unread for too long.
func NewReadReminderJob(params ReadReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("digest source required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	after := params.AfterDays
	if after <= 0 {
		after = defaultReminderAfterDays
	}
	return &readReminderJob{
		logg:    params.Logger,
		source:  params.Source,
		mailer:  params.Mailer,
		metrics: params.Metrics,
		after:   after,
		dryRun:  params.DryRun,
		now:     time.Now,
	}, nil
}

type readReminderJob struct {
	logg    *logger.Logger
	source  unreadDigestSource
	mailer  mailer.Mailer
	metrics *metrics.CronJobMetrics
	after   int
	dryRun  bool
	now     func() time.Time
}

func (j *readReminderJob) Name() string { return "read-reminder" }

// Run sends one summary email per recipient. A failed send for one user does
// not stop the sweep; the errors are aggregated and returned together.
func (j *readReminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.after) * 24 * time.Hour)
	digests, err := j.source.UnreadOlderThan(ctx, cutoff, reminderItemLimit)
	if err != nil {
		return fmt.Errorf("read reminder: %w", err)
	}

	if j.dryRun {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":     cutoff,
			"recipients": len(digests),
		})
		j.logg.Info(logCtx, "read reminder dry run, no mail sent")
		return nil
	}

	var sendErr error
	sent := int64(0)
	for _, digest := range digests {
		msg := mailer.Message{
			To:      digest.Email,
			Subject: fmt.Sprintf("You have %d unread notifications", digest.UnreadTotal),
			Body:    reminderBody(digest),
		}
		if err := j.mailer.Send(ctx, msg); err != nil {
			sendErr = multierr.Append(sendErr, fmt.Errorf("remind %s: %w", digest.RecipientID, err))
			continue
		}
		sent++
	}
	j.metrics.AddItemsProcessed(j.Name(), sent)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"recipients": len(digests),
		"sent":       sent,
	})
	j.logg.Info(logCtx, "read reminder complete")
	return sendErr
}

// reminderBody lists the oldest unread items and a remainder count when the
// total exceeds the listed sample.
func reminderBody(digest notifications.RecipientDigest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", digest.Username)
	fmt.Fprintf(&sb, "You have %d unread notifications waiting for you:\n\n", digest.UnreadTotal)
	for _, item := range digest.Items {
		fmt.Fprintf(&sb, "- %s: %s\n", item.Title, item.Message)
	}
	if remainder := digest.UnreadTotal - int64(len(digest.Items)); remainder > 0 {
		fmt.Fprintf(&sb, "\n...and %d more.\n", remainder)
	}
	sb.WriteString("\nSee you soon!\n")
	return sb.String()
}
