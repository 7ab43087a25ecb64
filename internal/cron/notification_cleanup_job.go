package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

const defaultNotificationRetentionDays = 30

type notificationPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupParams wires the inbox retention job.
type NotificationCleanupParams struct {
	Logger        *logger.Logger
	Notifications notificationPruner
	RetentionDays int
}

// NotificationCleanupJob deletes inbox notifications older than the
// retention window.
type NotificationCleanupJob struct {
	logg          *logger.Logger
	notifications notificationPruner
	retentionDays int
	now           func() time.Time
}

func NewNotificationCleanupJob(params NotificationCleanupParams) (*NotificationCleanupJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if params.RetentionDays <= 0 {
		params.RetentionDays = defaultNotificationRetentionDays
	}
	return &NotificationCleanupJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		retentionDays: params.RetentionDays,
		now:           time.Now,
	}, nil
}

func (j *NotificationCleanupJob) Name() string {
	return "notification_cleanup"
}

func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.notifications.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pruning notifications: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.RFC3339),
	})
	j.logg.Info(logCtx, "pruned expired notifications")
	return nil
}
