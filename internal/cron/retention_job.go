package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const defaultRetentionDays = 30

type notificationRetentionRepo interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRetentionJobParams configure the retention job.
type NotificationRetentionJobParams struct {
	Logger     *logger.Logger
	Repository notificationRetentionRepo
	Retention  int
}

// NewNotificationRetentionJob purges read notifications past the retention window.
func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultRetentionDays
	}
	return &notificationRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationRetentionJob struct {
	logg      *logger.Logger
	repo      notificationRetentionRepo
	retention int
	now       func() time.Time
}

func (j *notificationRetentionJob) Name() string { return "notification-retention" }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification retention complete")
	return nil
}
