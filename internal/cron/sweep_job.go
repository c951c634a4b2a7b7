package cron

import (
	"context"
	"fmt"

	"github.com/stockroomhq/stockroom-backend/internal/alerts"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type stockSweeper interface {
	Run(ctx context.Context) (alerts.SweepResult, error)
}

// LowStockSweepJobParams configure the low-stock sweep job.
type LowStockSweepJobParams struct {
	Logger  *logger.Logger
	Sweeper stockSweeper
}

// NewLowStockSweepJob wraps the alerts sweeper as a scheduled job.
func NewLowStockSweepJob(params LowStockSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	return &lowStockSweepJob{logg: params.Logger, sweeper: params.Sweeper}, nil
}

type lowStockSweepJob struct {
	logg    *logger.Logger
	sweeper stockSweeper
}

func (j *lowStockSweepJob) Name() string { return "low-stock-sweep" }

func (j *lowStockSweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("low stock sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": result.Scanned,
		"alerted": result.Alerted,
	})
	j.logg.Info(logCtx, "low stock sweep complete")
	return nil
}
