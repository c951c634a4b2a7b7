package alerts

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/internal/stock"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
)

// ProductSource yields products at or below their minimum stock level.
type ProductSource interface {
	ListAtOrBelowMin(ctx context.Context) ([]models.Product, error)
}

// alertChecker reports whether a product already carries an unread alert of
// the given type. The notifications repository satisfies it.
type alertChecker interface {
	HasUnreadForProduct(ctx context.Context, productID uuid.UUID, notificationType enums.NotificationType) (bool, error)
}

// notifier is the slice of the emitter the sweep needs.
type notifier interface {
	Notify(ctx context.Context, product *models.Product, current enums.StockStatus)
}

// Sweeper periodically re-checks every product against its minimum stock
// level and raises alerts that the transactional path missed, e.g. after a
// minimum was raised without any movement.
type Sweeper struct {
	products      ProductSource
	checker       alertChecker
	emitter       notifier
	metrics       *metrics.JobMetrics
	logg          *logger.Logger
	criticalRatio float64
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Scanned  int
	Alerted  int
	ByStatus map[enums.StockStatus]int
}

// NewSweeper wires the low stock sweep.
func NewSweeper(products ProductSource, checker alertChecker, emitter notifier, jobMetrics *metrics.JobMetrics, logg *logger.Logger, criticalRatio float64) (*Sweeper, error) {
	if products == nil || checker == nil || emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product source, alert checker, and emitter required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Sweeper{
		products:      products,
		checker:       checker,
		emitter:       emitter,
		metrics:       jobMetrics,
		logg:          logg,
		criticalRatio: criticalRatio,
	}, nil
}

// Run scans all products at or below their minimum, dedupes against unread
// alerts, and emits notifications for the rest. Per-product check failures
// are logged and skipped so one bad row cannot starve the sweep.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	result := SweepResult{ByStatus: map[enums.StockStatus]int{}}

	products, err := s.products.ListAtOrBelowMin(ctx)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing low stock products failed")
	}

	for i := range products {
		product := &products[i]
		result.Scanned++

		status := stock.Classify(product.CurrentStock, product.MinStock, s.criticalRatio)
		if status == enums.StockStatusNormal {
			continue
		}
		result.ByStatus[status]++

		hasUnread, err := s.checker.HasUnreadForProduct(ctx, product.ID, notificationTypeFor(status))
		if err != nil {
			s.logg.Error(s.logg.WithProductID(ctx, product.ID.String()), "checking existing stock alerts failed", err)
			continue
		}
		if hasUnread {
			continue
		}

		s.emitter.Notify(ctx, product, status)
		result.Alerted++
	}

	for _, status := range []enums.StockStatus{enums.StockStatusLow, enums.StockStatusCritical, enums.StockStatusOutOfStock} {
		s.metrics.SetLowStockCount(string(status), result.ByStatus[status])
	}

	return result, nil
}

func notificationTypeFor(status enums.StockStatus) enums.NotificationType {
	if status == enums.StockStatusOutOfStock {
		return enums.NotificationTypeOutOfStock
	}
	return enums.NotificationTypeLowStock
}
