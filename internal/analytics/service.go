package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/internal/products"
	"github.com/stockroomhq/stockroom-backend/internal/stock"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// catalogSource is the slice of the product repository the dashboard reads.
type catalogSource interface {
	Count(ctx context.Context) (int64, error)
	ListAtOrBelowMin(ctx context.Context) ([]models.Product, error)
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
	CountByCategory(ctx context.Context) ([]products.CategoryCount, error)
}

// ledgerStats is the slice of the stock engine the dashboard reads.
type ledgerStats interface {
	RangeStats(ctx context.Context, productID *uuid.UUID, from, to time.Time) (*stock.RangeStats, error)
	DailySummary(ctx context.Context, productID *uuid.UUID, from, to time.Time) ([]stock.DailySummaryRow, error)
}

// Dashboard is the inventory overview served to the landing page.
type Dashboard struct {
	TotalProducts   int64                    `json:"total_products"`
	LowStockCount   int                      `json:"low_stock_count"`
	OutOfStockCount int                      `json:"out_of_stock_count"`
	InventoryValue  decimal.Decimal          `json:"inventory_value"`
	ByCategory      []products.CategoryCount `json:"by_category"`
	Last30Days      *stock.RangeStats        `json:"last_30_days"`
}

// TransactionsParams configures the transaction analytics window.
type TransactionsParams struct {
	ProductID *uuid.UUID
	From      time.Time
	To        time.Time
}

// TransactionsReport combines window totals with the per-day breakdown.
type TransactionsReport struct {
	Stats *stock.RangeStats       `json:"stats"`
	Daily []stock.DailySummaryRow `json:"daily"`
}

// Service exposes read-only inventory analytics.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Transactions(ctx context.Context, params TransactionsParams) (*TransactionsReport, error)
}

type service struct {
	catalog catalogSource
	ledger  ledgerStats
	cfg     config.StockConfig
	now     func() time.Time
}

// NewService wires the analytics reads.
func NewService(catalog catalogSource, ledger ledgerStats, cfg config.StockConfig) (Service, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog source required")
	}
	if ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger stats required")
	}
	return &service{
		catalog: catalog,
		ledger:  ledger,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	total, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	belowMin, err := s.catalog.ListAtOrBelowMin(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	low := 0
	out := 0
	for _, product := range belowMin {
		switch stock.Classify(product.CurrentStock, product.MinStock, s.cfg.CriticalRatio) {
		case enums.StockStatusOutOfStock:
			out++
		case enums.StockStatusLow, enums.StockStatusCritical:
			low++
		}
	}

	value, err := s.catalog.InventoryValue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute inventory value")
	}

	byCategory, err := s.catalog.CountByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products by category")
	}

	to := s.now().UTC()
	stats, err := s.ledger.RangeStats(ctx, nil, to.AddDate(0, 0, -30), to)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalProducts:   total,
		LowStockCount:   low,
		OutOfStockCount: out,
		InventoryValue:  value,
		ByCategory:      byCategory,
		Last30Days:      stats,
	}, nil
}

func (s *service) Transactions(ctx context.Context, params TransactionsParams) (*TransactionsReport, error) {
	stats, err := s.ledger.RangeStats(ctx, params.ProductID, params.From, params.To)
	if err != nil {
		return nil, err
	}
	daily, err := s.ledger.DailySummary(ctx, params.ProductID, params.From, params.To)
	if err != nil {
		return nil, err
	}
	return &TransactionsReport{Stats: stats, Daily: daily}, nil
}
