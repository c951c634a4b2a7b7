package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Repository manages persistence for the stock ledger and the cached
// product counter it reconciles against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	InsertTransaction(ctx context.Context, txn *models.StockTransaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ApplyDelta(ctx context.Context, productID uuid.UUID, delta int) (*models.Product, bool, error)
	ListTransactions(ctx context.Context, params listTransactionsParams) ([]models.StockTransaction, *pagination.Cursor, error)
	DailySummary(ctx context.Context, productID *uuid.UUID, from, to time.Time) ([]DailySummaryRow, error)
	RangeStats(ctx context.Context, productID *uuid.UUID, from, to time.Time) (*RangeStats, error)
	SumSignedDeltas(ctx context.Context, productID uuid.UUID) (int, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listTransactionsParams struct {
	ProductID uuid.UUID
	Type      *string
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// InsertTransaction assigns the row ID before writing so the caller can
// compensate with a delete even when the insert's RETURNING clause is
// unavailable.
func (r *repositoryImpl) InsertTransaction(ctx context.Context, txn *models.StockTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repositoryImpl) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StockTransaction{}).Error
}

// ApplyDelta moves the cached counter by delta in a single conditional
// UPDATE. The guard rejects any delta that would drive the counter
// negative, so concurrent writers cannot oversell between a read and a
// write. The second return value is false when the guard rejected the
// update while the product row exists.
func (r *repositoryImpl) ApplyDelta(ctx context.Context, productID uuid.UUID, delta int) (*models.Product, bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND current_stock + ? >= 0", productID, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		product, err := r.GetProduct(ctx, productID)
		if err != nil {
			return nil, false, err
		}
		return product, false, nil
	}

	product, err := r.GetProduct(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	return product, true, nil
}

func (r *repositoryImpl) ListTransactions(ctx context.Context, params listTransactionsParams) ([]models.StockTransaction, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.StockTransaction{})
	if params.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Type != nil {
		query = query.Where("transaction_type = ?", *params.Type)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.StockTransaction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	// The cursor points at the last returned row; the strict predicate
	// above then starts the next page just past it.
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// DailySummary aggregates per product per day, so one busy day still shows
// which products moved.
func (r *repositoryImpl) DailySummary(ctx context.Context, productID *uuid.UUID, from, to time.Time) ([]DailySummaryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select(`CAST(DATE(stock_transactions.created_at) AS TEXT) AS date,
			stock_transactions.product_id AS product_id,
			products.name AS product_name,
			COALESCE(SUM(CASE WHEN transaction_type IN ('in', 'return') THEN quantity ELSE 0 END), 0) AS in_quantity,
			COALESCE(SUM(CASE WHEN transaction_type = 'out' THEN quantity ELSE 0 END), 0) AS out_quantity,
			COALESCE(SUM(CASE WHEN transaction_type IN ('in', 'return') THEN total_amount ELSE 0 END), 0) AS in_amount,
			COALESCE(SUM(CASE WHEN transaction_type = 'out' THEN total_amount ELSE 0 END), 0) AS out_amount,
			COALESCE(SUM(signed_delta), 0) AS net_change`).
		Joins("JOIN products ON products.id = stock_transactions.product_id").
		Where("stock_transactions.created_at >= ? AND stock_transactions.created_at < ?", from, to)
	if productID != nil {
		query = query.Where("stock_transactions.product_id = ?", *productID)
	}

	var rows []DailySummaryRow
	err := query.
		Group("DATE(stock_transactions.created_at), stock_transactions.product_id, products.name").
		Order("date ASC, product_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) RangeStats(ctx context.Context, productID *uuid.UUID, from, to time.Time) (*RangeStats, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select(`COALESCE(SUM(CASE WHEN transaction_type IN ('in', 'return') THEN quantity ELSE 0 END), 0) AS total_in,
			COALESCE(SUM(CASE WHEN transaction_type = 'out' THEN quantity ELSE 0 END), 0) AS total_out,
			COALESCE(SUM(CASE WHEN transaction_type = 'adjustment' THEN quantity ELSE 0 END), 0) AS total_adjustments,
			COALESCE(SUM(signed_delta), 0) AS net_change,
			COUNT(*) AS transaction_count,
			COALESCE(SUM(CASE WHEN transaction_type IN ('in', 'return') THEN total_amount ELSE 0 END), 0) AS in_amount,
			COALESCE(SUM(CASE WHEN transaction_type = 'out' THEN total_amount ELSE 0 END), 0) AS out_amount`).
		Where("created_at >= ? AND created_at < ?", from, to)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	var stats RangeStats
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	stats.From = from
	stats.To = to
	return &stats, nil
}

func (r *repositoryImpl) SumSignedDeltas(ctx context.Context, productID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select("COALESCE(SUM(signed_delta), 0)").
		Where("product_id = ?", productID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
