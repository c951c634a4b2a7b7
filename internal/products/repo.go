package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Repository manages product catalog persistence. It never touches
// current_stock; the ledger owns that column.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
	ListOutOfStock(ctx context.Context) ([]models.Product, error)
	ListAtOrBelowMin(ctx context.Context) ([]models.Product, error)
	SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	Count(ctx context.Context) (int64, error)
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listProductsParams struct {
	Search   string
	Category string
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("id = ?", id).
		First(&product).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

// ListLowStock returns products at or below their minimum that still have
// units on hand. Empty products show up in ListOutOfStock instead.
func (r *repositoryImpl) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("current_stock > 0 AND min_stock > 0 AND current_stock <= min_stock").
		Order("current_stock ASC, name ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repositoryImpl) ListOutOfStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("current_stock <= 0").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListAtOrBelowMin feeds the alert sweep: every product that classifies
// below normal, including empty ones.
func (r *repositoryImpl) ListAtOrBelowMin(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("current_stock <= 0 OR (min_stock > 0 AND current_stock <= min_stock)").
		Order("current_stock ASC, name ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repositoryImpl) SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&rows).
		Error
	return rows, err
}

func (r *repositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// InventoryValue sums current_stock * unit_price across the catalog.
func (r *repositoryImpl) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COALESCE(SUM(current_stock * unit_price), 0) AS total").
		Scan(&row).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
