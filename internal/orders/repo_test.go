package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact_person TEXT,
  email TEXT,
  phone TEXT,
  address TEXT,
  lead_time_days INTEGER NOT NULL DEFAULT 7,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  description TEXT,
  current_stock INTEGER NOT NULL DEFAULT 0,
  min_stock INTEGER NOT NULL DEFAULT 0,
  max_stock INTEGER NOT NULL DEFAULT 0,
  unit_price TEXT NOT NULL DEFAULT '0',
  supplier_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  order_date DATETIME NOT NULL,
  expected_delivery DATETIME,
  total_amount TEXT NOT NULL DEFAULT '0',
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchase_order_items (
  id TEXT PRIMARY KEY,
  purchase_order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL DEFAULT '0',
  total_price TEXT NOT NULL DEFAULT '0'
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedSupplier(t *testing.T, db *gorm.DB) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{ID: uuid.New(), Name: "Acme Supplies"}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func seedOrder(t *testing.T, db *gorm.DB, supplierID uuid.UUID, status enums.PurchaseOrderStatus, createdAt time.Time) *models.PurchaseOrder {
	t.Helper()
	order := &models.PurchaseOrder{
		ID:          uuid.New(),
		SupplierID:  supplierID,
		Status:      status,
		OrderDate:   createdAt,
		TotalAmount: decimal.NewFromInt(100),
		CreatedBy:   uuid.New(),
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCreatePersistsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	supplier := seedSupplier(t, db)

	order := &models.PurchaseOrder{
		SupplierID:  supplier.ID,
		Status:      enums.PurchaseOrderStatusPending,
		OrderDate:   time.Now().UTC(),
		TotalAmount: decimal.NewFromFloat(27.5),
		CreatedBy:   uuid.New(),
		Items: []models.PurchaseOrderItem{
			{ProductID: uuid.New(), Quantity: 5, UnitPrice: decimal.NewFromFloat(2.5), TotalPrice: decimal.NewFromFloat(12.5)},
			{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(15)},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NotEqual(t, uuid.Nil, order.ID)

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, order.ID, loaded.Items[0].PurchaseOrderID)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromFloat(27.5)))
}

func TestListFilterAndPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	supplier := seedSupplier(t, db)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedOrder(t, db, supplier.ID, enums.PurchaseOrderStatusPending, base)
	seedOrder(t, db, supplier.ID, enums.PurchaseOrderStatusPending, base.Add(time.Minute))
	shipped := seedOrder(t, db, supplier.ID, enums.PurchaseOrderStatusShipped, base.Add(2*time.Minute))

	status := enums.PurchaseOrderStatusShipped
	rows, _, err := repo.List(ctx, listOrdersParams{Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, shipped.ID, rows[0].ID)

	first, next, err := repo.List(ctx, listOrdersParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)

	second, final, err := repo.List(ctx, listOrdersParams{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, final)
}

func TestUpdateStatusGuard(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	supplier := seedSupplier(t, db)
	order := seedOrder(t, db, supplier.ID, enums.PurchaseOrderStatusShipped, time.Now().UTC())

	applied, err := repo.UpdateStatus(ctx, order.ID, enums.PurchaseOrderStatusShipped, enums.PurchaseOrderStatusDelivered)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.UpdateStatus(ctx, order.ID, enums.PurchaseOrderStatusShipped, enums.PurchaseOrderStatusDelivered)
	require.NoError(t, err)
	assert.False(t, applied, "second delivery of the same order must be rejected")
}

func TestSupplierExists(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	supplier := seedSupplier(t, db)

	exists, err := repo.SupplierExists(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SupplierExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}
