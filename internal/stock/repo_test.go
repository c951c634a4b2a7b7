package stock

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
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
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
);`
	transactions := `
CREATE TABLE IF NOT EXISTS stock_transactions (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  transaction_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  signed_delta INTEGER NOT NULL,
  unit_price TEXT NOT NULL DEFAULT '0',
  total_amount TEXT NOT NULL DEFAULT '0',
  counterparty_id TEXT,
  notes TEXT,
  user_id TEXT NOT NULL,
  created_at DATETIME
);`

	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock, min int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.New(),
		SKU:          "SKU-" + uuid.NewString()[:8],
		Name:         "Test Product",
		Category:     "test",
		CurrentStock: stock,
		MinStock:     min,
		UnitPrice:    decimal.NewFromFloat(2.5),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedTransaction(t *testing.T, db *gorm.DB, productID uuid.UUID, txType enums.TransactionType, qty, delta int, createdAt time.Time) *models.StockTransaction {
	t.Helper()

	price := decimal.NewFromFloat(2.5)
	txn := &models.StockTransaction{
		ID:          uuid.New(),
		ProductID:   productID,
		Type:        txType,
		Quantity:    qty,
		SignedDelta: delta,
		UnitPrice:   price,
		TotalAmount: price.Mul(decimal.NewFromInt(int64(qty))),
		UserID:      uuid.New(),
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func TestApplyDeltaGuard(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 10)

	updated, applied, err := repo.ApplyDelta(ctx, product.ID, -3)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 2, updated.CurrentStock)

	updated, applied, err = repo.ApplyDelta(ctx, product.ID, -3)
	require.NoError(t, err)
	assert.False(t, applied, "delta past zero must be rejected")
	assert.Equal(t, 2, updated.CurrentStock, "rejected delta leaves the counter untouched")

	updated, applied, err = repo.ApplyDelta(ctx, product.ID, -2)
	require.NoError(t, err)
	assert.True(t, applied, "draining to exactly zero is allowed")
	assert.Equal(t, 0, updated.CurrentStock)
}

func TestApplyDeltaLostUpdateIsImpossible(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 10)

	// Both writers observed stock=5 and each tries to take all of it.
	// The guard lives in the UPDATE itself, so only one can win no matter
	// what either of them read beforehand.
	_, firstApplied, err := repo.ApplyDelta(ctx, product.ID, -5)
	require.NoError(t, err)
	updated, secondApplied, err := repo.ApplyDelta(ctx, product.ID, -5)
	require.NoError(t, err)

	assert.True(t, firstApplied)
	assert.False(t, secondApplied)
	assert.Equal(t, 0, updated.CurrentStock)
}

func TestApplyDeltaUnknownProduct(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.ApplyDelta(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInsertAndDeleteTransaction(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 10, 5)

	txn := seedTransaction(t, db, product.ID, enums.TransactionTypeIn, 4, 4, time.Now().UTC())

	sum, err := repo.SumSignedDeltas(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, sum)

	require.NoError(t, repo.DeleteTransaction(ctx, txn.ID))

	sum, err = repo.SumSignedDeltas(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum, "compensated row no longer counts toward the ledger sum")
}

func TestListTransactionsPagination(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 10, 5)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	oldest := seedTransaction(t, db, product.ID, enums.TransactionTypeIn, 5, 5, base)
	middle := seedTransaction(t, db, product.ID, enums.TransactionTypeOut, 2, -2, base.Add(time.Hour))
	newest := seedTransaction(t, db, product.ID, enums.TransactionTypeOut, 1, -1, base.Add(2*time.Hour))

	rows, next, err := repo.ListTransactions(ctx, listTransactionsParams{ProductID: product.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, middle.ID, rows[1].ID)
	require.NotNil(t, next)

	rows, next, err = repo.ListTransactions(ctx, listTransactionsParams{ProductID: product.ID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID, "the page boundary row is not skipped")
	assert.Nil(t, next)

	outType := string(enums.TransactionTypeOut)
	rows, _, err = repo.ListTransactions(ctx, listTransactionsParams{ProductID: product.ID, Limit: 10, Type: &outType})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestListTransactionsAcrossProducts(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	first := seedProduct(t, db, 10, 5)
	second := seedProduct(t, db, 10, 5)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedTransaction(t, db, first.ID, enums.TransactionTypeIn, 5, 5, base)
	seedTransaction(t, db, second.ID, enums.TransactionTypeOut, 2, -2, base.Add(time.Hour))

	rows, next, err := repo.ListTransactions(ctx, listTransactionsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2, "zero product id lists the whole ledger")
	assert.Nil(t, next)
	assert.Equal(t, second.ID, rows[0].ProductID)
	assert.Equal(t, first.ID, rows[1].ProductID)
}

func TestDailySummaryAggregates(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 10, 5)

	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)

	seedTransaction(t, db, product.ID, enums.TransactionTypeIn, 10, 10, day1)
	seedTransaction(t, db, product.ID, enums.TransactionTypeOut, 3, -3, day1.Add(time.Hour))
	seedTransaction(t, db, product.ID, enums.TransactionTypeOut, 2, -2, day2)
	seedTransaction(t, db, product.ID, enums.TransactionTypeAdjustment, 1, -1, day2.Add(time.Hour))

	rows, err := repo.DailySummary(ctx, &product.ID, day1.Add(-time.Hour), day2.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2026-08-01", rows[0].Date)
	assert.Equal(t, product.ID, rows[0].ProductID)
	assert.Equal(t, product.Name, rows[0].ProductName)
	assert.Equal(t, 10, rows[0].InQuantity)
	assert.Equal(t, 3, rows[0].OutQuantity)
	assert.Equal(t, 7, rows[0].NetChange)

	assert.Equal(t, "2026-08-02", rows[1].Date)
	assert.Equal(t, 0, rows[1].InQuantity)
	assert.Equal(t, 2, rows[1].OutQuantity)
	assert.Equal(t, -3, rows[1].NetChange, "adjustments count toward net change but not in/out totals")
}

func TestDailySummarySplitsPerProduct(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	first := seedProduct(t, db, 10, 5)
	second := seedProduct(t, db, 10, 5)
	day := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	seedTransaction(t, db, first.ID, enums.TransactionTypeIn, 10, 10, day)
	seedTransaction(t, db, first.ID, enums.TransactionTypeOut, 3, -3, day.Add(time.Hour))
	seedTransaction(t, db, second.ID, enums.TransactionTypeOut, 2, -2, day.Add(2*time.Hour))

	rows, err := repo.DailySummary(ctx, nil, day.Add(-time.Hour), day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2, "same-day movements stay separated per product")

	byProduct := map[uuid.UUID]DailySummaryRow{}
	for _, row := range rows {
		assert.Equal(t, "2026-08-01", row.Date)
		byProduct[row.ProductID] = row
	}

	require.Contains(t, byProduct, first.ID)
	assert.Equal(t, 10, byProduct[first.ID].InQuantity)
	assert.Equal(t, 3, byProduct[first.ID].OutQuantity)
	assert.Equal(t, 7, byProduct[first.ID].NetChange)

	require.Contains(t, byProduct, second.ID)
	assert.Equal(t, 0, byProduct[second.ID].InQuantity)
	assert.Equal(t, 2, byProduct[second.ID].OutQuantity)
	assert.Equal(t, -2, byProduct[second.ID].NetChange)
}

func TestRangeStats(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 10, 5)
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	seedTransaction(t, db, product.ID, enums.TransactionTypeIn, 10, 10, base)
	seedTransaction(t, db, product.ID, enums.TransactionTypeReturn, 1, 1, base.Add(time.Hour))
	seedTransaction(t, db, product.ID, enums.TransactionTypeOut, 4, -4, base.Add(2*time.Hour))
	seedTransaction(t, db, product.ID, enums.TransactionTypeAdjustment, 2, -2, base.Add(3*time.Hour))

	stats, err := repo.RangeStats(ctx, &product.ID, base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 11, stats.TotalIn, "returns count as inbound")
	assert.Equal(t, 4, stats.TotalOut)
	assert.Equal(t, 2, stats.TotalAdjustments, "adjustments are totaled separately")
	assert.Equal(t, 5, stats.NetChange)
	assert.Equal(t, int64(4), stats.TransactionCount)
	assert.True(t, stats.InAmount.Equal(decimal.NewFromFloat(27.5)))
	assert.True(t, stats.OutAmount.Equal(decimal.NewFromFloat(10)))
}

func TestEngineAgainstRealDatabase(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	product := seedProduct(t, db, 0, 4)
	notifier := &fakeNotifier{}
	svc := newTestService(t, repo, notifier)
	ctx := context.Background()
	userID := uuid.New()

	in, err := svc.RecordStockIn(ctx, RecordEntryInput{ProductID: product.ID, Quantity: 10, UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 10, in.Product.CurrentStock)

	out, err := svc.RecordStockOut(ctx, RecordEntryInput{ProductID: product.ID, Quantity: 8, UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Product.CurrentStock)
	assert.Equal(t, enums.StockStatusCritical, out.CurrentStatus)
	require.Len(t, notifier.calls, 1, "single worsening transition notifies once")

	_, err = svc.RecordStockOut(ctx, RecordEntryInput{ProductID: product.ID, Quantity: 5, UserID: userID})
	require.Error(t, err)

	report, err := svc.Reconcile(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent, "rejected movement left no ledger residue")
	assert.Equal(t, 2, report.LedgerStock)
}

func TestConcurrentStockOutSingleWinner(t *testing.T) {
	db := setupStockTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// The in-memory database lives on one connection.
	sqlDB.SetMaxOpenConns(1)

	repo := NewRepository(db)
	product := seedProduct(t, db, 5, 2)
	svc := newTestService(t, repo, nil)
	userID := uuid.New()

	start := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := svc.RecordStockOut(context.Background(), RecordEntryInput{
				ProductID: product.ID,
				Quantity:  5,
				UserID:    userID,
			})
			errs <- err
		}()
	}
	close(start)

	failures := 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures++
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
		}
	}
	assert.Equal(t, 1, failures, "exactly one writer takes the last units")

	updated, err := repo.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentStock)

	var count int64
	require.NoError(t, db.Model(&models.StockTransaction{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "the losing writer leaves no ledger row")
}
