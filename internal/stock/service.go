package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Service is the stock engine. All stock movements flow through it: the
// ledger row is written first, then the cached counter moves, and a failed
// counter update is compensated by deleting the row it would have backed.
type Service interface {
	RecordStockIn(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error)
	RecordStockOut(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error)
	RecordReturn(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error)
	RecordAdjustment(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error)
	History(ctx context.Context, params HistoryParams) (*HistoryResult, error)
	DailySummary(ctx context.Context, productID *uuid.UUID, from, to time.Time) ([]DailySummaryRow, error)
	RangeStats(ctx context.Context, productID *uuid.UUID, from, to time.Time) (*RangeStats, error)
	Reconcile(ctx context.Context, productID uuid.UUID) (*ReconciliationReport, error)
}

// StatusNotifier receives stock status transitions after a movement commits.
// Implementations must tolerate being called concurrently.
type StatusNotifier interface {
	StockStatusChanged(ctx context.Context, product *models.Product, previous, current enums.StockStatus)
}

type service struct {
	repo     Repository
	notifier StatusNotifier
	logg     *logger.Logger
	cfg      config.StockConfig
	now      func() time.Time
}

// NewService wires the stock engine with its repository and notifier.
func NewService(repo Repository, notifier StatusNotifier, logg *logger.Logger, cfg config.StockConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:     repo,
		notifier: notifier,
		logg:     logg,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func (s *service) RecordStockIn(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return s.record(ctx, input, enums.TransactionTypeIn, input.Quantity)
}

func (s *service) RecordStockOut(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return s.record(ctx, input, enums.TransactionTypeOut, -input.Quantity)
}

func (s *service) RecordReturn(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return s.record(ctx, input, enums.TransactionTypeReturn, input.Quantity)
}

func (s *service) RecordAdjustment(ctx context.Context, input RecordEntryInput) (*RecordEntryResult, error) {
	if input.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta must be non-zero")
	}
	return s.record(ctx, input, enums.TransactionTypeAdjustment, input.Quantity)
}

// record is the single write path. Ledger first, counter second; a counter
// failure of any kind deletes the ledger row again so the two never drift.
func (s *service) record(ctx context.Context, input RecordEntryInput, txType enums.TransactionType, delta int) (*RecordEntryResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	product, err := s.repo.GetProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if delta < 0 && product.CurrentStock+delta < 0 {
		return nil, movementRejection(txType, input.ProductID, delta, product.CurrentStock)
	}

	unitPrice := product.UnitPrice
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		unitPrice = *input.UnitPrice
	}
	// Adjustments correct the count; they carry no monetary value.
	if txType == enums.TransactionTypeAdjustment {
		unitPrice = decimal.Zero
	}

	quantity := delta
	if quantity < 0 {
		quantity = -quantity
	}

	txn := &models.StockTransaction{
		ProductID:      input.ProductID,
		Type:           txType,
		Quantity:       quantity,
		SignedDelta:    delta,
		UnitPrice:      unitPrice,
		TotalAmount:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CounterpartyID: input.CounterpartyID,
		Notes:          input.Notes,
		UserID:         input.UserID,
	}

	if err := s.repo.InsertTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "insert stock transaction")
	}

	updated, applied, err := s.repo.ApplyDelta(ctx, input.ProductID, delta)
	if err != nil {
		return nil, s.compensate(ctx, txn.ID, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update product stock"))
	}
	if !applied {
		// A concurrent writer drained the stock between our pre-check and
		// the guarded UPDATE. The ledger row is already down, so it must
		// be compensated like any other counter failure.
		return nil, s.compensate(ctx, txn.ID, movementRejection(txType, input.ProductID, delta, updated.CurrentStock))
	}

	previous := Classify(updated.CurrentStock-delta, updated.MinStock, s.cfg.CriticalRatio)
	current := Classify(updated.CurrentStock, updated.MinStock, s.cfg.CriticalRatio)

	if s.notifier != nil && current.WorseThan(previous) {
		s.notifier.StockStatusChanged(ctx, updated, previous, current)
	}

	return &RecordEntryResult{
		Transaction:    txn,
		Product:        updated,
		PreviousStatus: previous,
		CurrentStatus:  current,
	}, nil
}

// compensate deletes the ledger row written just before a counter failure.
// The delete is retried with backoff; if it still fails the ledger and the
// counter disagree and the caller gets a reconciliation error carrying both
// causes.
func (s *service) compensate(ctx context.Context, txnID uuid.UUID, cause error) error {
	backoff := retry.WithMaxRetries(
		uint64(s.cfg.CompensationAttempts),
		retry.NewConstant(s.cfg.CompensationBackoff),
	)

	deleteErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.repo.DeleteTransaction(ctx, txnID); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if deleteErr == nil {
		return cause
	}

	ctx = s.logg.WithField(ctx, "transaction_id", txnID.String())
	s.logg.Error(ctx, "compensating delete failed, ledger and counter have diverged", deleteErr)

	return pkgerrors.Wrap(
		pkgerrors.CodeReconciliation,
		multierr.Append(cause, deleteErr),
		"stock ledger compensation failed",
	)
}

func insufficientCode(txType enums.TransactionType) pkgerrors.Code {
	if txType == enums.TransactionTypeAdjustment {
		return pkgerrors.CodeInvalidAdjustment
	}
	return pkgerrors.CodeInsufficientStock
}

func movementRejection(txType enums.TransactionType, productID uuid.UUID, delta, currentStock int) error {
	return pkgerrors.New(insufficientCode(txType), "stock movement rejected").
		WithDetails(map[string]any{
			"product_id":      productID,
			"requested_delta": delta,
			"current_stock":   currentStock,
		})
}

func (s *service) History(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type filter")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = s.cfg.HistoryDefaultLimit
	}

	query := listTransactionsParams{
		ProductID: params.ProductID,
		Limit:     limit,
	}
	if params.Type != nil {
		value := string(*params.Type)
		query.Type = &value
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListTransactions(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock transactions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &HistoryResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) DailySummary(ctx context.Context, productID *uuid.UUID, from, to time.Time) ([]DailySummaryRow, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	rows, err := s.repo.DailySummary(ctx, productID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate daily summary")
	}
	return rows, nil
}

func (s *service) RangeStats(ctx context.Context, productID *uuid.UUID, from, to time.Time) (*RangeStats, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	stats, err := s.repo.RangeStats(ctx, productID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate range stats")
	}
	return stats, nil
}

func (s *service) Reconcile(ctx context.Context, productID uuid.UUID) (*ReconciliationReport, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	ledgerStock, err := s.repo.SumSignedDeltas(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum ledger deltas")
	}

	report := &ReconciliationReport{
		ProductID:    productID,
		CachedStock:  product.CurrentStock,
		LedgerStock:  ledgerStock,
		Consistent:   product.CurrentStock == ledgerStock,
		CheckedAtUTC: s.now().UTC(),
	}
	if !report.Consistent {
		ctx = s.logg.WithProductID(ctx, productID.String())
		s.logg.Warn(ctx, "cached stock diverges from ledger sum")
	}
	return report, nil
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	if !to.After(from) {
		return pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	return nil
}
