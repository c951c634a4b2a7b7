package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/stock"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// stockRecorder is the slice of the stock engine the delivery flow needs.
type stockRecorder interface {
	RecordStockIn(ctx context.Context, input stock.RecordEntryInput) (*stock.RecordEntryResult, error)
}

// Notifier announces order lifecycle events. The alerts emitter satisfies it.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.PurchaseOrder)
	OrderDelivered(ctx context.Context, order *models.PurchaseOrder)
}

// Service exposes purchase order operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.PurchaseOrder, error)
}

type service struct {
	repo     Repository
	stock    stockRecorder
	notifier Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the purchase order service. The notifier may be nil when
// order events should not fan out.
func NewService(repo Repository, recorder stockRecorder, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock recorder required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:     repo,
		stock:    recorder,
		notifier: notifier,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item unit_price must be non-negative")
		}
	}

	exists, err := s.repo.SupplierExists(ctx, input.SupplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check supplier")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	order := &models.PurchaseOrder{
		SupplierID:       input.SupplierID,
		Status:           enums.PurchaseOrderStatusPending,
		OrderDate:        s.now().UTC(),
		ExpectedDelivery: input.ExpectedDelivery,
		Notes:            input.Notes,
		CreatedBy:        input.CreatedBy,
	}
	total := decimal.Zero
	for _, item := range input.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, models.PurchaseOrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	order.TotalAmount = total

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, order)
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	query := listOrdersParams{Status: params.Status, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// UpdateStatus moves the order through the pending → confirmed → shipped →
// delivered chain (cancel is allowed before shipping). Delivery records a
// stock-in movement per item.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.PurchaseOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == input.Status {
		return order, nil
	}
	if !order.Status.CanTransitionTo(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal status transition")
	}

	applied, err := s.repo.UpdateStatus(ctx, input.OrderID, order.Status, input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
	}
	order.Status = input.Status

	if input.Status == enums.PurchaseOrderStatusDelivered {
		if err := s.receiveDelivery(ctx, order, input.UserID); err != nil {
			return order, err
		}
		if s.notifier != nil {
			s.notifier.OrderDelivered(ctx, order)
		}
	}
	return order, nil
}

// receiveDelivery books every order line into the ledger. The status flip
// above is the exactly-once guard, so a partial failure here leaves a
// delivered order with missing movements; that is surfaced as a
// reconciliation error carrying every per-item cause.
func (s *service) receiveDelivery(ctx context.Context, order *models.PurchaseOrder, userID uuid.UUID) error {
	supplierRef := order.SupplierID.String()

	var failed error
	for _, item := range order.Items {
		price := item.UnitPrice
		_, err := s.stock.RecordStockIn(ctx, stock.RecordEntryInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      &price,
			CounterpartyID: &supplierRef,
			Notes:          deliveryNote(order.ID),
			UserID:         userID,
		})
		if err != nil {
			failed = multierr.Append(failed, err)
		}
	}
	if failed == nil {
		return nil
	}

	s.logg.Error(ctx, "order delivered with incomplete stock movements", failed)
	return pkgerrors.Wrap(pkgerrors.CodeReconciliation, failed, "delivery recorded but some stock movements failed")
}

func deliveryNote(orderID uuid.UUID) *string {
	note := "purchase order " + orderID.String() + " delivered"
	return &note
}
