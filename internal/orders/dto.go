package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// OrderItemInput is one product line on a new purchase order.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderInput carries a new purchase order. Line totals and the order
// total are recomputed server-side; client-sent totals are never trusted.
type CreateOrderInput struct {
	SupplierID       uuid.UUID
	ExpectedDelivery *time.Time
	Notes            *string
	Items            []OrderItemInput
	CreatedBy        uuid.UUID
}

// UpdateStatusInput moves an order along the status state machine.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.PurchaseOrderStatus
	UserID  uuid.UUID
}

// ListParams configures filtering and pagination for purchase orders.
type ListParams struct {
	Status *enums.PurchaseOrderStatus
	Limit  int
	Cursor string
}

// ListResult wraps an order page and the cursor for the next one.
type ListResult struct {
	Items  []models.PurchaseOrder `json:"items"`
	Cursor string                 `json:"cursor"`
}
