package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// PurchaseOrder tracks a replenishment order against a supplier.
type PurchaseOrder struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplierID       uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null" json:"supplier_id"`
	Supplier         *Supplier                 `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status           enums.PurchaseOrderStatus `gorm:"column:status;type:purchase_order_status;not null;default:pending" json:"status"`
	OrderDate        time.Time                 `gorm:"column:order_date;not null" json:"order_date"`
	ExpectedDelivery *time.Time                `gorm:"column:expected_delivery" json:"expected_delivery,omitempty"`
	TotalAmount      decimal.Decimal           `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Notes            *string                   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedBy        uuid.UUID                 `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	Items            []PurchaseOrderItem       `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// PurchaseOrderItem is a single product line on a purchase order.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"column:purchase_order_id;type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity        int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null" json:"total_price"`
}
