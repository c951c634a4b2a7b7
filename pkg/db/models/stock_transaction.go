package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// StockTransaction is an immutable ledger row for one stock movement.
// Quantity is always stored non-negative; the type encodes direction for
// in/out/return rows, and SignedDelta keeps the exact balance delta so
// the ledger alone reconciles the product counter (adjustments carry a
// sign that the type cannot express).
// Rows are never updated; corrections happen through new adjustment or
// return entries. The only delete path is the engine's same-request
// compensation after a failed balance update.
type StockTransaction struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID      uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Product        *Product              `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Type           enums.TransactionType `gorm:"column:transaction_type;type:transaction_type;not null;index" json:"transaction_type"`
	Quantity       int                   `gorm:"column:quantity;not null" json:"quantity"`
	SignedDelta    int                   `gorm:"column:signed_delta;not null" json:"signed_delta"`
	UnitPrice      decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	TotalAmount    decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	CounterpartyID *string               `gorm:"column:counterparty_id" json:"counterparty_id,omitempty"`
	Notes          *string               `gorm:"column:notes" json:"notes,omitempty"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}
