package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. CurrentStock is a cached counter over the
// stock_transactions ledger and is mutated only through the stock engine.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU          string          `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Category     string          `gorm:"column:category;not null" json:"category"`
	Description  *string         `gorm:"column:description" json:"description,omitempty"`
	CurrentStock int             `gorm:"column:current_stock;not null;default:0" json:"current_stock"`
	MinStock     int             `gorm:"column:min_stock;not null;default:0" json:"min_stock"`
	MaxStock     int             `gorm:"column:max_stock;not null;default:0" json:"max_stock"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	SupplierID   *uuid.UUID      `gorm:"column:supplier_id;type:uuid" json:"supplier_id,omitempty"`
	Supplier     *Supplier       `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL" json:"supplier,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
