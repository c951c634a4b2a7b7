package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// CreateProductInput holds the validated payload to create a product.
// Stock starts at zero; every unit that enters or leaves afterwards goes
// through the ledger.
type CreateProductInput struct {
	SKU         string
	Name        string
	Category    string
	Description *string
	MinStock    int
	MaxStock    int
	UnitPrice   decimal.Decimal
	SupplierID  *uuid.UUID
}

// UpdateProductInput holds optional mutation values for a product.
// current_stock is deliberately absent.
type UpdateProductInput struct {
	SKU         *string
	Name        *string
	Category    *string
	Description *string
	MinStock    *int
	MaxStock    *int
	UnitPrice   *decimal.Decimal
	SupplierID  *uuid.UUID
}

// ListParams configures search, filtering, and pagination for the
// product catalog.
type ListParams struct {
	Search   string
	Category string
	Limit    int
	Cursor   string
}

// ListResult wraps a product page and the cursor for the next one.
type ListResult struct {
	Items  []models.Product `json:"items"`
	Cursor string           `json:"cursor"`
}

// CategoryCount pairs a category with the number of products in it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
