package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// RecordEntryInput carries one stock movement into the engine. Quantity is
// interpreted by the operation: in/out/return take a positive count, while
// adjustments take a signed delta.
type RecordEntryInput struct {
	ProductID      uuid.UUID
	Quantity       int
	UnitPrice      *decimal.Decimal
	CounterpartyID *string
	Notes          *string
	UserID         uuid.UUID
}

// RecordEntryResult reports the committed ledger row plus the stock status
// transition that resulted from it.
type RecordEntryResult struct {
	Transaction    *models.StockTransaction `json:"transaction"`
	Product        *models.Product          `json:"product"`
	PreviousStatus enums.StockStatus        `json:"previous_status"`
	CurrentStatus  enums.StockStatus        `json:"current_status"`
}

// HistoryParams configures the paginated ledger listing. A zero ProductID
// lists across all products.
type HistoryParams struct {
	ProductID uuid.UUID
	Type      *enums.TransactionType
	Limit     int
	Cursor    string
}

// HistoryResult wraps one ledger page and the cursor for the next.
type HistoryResult struct {
	Items  []models.StockTransaction `json:"items"`
	Cursor string                    `json:"cursor"`
}

// DailySummaryRow aggregates one product's ledger activity for one day.
type DailySummaryRow struct {
	Date        string          `json:"date"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	InQuantity  int             `json:"in_quantity"`
	OutQuantity int             `json:"out_quantity"`
	InAmount    decimal.Decimal `json:"in_amount"`
	OutAmount   decimal.Decimal `json:"out_amount"`
	NetChange   int             `json:"net_change"`
}

// RangeStats aggregates ledger activity over an arbitrary window.
type RangeStats struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	TotalIn          int             `json:"total_in"`
	TotalOut         int             `json:"total_out"`
	TotalAdjustments int             `json:"total_adjustments"`
	NetChange        int             `json:"net_change"`
	TransactionCount int64           `json:"transaction_count"`
	InAmount         decimal.Decimal `json:"in_amount"`
	OutAmount        decimal.Decimal `json:"out_amount"`
}

// ReconciliationReport compares the cached product counter with the ledger sum.
type ReconciliationReport struct {
	ProductID    uuid.UUID `json:"product_id"`
	CachedStock  int       `json:"cached_stock"`
	LedgerStock  int       `json:"ledger_stock"`
	Consistent   bool      `json:"consistent"`
	CheckedAtUTC time.Time `json:"checked_at_utc"`
}
