package stock

import (
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Classify maps a stock level onto a status bucket. Boundaries are
// inclusive: a stock level exactly at min_stock is low, exactly at
// min_stock*criticalRatio is critical. A zero or negative min_stock
// disables the low/critical buckets so untracked products stay normal.
func Classify(currentStock, minStock int, criticalRatio float64) enums.StockStatus {
	if currentStock <= 0 {
		return enums.StockStatusOutOfStock
	}
	if minStock <= 0 {
		return enums.StockStatusNormal
	}
	if float64(currentStock) <= float64(minStock)*criticalRatio {
		return enums.StockStatusCritical
	}
	if currentStock <= minStock {
		return enums.StockStatusLow
	}
	return enums.StockStatusNormal
}
