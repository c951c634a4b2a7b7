package enums

import "fmt"

// StockStatus is the derived stock level classification for a product.
// It is recomputed on read and never persisted.
type StockStatus string

const (
	StockStatusNormal     StockStatus = "normal"
	StockStatusLow        StockStatus = "low"
	StockStatusCritical   StockStatus = "critical"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// severity orders statuses from healthiest to worst. Notification
// emission only fires on a strictly increasing severity.
var stockStatusSeverity = map[StockStatus]int{
	StockStatusNormal:     0,
	StockStatusLow:        1,
	StockStatusCritical:   2,
	StockStatusOutOfStock: 3,
}

// IsValid reports whether the value matches the canonical enum.
func (s StockStatus) IsValid() bool {
	_, ok := stockStatusSeverity[s]
	return ok
}

// Severity returns the rank of the status; higher is worse.
func (s StockStatus) Severity() int {
	return stockStatusSeverity[s]
}

// WorseThan reports whether s is strictly worse than other.
func (s StockStatus) WorseThan(other StockStatus) bool {
	return s.Severity() > other.Severity()
}

// ParseStockStatus converts raw input into StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	s := StockStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid stock status %q", value)
	}
	return s, nil
}
