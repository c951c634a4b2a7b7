package enums

import "fmt"

// PurchaseOrderStatus maps to the purchase_order_status enum in Postgres.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderStatusShipped   PurchaseOrderStatus = "shipped"
	PurchaseOrderStatusDelivered PurchaseOrderStatus = "delivered"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusPending,
	PurchaseOrderStatusConfirmed,
	PurchaseOrderStatusShipped,
	PurchaseOrderStatusDelivered,
	PurchaseOrderStatusCancelled,
}

// legalPOTransitions captures the allowed forward moves. Delivered and
// cancelled are terminal.
var legalPOTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderStatusPending:   {PurchaseOrderStatusConfirmed, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusConfirmed: {PurchaseOrderStatusShipped, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusShipped:   {PurchaseOrderStatusDelivered},
}

// IsValid reports whether the value matches the canonical enum.
func (s PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, candidate := range legalPOTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParsePurchaseOrderStatus converts raw input into PurchaseOrderStatus.
func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	s := PurchaseOrderStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid purchase order status %q", value)
	}
	return s, nil
}
