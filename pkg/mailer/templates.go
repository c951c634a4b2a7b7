package mailer

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
)

// LowStockAlert describes a product that crossed its minimum stock level.
type LowStockAlert struct {
	ProductName  string
	SKU          string
	CurrentStock int
	MinStock     int
	Status       string
}

// OrderLine is a purchase order item rendered into the order email.
type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderNotification describes a placed purchase order.
type OrderNotification struct {
	OrderID      string
	SupplierName string
	Items        []OrderLine
}

var lowStockTmpl = template.Must(template.New("low_stock").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #d32f2f;">Low stock alert</h2>
  <p>The following product is running low:</p>
  <div style="background-color: #fff3e0; padding: 15px; border-left: 4px solid #ff9800; margin: 20px 0;">
    <h3 style="margin: 0 0 10px 0;">{{.ProductName}} ({{.SKU}})</h3>
    <p style="margin: 5px 0;"><strong>Current stock:</strong> {{.CurrentStock}}</p>
    <p style="margin: 5px 0;"><strong>Minimum stock:</strong> {{.MinStock}}</p>
    <p style="margin: 5px 0;"><strong>Status:</strong> {{.Status}}</p>
  </div>
  <p>Please restock or place a purchase order.</p>
</div>`))

var orderTmpl = template.Must(template.New("order").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1976d2;">Purchase order placed</h2>
  <div style="background-color: #e3f2fd; padding: 15px; border-left: 4px solid #2196f3; margin: 20px 0;">
    <p style="margin: 5px 0;"><strong>Order:</strong> {{.OrderID}}</p>
    <p style="margin: 5px 0;"><strong>Supplier:</strong> {{.SupplierName}}</p>
  </div>
  <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
    <thead>
      <tr style="background-color: #f5f5f5;">
        <th style="padding: 8px; border-bottom: 2px solid #ddd; text-align: left;">Product</th>
        <th style="padding: 8px; border-bottom: 2px solid #ddd; text-align: center;">Quantity</th>
        <th style="padding: 8px; border-bottom: 2px solid #ddd; text-align: right;">Unit price</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}<tr>
        <td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Name}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #ddd; text-align: center;">{{.Quantity}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #ddd; text-align: right;">{{.UnitPrice}}</td>
      </tr>{{end}}
    </tbody>
    <tfoot>
      <tr style="background-color: #f5f5f5;">
        <td colspan="2" style="padding: 8px; border-top: 2px solid #ddd; text-align: right;"><strong>Total:</strong></td>
        <td style="padding: 8px; border-top: 2px solid #ddd; text-align: right;"><strong>{{.Total}}</strong></td>
      </tr>
    </tfoot>
  </table>
</div>`))

// RenderLowStockAlert produces the HTML body for a low stock email.
func RenderLowStockAlert(alert LowStockAlert) (string, error) {
	var buf bytes.Buffer
	if err := lowStockTmpl.Execute(&buf, alert); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderOrderNotification produces the HTML body for a purchase order email.
// The total is recomputed from the line items.
func RenderOrderNotification(order OrderNotification) (string, error) {
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	var buf bytes.Buffer
	err := orderTmpl.Execute(&buf, struct {
		OrderNotification
		Total decimal.Decimal
	}{order, total})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
