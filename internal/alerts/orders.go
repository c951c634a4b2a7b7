package alerts

import (
	"context"
	"fmt"

	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/mailer"
)

// OrderPlaced announces a freshly created purchase order to every alert
// recipient and, when enabled, emails the order summary.
func (e *Emitter) OrderPlaced(ctx context.Context, order *models.PurchaseOrder) {
	title := "Purchase order placed"
	message := fmt.Sprintf("Purchase order %s was placed with %s.", order.ID, supplierName(order))
	e.notifyOrder(ctx, order, enums.NotificationTypeOrderPlaced, title, message)

	if !e.cfg.EmailEnabled || len(e.cfg.Recipients) == 0 {
		return
	}
	lines := make([]mailer.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}
		lines = append(lines, mailer.OrderLine{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	html, err := mailer.RenderOrderNotification(mailer.OrderNotification{
		OrderID:      order.ID.String(),
		SupplierName: supplierName(order),
		Items:        lines,
	})
	if err != nil {
		e.logg.Error(ctx, "rendering order email failed", err)
		return
	}
	if err := e.sender.Send(mailer.Message{
		To:      e.cfg.Recipients,
		Subject: title,
		HTML:    html,
	}); err != nil {
		e.logg.Error(ctx, "sending order email failed", err)
	}
}

// OrderDelivered announces that an order arrived and its stock was booked.
func (e *Emitter) OrderDelivered(ctx context.Context, order *models.PurchaseOrder) {
	title := "Purchase order delivered"
	message := fmt.Sprintf("Purchase order %s from %s was delivered and booked into stock.", order.ID, supplierName(order))
	e.notifyOrder(ctx, order, enums.NotificationTypeOrderDelivered, title, message)
}

func (e *Emitter) notifyOrder(ctx context.Context, order *models.PurchaseOrder, notificationType enums.NotificationType, title, message string) {
	users, err := e.recipients.ListAlertRecipients(ctx)
	if err != nil {
		e.logg.Error(ctx, "loading alert recipients failed", err)
		return
	}
	for _, user := range users {
		_, err := e.creator.Create(ctx, notifications.CreateInput{
			UserID:  user.ID,
			Type:    notificationType,
			Title:   title,
			Message: message,
		})
		if err != nil {
			e.logg.Error(e.logg.WithUserID(ctx, user.ID.String()), "creating order notification failed", err)
		}
	}
}

func supplierName(order *models.PurchaseOrder) string {
	if order.Supplier != nil && order.Supplier.Name != "" {
		return order.Supplier.Name
	}
	return "supplier " + order.SupplierID.String()
}
