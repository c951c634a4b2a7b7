package alerts

import (
	"context"
	"fmt"

	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/mailer"
)

// RecipientSource yields the users that receive stock alerts.
type RecipientSource interface {
	ListAlertRecipients(ctx context.Context) ([]models.User, error)
}

// notificationCreator is the slice of the notifications service the
// emitter needs.
type notificationCreator interface {
	Create(ctx context.Context, input notifications.CreateInput) (*models.Notification, error)
}

// Emitter fans a stock status transition out to in-app notifications and,
// when enabled, email. It satisfies the stock engine's StatusNotifier.
type Emitter struct {
	creator    notificationCreator
	recipients RecipientSource
	sender     mailer.Sender
	logg       *logger.Logger
	cfg        config.AlertsConfig
}

// NewEmitter wires the alert emitter.
func NewEmitter(creator notificationCreator, recipients RecipientSource, sender mailer.Sender, logg *logger.Logger, cfg config.AlertsConfig) (*Emitter, error) {
	if creator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification creator required")
	}
	if recipients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recipient source required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if sender == nil {
		sender = mailer.NoopSender{}
	}
	return &Emitter{
		creator:    creator,
		recipients: recipients,
		sender:     sender,
		logg:       logg,
		cfg:        cfg,
	}, nil
}

// StockStatusChanged is called by the stock engine after a movement commits
// with a strictly worsened status.
func (e *Emitter) StockStatusChanged(ctx context.Context, product *models.Product, previous, current enums.StockStatus) {
	e.Notify(ctx, product, current)
}

// Notify fans a stock alert for the given status out to in-app notifications
// and, when enabled, email. A failed alert never fails the movement or sweep
// that triggered it; errors are logged and dropped.
func (e *Emitter) Notify(ctx context.Context, product *models.Product, current enums.StockStatus) {
	ctx = e.logg.WithProductID(ctx, product.ID.String())

	users, err := e.recipients.ListAlertRecipients(ctx)
	if err != nil {
		e.logg.Error(ctx, "loading alert recipients failed", err)
		return
	}
	if len(users) == 0 {
		e.logg.Warn(ctx, "no alert recipients configured, stock alert dropped")
		return
	}

	notificationType, title, message := describeTransition(product, current)
	for _, user := range users {
		_, err := e.creator.Create(ctx, notifications.CreateInput{
			UserID:    user.ID,
			Type:      notificationType,
			Title:     title,
			Message:   message,
			ProductID: &product.ID,
		})
		if err != nil {
			e.logg.Error(e.logg.WithUserID(ctx, user.ID.String()), "creating stock alert notification failed", err)
		}
	}

	e.sendEmail(ctx, product, current, title)
}

func (e *Emitter) sendEmail(ctx context.Context, product *models.Product, status enums.StockStatus, subject string) {
	if !e.cfg.EmailEnabled || len(e.cfg.Recipients) == 0 {
		return
	}

	html, err := mailer.RenderLowStockAlert(mailer.LowStockAlert{
		ProductName:  product.Name,
		SKU:          product.SKU,
		CurrentStock: product.CurrentStock,
		MinStock:     product.MinStock,
		Status:       string(status),
	})
	if err != nil {
		e.logg.Error(ctx, "rendering stock alert email failed", err)
		return
	}

	if err := e.sender.Send(mailer.Message{
		To:      e.cfg.Recipients,
		Subject: subject,
		HTML:    html,
	}); err != nil {
		e.logg.Error(ctx, "sending stock alert email failed", err)
	}
}

func describeTransition(product *models.Product, current enums.StockStatus) (enums.NotificationType, string, string) {
	if current == enums.StockStatusOutOfStock {
		return enums.NotificationTypeOutOfStock,
			"Out of stock",
			fmt.Sprintf("%s (%s) is out of stock.", product.Name, product.SKU)
	}
	return enums.NotificationTypeLowStock,
		"Low stock alert",
		fmt.Sprintf("%s (%s) is running low: current stock %d, minimum %d.",
			product.Name, product.SKU, product.CurrentStock, product.MinStock)
}
