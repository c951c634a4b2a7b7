package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Notification stores in-app alert payloads scoped to users.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null" json:"type"`
	Title     string                 `gorm:"column:title;type:text;not null" json:"title"`
	Message   string                 `gorm:"column:message;type:text;not null" json:"message"`
	ProductID *uuid.UUID             `gorm:"column:product_id;type:uuid" json:"product_id,omitempty"`
	ReadAt    *time.Time             `gorm:"column:read_at;type:timestamptz" json:"read_at,omitempty"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// IsRead reports whether the notification has been acknowledged.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
