package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is the counterparty for inbound stock and purchase orders.
type Supplier struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	ContactPerson *string   `gorm:"column:contact_person" json:"contact_person,omitempty"`
	Email         *string   `gorm:"column:email" json:"email,omitempty"`
	Phone         *string   `gorm:"column:phone" json:"phone,omitempty"`
	Address       *string   `gorm:"column:address" json:"address,omitempty"`
	LeadTimeDays  int       `gorm:"column:lead_time_days;not null;default:7" json:"lead_time_days"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
