package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// User is a dashboard account. Roles gate stock mutations and admin surfaces.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null;default:staff" json:"role"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
