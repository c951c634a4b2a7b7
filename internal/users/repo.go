package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// ListByRoleAtLeast returns the users holding the given role or higher.
// The alerts emitter uses it to pick stock alert recipients.
func (r *Repository) ListByRoleAtLeast(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	roles := make([]enums.UserRole, 0, 3)
	for _, candidate := range []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleManager, enums.UserRoleStaff} {
		if candidate.AtLeast(role) {
			roles = append(roles, candidate)
		}
	}
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListAlertRecipients satisfies the alerts recipient source: managers and
// admins receive stock and order notifications.
func (r *Repository) ListAlertRecipients(ctx context.Context) ([]models.User, error) {
	return r.ListByRoleAtLeast(ctx, enums.UserRoleManager)
}
