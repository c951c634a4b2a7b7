package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

const minPasswordLength = 8

// Service handles admin-driven account management.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	passwordCfg config.PasswordConfig
}

// NewService wires the user management service.
func NewService(repo *Repository, dbClient *db.Client, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	return &service{repo: repo, dbClient: dbClient, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password too short")
	}

	passwordHash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *UserDTO
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		user := &models.User{
			Email:        email,
			Name:         name,
			Role:         input.Role,
			PasswordHash: passwordHash,
		}
		if err := repo.Create(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		created = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	result := make([]UserDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *FromModel(&rows[i]))
	}
	return result, nil
}
