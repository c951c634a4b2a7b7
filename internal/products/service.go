package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Service exposes product catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	LowStock(ctx context.Context) ([]models.Product, error)
	OutOfStock(ctx context.Context) ([]models.Product, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}

type service struct {
	repo Repository
}

// NewService wires the product catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)

	if err := validateProductFields(input.SKU, input.Name, input.Category, input.MinStock, input.MaxStock); err != nil {
		return nil, err
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
	}

	exists, err := s.repo.SKUExists(ctx, input.SKU, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
	}

	product := &models.Product{
		SKU:         input.SKU,
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		MinStock:    input.MinStock,
		MaxStock:    input.MaxStock,
		UnitPrice:   input.UnitPrice,
		SupplierID:  input.SupplierID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		// The pre-check races with concurrent creates; the unique index
		// is the real arbiter.
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		if sku != product.SKU {
			exists, err := s.repo.SKUExists(ctx, sku, &id)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
			}
			if exists {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
			}
		}
		product.SKU = sku
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		product.Category = category
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.MinStock != nil {
		product.MinStock = *input.MinStock
	}
	if input.MaxStock != nil {
		product.MaxStock = *input.MaxStock
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.SupplierID != nil {
		product.SupplierID = input.SupplierID
	}

	if product.MinStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_stock must be non-negative")
	}
	if product.MaxStock != 0 && product.MaxStock < product.MinStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_stock must be at least min_stock")
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listProductsParams{
		Search:   params.Search,
		Category: strings.TrimSpace(params.Category),
		Limit:    params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return rows, nil
}

func (s *service) OutOfStock(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListOutOfStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list out of stock products")
	}
	return rows, nil
}

func (s *service) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products by category")
	}
	return rows, nil
}

func validateProductFields(sku, name, category string, minStock, maxStock int) error {
	if sku == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if category == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if minStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_stock must be non-negative")
	}
	if maxStock != 0 && maxStock < minStock {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_stock must be at least min_stock")
	}
	return nil
}
