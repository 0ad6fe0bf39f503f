package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

// CatalogService описывает работу с каталогом товаров.
type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CatalogServiceImpl реализует CatalogService.
type CatalogServiceImpl struct {
	productStorage storage.ProductStorage
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(productStorage storage.ProductStorage) *CatalogServiceImpl {
	return &CatalogServiceImpl{productStorage: productStorage}
}

// GetProduct возвращает товар по идентификатору.
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.productStorage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts возвращает все товары каталога.
func (s *CatalogServiceImpl) ListProducts(ctx context.Context) ([]*models.Product, error) {
	products, err := s.productStorage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CreateProduct создаёт товар по данным из админки.
func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.productStorage.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// UpdateProduct обновляет товар по данным из админки.
func (s *CatalogServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.ProductRequest) (*models.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.productStorage.Update(ctx, product); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct удаляет товар.
func (s *CatalogServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productStorage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// productFromRequest валидирует DTO и строит доменную модель товара.
func productFromRequest(req *models.ProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidProduct)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", ErrInvalidProduct)
	}

	product := &models.Product{
		Name:           name,
		Description:    req.Description,
		Price:          decimal.NewFromFloat(req.Price).Round(2),
		Stock:          req.Stock,
		ModifierGroups: req.ModifierGroups,
	}

	if req.DiscountPercent != nil {
		if *req.DiscountPercent < 0 || *req.DiscountPercent > 100 {
			return nil, fmt.Errorf("%w: discount percent must be between 0 and 100", ErrInvalidProduct)
		}
		discount := decimal.NewFromFloat(*req.DiscountPercent)
		product.DiscountPercent = &discount
	}

	return product, nil
}
