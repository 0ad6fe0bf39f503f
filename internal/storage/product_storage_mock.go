package storage

import (
	"context"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/google/uuid"
)

// MockProductStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockProductStorage struct {
	CreateFunc         func(ctx context.Context, product *models.Product) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListFunc           func(ctx context.Context) ([]*models.Product, error)
	UpdateFunc         func(ctx context.Context, product *models.Product) error
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
	DecrementStockFunc func(ctx context.Context, id uuid.UUID, quantity int) error
}

func (m *MockProductStorage) Create(ctx context.Context, product *models.Product) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	return nil
}

func (m *MockProductStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrProductNotFound
}

func (m *MockProductStorage) List(ctx context.Context) ([]*models.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Product{}, nil
}

func (m *MockProductStorage) Update(ctx context.Context, product *models.Product) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, product)
	}
	return nil
}

func (m *MockProductStorage) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockProductStorage) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if m.DecrementStockFunc != nil {
		return m.DecrementStockFunc(ctx, id, quantity)
	}
	return nil
}
