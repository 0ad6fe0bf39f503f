package storage

import (
	"context"

	"github.com/agamariel/cryptomart/internal/models"
)

// MockShippingConfigStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockShippingConfigStorage struct {
	GetFunc    func(ctx context.Context) (*models.ShippingConfig, error)
	UpsertFunc func(ctx context.Context, cfg *models.ShippingConfig) error
}

func (m *MockShippingConfigStorage) Get(ctx context.Context) (*models.ShippingConfig, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return nil, ErrShippingConfigNotFound
}

func (m *MockShippingConfigStorage) Upsert(ctx context.Context, cfg *models.ShippingConfig) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, cfg)
	}
	return nil
}
