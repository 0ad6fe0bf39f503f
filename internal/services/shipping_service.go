package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/shopspring/decimal"
)

// ShippingService описывает расчёт стоимости доставки и управление конфигурацией.
type ShippingService interface {
	ResolveCost(ctx context.Context, country string) (decimal.Decimal, error)
	GetConfig(ctx context.Context) (*models.ShippingConfig, error)
	UpdateConfig(ctx context.Context, cfg *models.ShippingConfig) error
}

// ShippingServiceImpl реализует ShippingService.
type ShippingServiceImpl struct {
	configStorage storage.ShippingConfigStorage
}

// NewShippingService создаёт сервис доставки.
func NewShippingService(configStorage storage.ShippingConfigStorage) *ShippingServiceImpl {
	return &ShippingServiceImpl{configStorage: configStorage}
}

// ResolveCost возвращает стоимость доставки в страну.
func (s *ShippingServiceImpl) ResolveCost(ctx context.Context, country string) (decimal.Decimal, error) {
	cfg, err := s.configStorage.Get(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get shipping config: %w", err)
	}

	return ResolveShippingCost(cfg, country), nil
}

// GetConfig возвращает конфигурацию доставки.
func (s *ShippingServiceImpl) GetConfig(ctx context.Context) (*models.ShippingConfig, error) {
	return s.configStorage.Get(ctx)
}

// UpdateConfig сохраняет конфигурацию доставки.
func (s *ShippingServiceImpl) UpdateConfig(ctx context.Context, cfg *models.ShippingConfig) error {
	return s.configStorage.Upsert(ctx, cfg)
}

// ResolveShippingCost - чистый расчёт стоимости доставки по коду страны.
// Неизвестная страна не является ошибкой: всегда применяется запасной тариф.
func ResolveShippingCost(cfg *models.ShippingConfig, country string) decimal.Decimal {
	country = strings.ToUpper(strings.TrimSpace(country))

	switch cfg.Mode {
	case models.ShippingModeAdvanced:
		if rate, ok := cfg.CountryRates[country]; ok {
			return rate
		}
		return cfg.DefaultRate
	default:
		for _, domestic := range cfg.DomesticCountries {
			if strings.EqualFold(domestic, country) {
				return cfg.DomesticRate
			}
		}
		return cfg.InternationalRate
	}
}
