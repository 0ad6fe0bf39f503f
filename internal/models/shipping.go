package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMode описывает режим расчёта стоимости доставки.
type ShippingMode string

const (
	// ShippingModeBasic - фиксированные тарифы: внутренняя/международная доставка.
	ShippingModeBasic ShippingMode = "basic"
	// ShippingModeAdvanced - таблица тарифов по странам с тарифом по умолчанию.
	ShippingModeAdvanced ShippingMode = "advanced"
)

// ShippingConfig - единственная запись конфигурации доставки.
type ShippingConfig struct {
	Mode              ShippingMode               `db:"mode"`
	DomesticCountries []string                   `db:"domestic_countries"`
	DomesticRate      decimal.Decimal            `db:"domestic_rate"`
	InternationalRate decimal.Decimal            `db:"international_rate"`
	CountryRates      map[string]decimal.Decimal `db:"country_rates"`
	DefaultRate       decimal.Decimal            `db:"default_rate"`
	UpdatedAt         time.Time                  `db:"updated_at"`
}

// ShippingConfigRequest - DTO обновления конфигурации доставки в админке.
type ShippingConfigRequest struct {
	Mode              string             `json:"mode"`
	DomesticCountries []string           `json:"domestic_countries,omitempty"`
	DomesticRate      float64            `json:"domestic_rate"`
	InternationalRate float64            `json:"international_rate"`
	CountryRates      map[string]float64 `json:"country_rates,omitempty"`
	DefaultRate       float64            `json:"default_rate"`
}

// ShippingConfigResponse - DTO конфигурации доставки.
type ShippingConfigResponse struct {
	Mode              string             `json:"mode"`
	DomesticCountries []string           `json:"domestic_countries,omitempty"`
	DomesticRate      float64            `json:"domestic_rate"`
	InternationalRate float64            `json:"international_rate"`
	CountryRates      map[string]float64 `json:"country_rates,omitempty"`
	DefaultRate       float64            `json:"default_rate"`
	UpdatedAt         string             `json:"updated_at"`
}

// ShippingCostResponse - результат расчёта стоимости доставки.
type ShippingCostResponse struct {
	Country string  `json:"country"`
	Cost    float64 `json:"cost"`
}
