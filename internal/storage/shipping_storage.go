package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrShippingConfigNotFound = errors.New("shipping config not found")

// ShippingConfigStorage определяет интерфейс для работы с конфигурацией доставки.
// Конфигурация хранится одной записью.
type ShippingConfigStorage interface {
	Get(ctx context.Context) (*models.ShippingConfig, error)
	Upsert(ctx context.Context, cfg *models.ShippingConfig) error
}

// PostgresShippingConfigStorage реализует ShippingConfigStorage для PostgreSQL.
type PostgresShippingConfigStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresShippingConfigStorage создаёт новый экземпляр.
func NewPostgresShippingConfigStorage(pool *pgxpool.Pool) *PostgresShippingConfigStorage {
	return &PostgresShippingConfigStorage{pool: pool}
}

// Get возвращает конфигурацию доставки.
func (s *PostgresShippingConfigStorage) Get(ctx context.Context) (*models.ShippingConfig, error) {
	query := `
		SELECT mode, domestic_countries, domestic_rate, international_rate,
			country_rates, default_rate, updated_at
		FROM shipping_config
		WHERE id = 1
	`

	var (
		cfg           models.ShippingConfig
		countriesJSON []byte
		ratesJSON     []byte
		domestic      sql.NullString
		international sql.NullString
		defaultRate   sql.NullString
	)

	err := s.pool.QueryRow(ctx, query).Scan(
		&cfg.Mode,
		&countriesJSON,
		&domestic,
		&international,
		&ratesJSON,
		&defaultRate,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShippingConfigNotFound
		}
		return nil, fmt.Errorf("failed to get shipping config: %w", err)
	}

	if err := json.Unmarshal(countriesJSON, &cfg.DomesticCountries); err != nil {
		return nil, fmt.Errorf("unmarshal domestic countries: %w", err)
	}

	var rawRates map[string]string
	if err := json.Unmarshal(ratesJSON, &rawRates); err != nil {
		return nil, fmt.Errorf("unmarshal country rates: %w", err)
	}
	cfg.CountryRates = make(map[string]decimal.Decimal, len(rawRates))
	for country, rate := range rawRates {
		dec, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("parse rate for %s: %w", country, err)
		}
		cfg.CountryRates[country] = dec
	}

	if cfg.DomesticRate, err = parseDecimal(domestic); err != nil {
		return nil, fmt.Errorf("parse domestic rate: %w", err)
	}
	if cfg.InternationalRate, err = parseDecimal(international); err != nil {
		return nil, fmt.Errorf("parse international rate: %w", err)
	}
	if cfg.DefaultRate, err = parseDecimal(defaultRate); err != nil {
		return nil, fmt.Errorf("parse default rate: %w", err)
	}

	return &cfg, nil
}

// Upsert сохраняет конфигурацию доставки.
func (s *PostgresShippingConfigStorage) Upsert(ctx context.Context, cfg *models.ShippingConfig) error {
	query := `
		INSERT INTO shipping_config (id, mode, domestic_countries, domestic_rate,
			international_rate, country_rates, default_rate, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE
		SET mode = EXCLUDED.mode,
			domestic_countries = EXCLUDED.domestic_countries,
			domestic_rate = EXCLUDED.domestic_rate,
			international_rate = EXCLUDED.international_rate,
			country_rates = EXCLUDED.country_rates,
			default_rate = EXCLUDED.default_rate,
			updated_at = NOW()
	`

	countriesJSON, err := json.Marshal(cfg.DomesticCountries)
	if err != nil {
		return fmt.Errorf("marshal domestic countries: %w", err)
	}

	rawRates := make(map[string]string, len(cfg.CountryRates))
	for country, rate := range cfg.CountryRates {
		rawRates[country] = rate.String()
	}
	ratesJSON, err := json.Marshal(rawRates)
	if err != nil {
		return fmt.Errorf("marshal country rates: %w", err)
	}

	_, err = s.pool.Exec(ctx, query,
		cfg.Mode,
		countriesJSON,
		cfg.DomesticRate.String(),
		cfg.InternationalRate.String(),
		ratesJSON,
		cfg.DefaultRate.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert shipping config: %w", err)
	}

	return nil
}
