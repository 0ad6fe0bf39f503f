package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage определяет интерфейс для работы с товарами.
type ProductStorage interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// PostgresProductStorage реализует ProductStorage для PostgreSQL.
type PostgresProductStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresProductStorage создаёт новый экземпляр PostgresProductStorage.
func NewPostgresProductStorage(pool *pgxpool.Pool) *PostgresProductStorage {
	return &PostgresProductStorage{pool: pool}
}

const productColumns = `
	id, name, description, price, discount_percent, stock, modifier_groups,
	created_at, updated_at
`

// Create создаёт новый товар.
func (s *PostgresProductStorage) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, discount_percent, stock,
			modifier_groups, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	groupsJSON, err := json.Marshal(product.ModifierGroups)
	if err != nil {
		return fmt.Errorf("marshal modifier groups: %w", err)
	}

	discountVal := sql.NullString{}
	if product.DiscountPercent != nil {
		discountVal = sql.NullString{Valid: true, String: product.DiscountPercent.String()}
	}

	err = s.pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price.String(),
		discountVal,
		product.Stock,
		groupsJSON,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID возвращает товар по идентификатору.
func (s *PostgresProductStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(s.pool.QueryRow(ctx, query, id))
}

// List возвращает все товары каталога.
func (s *PostgresProductStorage) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return products, nil
}

// Update обновляет товар целиком.
func (s *PostgresProductStorage) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, discount_percent = $4,
			stock = $5, modifier_groups = $6, updated_at = NOW()
		WHERE id = $7
	`

	groupsJSON, err := json.Marshal(product.ModifierGroups)
	if err != nil {
		return fmt.Errorf("marshal modifier groups: %w", err)
	}

	discountVal := sql.NullString{}
	if product.DiscountPercent != nil {
		discountVal = sql.NullString{Valid: true, String: product.DiscountPercent.String()}
	}

	result, err := s.pool.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Price.String(),
		discountVal,
		product.Stock,
		groupsJSON,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар.
func (s *PostgresProductStorage) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// DecrementStock атомарно уменьшает остаток товара, не опускаясь ниже нуля.
// Одна команда вместо чтения-изменения-записи закрывает гонку
// одновременных заказов одного товара.
func (s *PostgresProductStorage) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = GREATEST(0, stock - $1), updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.pool.Exec(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// scanProduct помогает читать товар из строки результата.
func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		product    models.Product
		price      sql.NullString
		discount   sql.NullString
		groupsJSON []byte
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&price,
		&discount,
		&product.Stock,
		&groupsJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if product.Price, err = parseDecimal(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if product.DiscountPercent, err = parseNullDecimal(discount); err != nil {
		return nil, fmt.Errorf("parse discount percent: %w", err)
	}

	if err := json.Unmarshal(groupsJSON, &product.ModifierGroups); err != nil {
		return nil, fmt.Errorf("unmarshal modifier groups: %w", err)
	}

	return &product, nil
}
