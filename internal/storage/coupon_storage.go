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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponAlreadyExists = errors.New("coupon already exists")
)

// CouponStorage определяет интерфейс для работы с купонами.
type CouponStorage interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	RecordUsage(ctx context.Context, usage *models.CouponUsage) error
	HasUsage(ctx context.Context, couponID uuid.UUID, customerEmail string) (bool, error)
}

// PostgresCouponStorage реализует CouponStorage для PostgreSQL.
type PostgresCouponStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresCouponStorage создаёт новый экземпляр PostgresCouponStorage.
func NewPostgresCouponStorage(pool *pgxpool.Pool) *PostgresCouponStorage {
	return &PostgresCouponStorage{pool: pool}
}

const couponColumns = `
	id, code, active, discount_type, discount_value, min_order_amount, max_uses,
	current_uses, one_per_customer, valid_from, valid_until, scope, product_ids,
	created_at, updated_at
`

// Create создаёт новый купон.
func (s *PostgresCouponStorage) Create(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (code, active, discount_type, discount_value,
			min_order_amount, max_uses, current_uses, one_per_customer,
			valid_from, valid_until, scope, product_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	productIDsJSON, err := json.Marshal(coupon.ProductIDs)
	if err != nil {
		return fmt.Errorf("marshal product ids: %w", err)
	}

	minAmountVal := sql.NullString{}
	if coupon.MinOrderAmount != nil {
		minAmountVal = sql.NullString{Valid: true, String: coupon.MinOrderAmount.String()}
	}

	err = s.pool.QueryRow(ctx, query,
		coupon.Code,
		coupon.Active,
		coupon.DiscountType,
		coupon.DiscountValue.String(),
		minAmountVal,
		coupon.MaxUses,
		coupon.CurrentUses,
		coupon.OnePerCustomer,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.Scope,
		productIDsJSON,
	).Scan(&coupon.ID, &coupon.CreatedAt, &coupon.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCouponAlreadyExists
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

// GetByCode возвращает купон по коду.
func (s *PostgresCouponStorage) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	return scanCoupon(s.pool.QueryRow(ctx, query, code))
}

// List возвращает все купоны (для админки).
func (s *PostgresCouponStorage) List(ctx context.Context) ([]*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return coupons, nil
}

// Update обновляет купон целиком.
func (s *PostgresCouponStorage) Update(ctx context.Context, coupon *models.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $1, active = $2, discount_type = $3, discount_value = $4,
			min_order_amount = $5, max_uses = $6, one_per_customer = $7,
			valid_from = $8, valid_until = $9, scope = $10, product_ids = $11,
			updated_at = NOW()
		WHERE id = $12
	`

	productIDsJSON, err := json.Marshal(coupon.ProductIDs)
	if err != nil {
		return fmt.Errorf("marshal product ids: %w", err)
	}

	minAmountVal := sql.NullString{}
	if coupon.MinOrderAmount != nil {
		minAmountVal = sql.NullString{Valid: true, String: coupon.MinOrderAmount.String()}
	}

	result, err := s.pool.Exec(ctx, query,
		coupon.Code,
		coupon.Active,
		coupon.DiscountType,
		coupon.DiscountValue.String(),
		minAmountVal,
		coupon.MaxUses,
		coupon.OnePerCustomer,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.Scope,
		productIDsJSON,
		coupon.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// Delete удаляет купон.
func (s *PostgresCouponStorage) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// IncrementUsage увеличивает счётчик использований купона.
func (s *PostgresCouponStorage) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET current_uses = current_uses + 1, updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// RecordUsage записывает факт применения купона покупателем.
func (s *PostgresCouponStorage) RecordUsage(ctx context.Context, usage *models.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (coupon_id, customer_email, order_id, used_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, used_at
	`

	err := s.pool.QueryRow(ctx, query,
		usage.CouponID,
		usage.CustomerEmail,
		usage.OrderID,
	).Scan(&usage.ID, &usage.UsedAt)

	if err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}

	return nil
}

// HasUsage сообщает, применял ли покупатель купон раньше.
func (s *PostgresCouponStorage) HasUsage(ctx context.Context, couponID uuid.UUID, customerEmail string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM coupon_usages
			WHERE coupon_id = $1 AND customer_email = $2
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, couponID, customerEmail).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check coupon usage: %w", err)
	}

	return exists, nil
}

// scanCoupon помогает читать купон из строки результата.
func scanCoupon(row pgx.Row) (*models.Coupon, error) {
	var (
		coupon         models.Coupon
		value          sql.NullString
		minAmount      sql.NullString
		productIDsJSON []byte
	)

	err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Active,
		&coupon.DiscountType,
		&value,
		&minAmount,
		&coupon.MaxUses,
		&coupon.CurrentUses,
		&coupon.OnePerCustomer,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.Scope,
		&productIDsJSON,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to scan coupon: %w", err)
	}

	if coupon.DiscountValue, err = parseDecimal(value); err != nil {
		return nil, fmt.Errorf("parse discount value: %w", err)
	}
	if coupon.MinOrderAmount, err = parseNullDecimal(minAmount); err != nil {
		return nil, fmt.Errorf("parse min order amount: %w", err)
	}

	if err := json.Unmarshal(productIDsJSON, &coupon.ProductIDs); err != nil {
		return nil, fmt.Errorf("unmarshal product ids: %w", err)
	}

	return &coupon, nil
}
