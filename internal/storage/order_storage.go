package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
)

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, limit int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	AttachInvoice(ctx context.Context, id uuid.UUID, invoiceID string) error
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	SetShipment(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error
	ListDueShippingNotifications(ctx context.Context, now time.Time) ([]*models.Order, error)
	MarkShippingNotified(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

// PostgresOrderStorage реализует OrderStorage для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `
	id, number, status, items, shipping_address, shipping_cost, coupon_code,
	discount_amount, total, invoice_id, tracking_number, tracking_url, shipped_at,
	shipping_notification_scheduled_at, shipping_notification_sent_at, paid_at,
	created_at, updated_at
`

// Create создаёт новый заказ.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (number, status, items, shipping_address, shipping_cost,
			coupon_code, discount_amount, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	err = s.pool.QueryRow(ctx, query,
		order.Number,
		order.Status,
		itemsJSON,
		addressJSON,
		order.ShippingCost.String(),
		order.CouponCode,
		order.DiscountAmount.String(),
		order.Total.String(),
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID возвращает заказ по идентификатору.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, id))
}

// GetByNumber возвращает заказ по человекочитаемому номеру.
func (s *PostgresOrderStorage) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, number))
}

// List возвращает последние заказы (для админки).
func (s *PostgresOrderStorage) List(ctx context.Context, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// UpdateStatus обновляет статус заказа.
func (s *PostgresOrderStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// AttachInvoice привязывает идентификатор инвойса к заказу.
func (s *PostgresOrderStorage) AttachInvoice(ctx context.Context, id uuid.UUID, invoiceID string) error {
	query := `
		UPDATE orders
		SET invoice_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.pool.Exec(ctx, query, invoiceID, id)
	if err != nil {
		return fmt.Errorf("failed to attach invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// MarkPaid переводит заказ из pending в paid.
// Возвращает false, если заказ уже не в статусе pending: это защита
// от повторного применения побочных эффектов оплаты.
func (s *PostgresOrderStorage) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, paid_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := s.pool.Exec(ctx, query, models.OrderStatusPaid, paidAt, id, models.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetShipment записывает данные отправления и переводит заказ в shipped.
func (s *PostgresOrderStorage) SetShipment(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error {
	query := `
		UPDATE orders
		SET status = $1, tracking_number = $2, tracking_url = $3, shipped_at = $4,
			shipping_notification_scheduled_at = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := s.pool.Exec(ctx, query,
		models.OrderStatusShipped,
		shipment.TrackingNumber,
		shipment.TrackingURL,
		shipment.ShippedAt,
		shipment.NotifyAt,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to set shipment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// ListDueShippingNotifications возвращает заказы, по которым пора отправить
// письмо об отправке: запланированное время прошло, письмо ещё не отправлено,
// трек-номер заполнен.
func (s *PostgresOrderStorage) ListDueShippingNotifications(ctx context.Context, now time.Time) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE shipping_notification_scheduled_at IS NOT NULL
		  AND shipping_notification_scheduled_at <= $1
		  AND shipping_notification_sent_at IS NULL
		  AND tracking_number IS NOT NULL
		ORDER BY shipping_notification_scheduled_at ASC
	`

	rows, err := s.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due notifications: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// MarkShippingNotified проставляет время отправки письма об отправке.
func (s *PostgresOrderStorage) MarkShippingNotified(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE orders
		SET shipping_notification_sent_at = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.pool.Exec(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark shipping notified: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// collectOrders читает все заказы из результата запроса.
func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order        models.Order
		itemsJSON    []byte
		addressJSON  []byte
		shippingCost sql.NullString
		discount     sql.NullString
		total        sql.NullString
	)

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.Status,
		&itemsJSON,
		&addressJSON,
		&shippingCost,
		&order.CouponCode,
		&discount,
		&total,
		&order.InvoiceID,
		&order.TrackingNumber,
		&order.TrackingURL,
		&order.ShippedAt,
		&order.NotifyAt,
		&order.NotifiedAt,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.Shipping); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	if order.ShippingCost, err = parseDecimal(shippingCost); err != nil {
		return nil, fmt.Errorf("parse shipping cost: %w", err)
	}
	if order.DiscountAmount, err = parseDecimal(discount); err != nil {
		return nil, fmt.Errorf("parse discount amount: %w", err)
	}
	if order.Total, err = parseDecimal(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	return &order, nil
}

// parseDecimal разбирает NUMERIC из строки результата; NULL читается как ноль.
func parseDecimal(val sql.NullString) (decimal.Decimal, error) {
	if !val.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(val.String)
}

// parseNullDecimal разбирает NUMERIC, который может быть NULL.
func parseNullDecimal(val sql.NullString) (*decimal.Decimal, error) {
	if !val.Valid {
		return nil, nil
	}
	dec, err := decimal.NewFromString(val.String)
	if err != nil {
		return nil, err
	}
	return &dec, nil
}
