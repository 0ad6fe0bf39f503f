package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderHasNoInvoice  = errors.New("order has no invoice")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderNotPaid       = errors.New("order is not paid")
	ErrUnknownOrderStatus = errors.New("unknown order status")
)

// Допустимые переходы статусов заказа. Переходы монотонны,
// cancelled достижим из pending и paid.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

// OrderService описывает чтение заказов и админские операции над ними.
type OrderService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]*models.Order, error)
	PaymentStatus(ctx context.Context, id uuid.UUID) (*models.PaymentStatusResponse, error)
	PaymentMethods(ctx context.Context, id uuid.UUID) ([]btcpay.PaymentMethod, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	Ship(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orderStorage storage.OrderStorage
	gateway      btcpay.Client
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(orderStorage storage.OrderStorage, gateway btcpay.Client) *OrderServiceImpl {
	return &OrderServiceImpl{orderStorage: orderStorage, gateway: gateway}
}

// GetOrder возвращает заказ по идентификатору.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderStorage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListOrders возвращает последние заказы.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	orders, err := s.orderStorage.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// PaymentStatus возвращает статус заказа и статус его инвойса для
// поллинга с экрана оплаты.
func (s *OrderServiceImpl) PaymentStatus(ctx context.Context, id uuid.UUID) (*models.PaymentStatusResponse, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &models.PaymentStatusResponse{OrderStatus: string(order.Status)}

	if order.InvoiceID == nil {
		return resp, nil
	}

	invoice, err := s.gateway.GetInvoice(ctx, *order.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	resp.InvoiceStatus = invoice.Status.String()
	if !invoice.ExpiresAt.IsZero() {
		expires := invoice.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}

	return resp, nil
}

// PaymentMethods возвращает реквизиты оплаты по инвойсу заказа.
func (s *OrderServiceImpl) PaymentMethods(ctx context.Context, id uuid.UUID) ([]btcpay.PaymentMethod, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.InvoiceID == nil {
		return nil, ErrOrderHasNoInvoice
	}

	methods, err := s.gateway.GetPaymentMethods(ctx, *order.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("get payment methods: %w", err)
	}

	return methods, nil
}

// UpdateStatus переводит заказ в новый статус с проверкой допустимости перехода.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return ErrUnknownOrderStatus
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	if !transitionAllowed(order.Status, status) {
		return ErrInvalidTransition
	}

	if err := s.orderStorage.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	return nil
}

// Ship записывает данные отправления, переводит заказ в shipped и
// планирует письмо об отправке.
func (s *OrderServiceImpl) Ship(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	if order.Status != models.OrderStatusPaid {
		return ErrOrderNotPaid
	}

	if shipment.ShippedAt.IsZero() {
		shipment.ShippedAt = time.Now()
	}
	if shipment.NotifyAt == nil {
		notifyAt := shipment.ShippedAt
		shipment.NotifyAt = &notifyAt
	}

	if err := s.orderStorage.SetShipment(ctx, id, shipment); err != nil {
		return fmt.Errorf("set shipment: %w", err)
	}

	return nil
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
