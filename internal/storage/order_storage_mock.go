package storage

import (
	"context"
	"time"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/google/uuid"
)

// MockOrderStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockOrderStorage struct {
	CreateFunc               func(ctx context.Context, order *models.Order) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumberFunc          func(ctx context.Context, number string) (*models.Order, error)
	ListFunc                 func(ctx context.Context, limit int) ([]*models.Order, error)
	UpdateStatusFunc         func(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	AttachInvoiceFunc        func(ctx context.Context, id uuid.UUID, invoiceID string) error
	MarkPaidFunc             func(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	SetShipmentFunc          func(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error
	ListDueNotificationsFunc func(ctx context.Context, now time.Time) ([]*models.Order, error)
	MarkNotifiedFunc         func(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

func (m *MockOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) List(ctx context.Context, limit int) ([]*models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockOrderStorage) AttachInvoice(ctx context.Context, id uuid.UUID, invoiceID string) error {
	if m.AttachInvoiceFunc != nil {
		return m.AttachInvoiceFunc(ctx, id, invoiceID)
	}
	return nil
}

func (m *MockOrderStorage) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, id, paidAt)
	}
	return true, nil
}

func (m *MockOrderStorage) SetShipment(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error {
	if m.SetShipmentFunc != nil {
		return m.SetShipmentFunc(ctx, id, shipment)
	}
	return nil
}

func (m *MockOrderStorage) ListDueShippingNotifications(ctx context.Context, now time.Time) ([]*models.Order, error) {
	if m.ListDueNotificationsFunc != nil {
		return m.ListDueNotificationsFunc(ctx, now)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderStorage) MarkShippingNotified(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	if m.MarkNotifiedFunc != nil {
		return m.MarkNotifiedFunc(ctx, id, sentAt)
	}
	return nil
}
