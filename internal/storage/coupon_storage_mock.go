package storage

import (
	"context"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/google/uuid"
)

// MockCouponStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockCouponStorage struct {
	CreateFunc         func(ctx context.Context, coupon *models.Coupon) error
	GetByCodeFunc      func(ctx context.Context, code string) (*models.Coupon, error)
	ListFunc           func(ctx context.Context) ([]*models.Coupon, error)
	UpdateFunc         func(ctx context.Context, coupon *models.Coupon) error
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
	IncrementUsageFunc func(ctx context.Context, id uuid.UUID) error
	RecordUsageFunc    func(ctx context.Context, usage *models.CouponUsage) error
	HasUsageFunc       func(ctx context.Context, couponID uuid.UUID, customerEmail string) (bool, error)
}

func (m *MockCouponStorage) Create(ctx context.Context, coupon *models.Coupon) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, coupon)
	}
	return nil
}

func (m *MockCouponStorage) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	return nil, ErrCouponNotFound
}

func (m *MockCouponStorage) List(ctx context.Context) ([]*models.Coupon, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Coupon{}, nil
}

func (m *MockCouponStorage) Update(ctx context.Context, coupon *models.Coupon) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, coupon)
	}
	return nil
}

func (m *MockCouponStorage) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCouponStorage) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	if m.IncrementUsageFunc != nil {
		return m.IncrementUsageFunc(ctx, id)
	}
	return nil
}

func (m *MockCouponStorage) RecordUsage(ctx context.Context, usage *models.CouponUsage) error {
	if m.RecordUsageFunc != nil {
		return m.RecordUsageFunc(ctx, usage)
	}
	return nil
}

func (m *MockCouponStorage) HasUsage(ctx context.Context, couponID uuid.UUID, customerEmail string) (bool, error) {
	if m.HasUsageFunc != nil {
		return m.HasUsageFunc(ctx, couponID, customerEmail)
	}
	return false, nil
}
