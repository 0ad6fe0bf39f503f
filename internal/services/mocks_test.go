package services

import (
	"context"

	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockGateway - мок платёжного шлюза для тестов сервисов
type mockGateway struct {
	CreateInvoiceFunc     func(ctx context.Context, params btcpay.CreateInvoiceParams) (*btcpay.Invoice, error)
	GetInvoiceFunc        func(ctx context.Context, invoiceID string) (*btcpay.Invoice, error)
	GetPaymentMethodsFunc func(ctx context.Context, invoiceID string) ([]btcpay.PaymentMethod, error)
}

func (m *mockGateway) CreateInvoice(ctx context.Context, params btcpay.CreateInvoiceParams) (*btcpay.Invoice, error) {
	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, params)
	}
	return &btcpay.Invoice{ID: "inv-test", Status: btcpay.StatusNew, RawStatus: "New"}, nil
}

func (m *mockGateway) GetInvoice(ctx context.Context, invoiceID string) (*btcpay.Invoice, error) {
	if m.GetInvoiceFunc != nil {
		return m.GetInvoiceFunc(ctx, invoiceID)
	}
	return &btcpay.Invoice{ID: invoiceID, Status: btcpay.StatusNew, RawStatus: "New"}, nil
}

func (m *mockGateway) GetPaymentMethods(ctx context.Context, invoiceID string) ([]btcpay.PaymentMethod, error) {
	if m.GetPaymentMethodsFunc != nil {
		return m.GetPaymentMethodsFunc(ctx, invoiceID)
	}
	return []btcpay.PaymentMethod{}, nil
}

// mockMailer - мок почтового клиента
type mockMailer struct {
	SendFunc func(ctx context.Context, to, subject, textBody, htmlBody string) error
}

func (m *mockMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, textBody, htmlBody)
	}
	return nil
}

// mockCouponService - мок сервиса купонов
type mockCouponService struct {
	ValidateFunc    func(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error)
	RecordUsageFunc func(ctx context.Context, coupon *models.Coupon, email string, orderID uuid.UUID) error
}

func (m *mockCouponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, code, subtotal, email, productIDs)
	}
	return nil, decimal.Zero, ErrCouponNotFound
}

func (m *mockCouponService) RecordUsage(ctx context.Context, coupon *models.Coupon, email string, orderID uuid.UUID) error {
	if m.RecordUsageFunc != nil {
		return m.RecordUsageFunc(ctx, coupon, email, orderID)
	}
	return nil
}

func (m *mockCouponService) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	return []*models.Coupon{}, nil
}

func (m *mockCouponService) CreateCoupon(ctx context.Context, req *models.CouponRequest) (*models.Coupon, error) {
	return nil, ErrInvalidCoupon
}

func (m *mockCouponService) UpdateCoupon(ctx context.Context, id uuid.UUID, req *models.CouponRequest) (*models.Coupon, error) {
	return nil, ErrCouponNotFound
}

func (m *mockCouponService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return nil
}

// mockShippingService - мок сервиса доставки
type mockShippingService struct {
	ResolveCostFunc func(ctx context.Context, country string) (decimal.Decimal, error)
}

func (m *mockShippingService) ResolveCost(ctx context.Context, country string) (decimal.Decimal, error) {
	if m.ResolveCostFunc != nil {
		return m.ResolveCostFunc(ctx, country)
	}
	return decimal.Zero, nil
}

func (m *mockShippingService) GetConfig(ctx context.Context) (*models.ShippingConfig, error) {
	return &models.ShippingConfig{}, nil
}

func (m *mockShippingService) UpdateConfig(ctx context.Context, cfg *models.ShippingConfig) error {
	return nil
}

// mockNotifier - мок сервиса нотификаций
type mockNotifier struct {
	SendOrderConfirmationFunc func(ctx context.Context, order *models.Order) error
	SendShippingNoticeFunc    func(ctx context.Context, order *models.Order) error
}

func (m *mockNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if m.SendOrderConfirmationFunc != nil {
		return m.SendOrderConfirmationFunc(ctx, order)
	}
	return nil
}

func (m *mockNotifier) SendShippingNotice(ctx context.Context, order *models.Order) error {
	if m.SendShippingNoticeFunc != nil {
		return m.SendShippingNoticeFunc(ctx, order)
	}
	return nil
}

func (m *mockNotifier) RunShippingSweep(ctx context.Context) (int, error) {
	return 0, nil
}

// mockSettler - мок применения оплаты
type mockSettler struct {
	SettleFunc func(ctx context.Context, orderID uuid.UUID) error
}

func (m *mockSettler) Settle(ctx context.Context, orderID uuid.UUID) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, orderID)
	}
	return nil
}
