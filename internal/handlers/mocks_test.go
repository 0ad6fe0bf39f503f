package handlers

import (
	"context"

	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockCheckoutService - мок для тестирования хендлеров
type mockCheckoutService struct {
	CheckoutFunc func(ctx context.Context, req *models.CheckoutRequest) (*services.CheckoutResult, error)
	SettleFunc   func(ctx context.Context, orderID uuid.UUID) error
}

func (m *mockCheckoutService) Checkout(ctx context.Context, req *models.CheckoutRequest) (*services.CheckoutResult, error) {
	if m.CheckoutFunc != nil {
		return m.CheckoutFunc(ctx, req)
	}
	return nil, services.ErrEmptyCart
}

func (m *mockCheckoutService) Settle(ctx context.Context, orderID uuid.UUID) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, orderID)
	}
	return nil
}

// mockCatalogService - мок для тестирования хендлеров
type mockCatalogService struct {
	GetProductFunc    func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProductsFunc  func(ctx context.Context) ([]*models.Product, error)
	CreateProductFunc func(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	UpdateProductFunc func(ctx context.Context, id uuid.UUID, req *models.ProductRequest) (*models.Product, error)
	DeleteProductFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, services.ErrProductNotFound
}

func (m *mockCatalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx)
	}
	return []*models.Product{}, nil
}

func (m *mockCatalogService) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, req)
	}
	return nil, services.ErrInvalidProduct
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.ProductRequest) (*models.Product, error) {
	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, id, req)
	}
	return nil, services.ErrProductNotFound
}

func (m *mockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, id)
	}
	return nil
}

// mockCouponService - мок для тестирования хендлеров
type mockCouponService struct {
	ValidateFunc     func(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error)
	ListCouponsFunc  func(ctx context.Context) ([]*models.Coupon, error)
	CreateCouponFunc func(ctx context.Context, req *models.CouponRequest) (*models.Coupon, error)
	UpdateCouponFunc func(ctx context.Context, id uuid.UUID, req *models.CouponRequest) (*models.Coupon, error)
	DeleteCouponFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCouponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, code, subtotal, email, productIDs)
	}
	return nil, decimal.Zero, services.ErrCouponNotFound
}

func (m *mockCouponService) RecordUsage(ctx context.Context, coupon *models.Coupon, email string, orderID uuid.UUID) error {
	return nil
}

func (m *mockCouponService) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	if m.ListCouponsFunc != nil {
		return m.ListCouponsFunc(ctx)
	}
	return []*models.Coupon{}, nil
}

func (m *mockCouponService) CreateCoupon(ctx context.Context, req *models.CouponRequest) (*models.Coupon, error) {
	if m.CreateCouponFunc != nil {
		return m.CreateCouponFunc(ctx, req)
	}
	return nil, services.ErrInvalidCoupon
}

func (m *mockCouponService) UpdateCoupon(ctx context.Context, id uuid.UUID, req *models.CouponRequest) (*models.Coupon, error) {
	if m.UpdateCouponFunc != nil {
		return m.UpdateCouponFunc(ctx, id, req)
	}
	return nil, services.ErrCouponNotFound
}

func (m *mockCouponService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	if m.DeleteCouponFunc != nil {
		return m.DeleteCouponFunc(ctx, id)
	}
	return nil
}

// mockShippingService - мок для тестирования хендлеров
type mockShippingService struct {
	ResolveCostFunc  func(ctx context.Context, country string) (decimal.Decimal, error)
	GetConfigFunc    func(ctx context.Context) (*models.ShippingConfig, error)
	UpdateConfigFunc func(ctx context.Context, cfg *models.ShippingConfig) error
}

func (m *mockShippingService) ResolveCost(ctx context.Context, country string) (decimal.Decimal, error) {
	if m.ResolveCostFunc != nil {
		return m.ResolveCostFunc(ctx, country)
	}
	return decimal.Zero, nil
}

func (m *mockShippingService) GetConfig(ctx context.Context) (*models.ShippingConfig, error) {
	if m.GetConfigFunc != nil {
		return m.GetConfigFunc(ctx)
	}
	return &models.ShippingConfig{Mode: models.ShippingModeBasic}, nil
}

func (m *mockShippingService) UpdateConfig(ctx context.Context, cfg *models.ShippingConfig) error {
	if m.UpdateConfigFunc != nil {
		return m.UpdateConfigFunc(ctx, cfg)
	}
	return nil
}

// mockOrderService - мок для тестирования хендлеров
type mockOrderService struct {
	GetOrderFunc       func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersFunc     func(ctx context.Context, limit int) ([]*models.Order, error)
	PaymentStatusFunc  func(ctx context.Context, id uuid.UUID) (*models.PaymentStatusResponse, error)
	PaymentMethodsFunc func(ctx context.Context, id uuid.UUID) ([]btcpay.PaymentMethod, error)
	UpdateStatusFunc   func(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	ShipFunc           func(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error
}

func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, limit)
	}
	return []*models.Order{}, nil
}

func (m *mockOrderService) PaymentStatus(ctx context.Context, id uuid.UUID) (*models.PaymentStatusResponse, error) {
	if m.PaymentStatusFunc != nil {
		return m.PaymentStatusFunc(ctx, id)
	}
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) PaymentMethods(ctx context.Context, id uuid.UUID) ([]btcpay.PaymentMethod, error) {
	if m.PaymentMethodsFunc != nil {
		return m.PaymentMethodsFunc(ctx, id)
	}
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockOrderService) Ship(ctx context.Context, id uuid.UUID, shipment models.ShipmentData) error {
	if m.ShipFunc != nil {
		return m.ShipFunc(ctx, id, shipment)
	}
	return nil
}
