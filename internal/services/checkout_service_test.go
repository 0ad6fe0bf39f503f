package services

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func widgetProduct() *models.Product {
	return &models.Product{
		ID:    uuid.New(),
		Name:  "Widget",
		Price: decimal.NewFromInt(20),
		Stock: 10,
		ModifierGroups: []models.ModifierGroup{
			{
				Label: "Size",
				Options: []models.Modifier{
					{Label: "Small", PriceDelta: decimal.Zero},
					{Label: "Large", PriceDelta: decimal.NewFromInt(5)},
				},
			},
		},
	}
}

func catalogStorage(products ...*models.Product) *storage.MockProductStorage {
	return &storage.MockProductStorage{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			for _, p := range products {
				if p.ID == id {
					return p, nil
				}
			}
			return nil, storage.ErrProductNotFound
		},
	}
}

func flatShipping(rate int64) *mockShippingService {
	return &mockShippingService{
		ResolveCostFunc: func(ctx context.Context, country string) (decimal.Decimal, error) {
			return decimal.NewFromInt(rate), nil
		},
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	product := widgetProduct()

	var createdOrder *models.Order
	var attachedInvoice string
	orderStorage := &storage.MockOrderStorage{
		CreateFunc: func(ctx context.Context, order *models.Order) error {
			order.ID = uuid.New()
			createdOrder = order
			return nil
		},
		AttachInvoiceFunc: func(ctx context.Context, id uuid.UUID, invoiceID string) error {
			attachedInvoice = invoiceID
			return nil
		},
	}

	var invoiceParams btcpay.CreateInvoiceParams
	gateway := &mockGateway{
		CreateInvoiceFunc: func(ctx context.Context, params btcpay.CreateInvoiceParams) (*btcpay.Invoice, error) {
			invoiceParams = params
			return &btcpay.Invoice{
				ID:           "inv-1",
				Status:       btcpay.StatusNew,
				RawStatus:    "New",
				CheckoutLink: "https://pay.example.com/i/inv-1",
				ExpiresAt:    time.Now().Add(15 * time.Minute),
			}, nil
		},
	}

	service := NewCheckoutService(orderStorage, catalogStorage(product), &mockCouponService{}, flatShipping(10), gateway, &mockNotifier{}, "USD", testLogger())

	// (20 + 5) * 3 = 75 за позицию, плюс 10 доставка
	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{
			{
				ProductID: product.ID.String(),
				Quantity:  3,
				Modifiers: []models.Modifier{{Label: "Large"}},
			},
		},
		Shipping: models.ShippingAddress{
			Name:    "Alice",
			Email:   "alice@example.com",
			Line1:   "1 Main St",
			City:    "Springfield",
			Country: "US",
		},
		Currency: "bitcoin",
		Total:    85,
	}

	result, err := service.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if createdOrder == nil {
		t.Fatal("expected order to be created")
	}
	if createdOrder.Status != models.OrderStatusPending {
		t.Errorf("expected pending status, got %s", createdOrder.Status)
	}
	if !createdOrder.Total.Equal(decimal.NewFromInt(85)) {
		t.Errorf("expected total 85, got %s", createdOrder.Total)
	}
	if got := createdOrder.Items[0].LineTotal(); !got.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected line total 75, got %s", got)
	}
	// Наценка модификатора берётся из каталога, а не из запроса
	if got := createdOrder.Items[0].Modifiers[0].PriceDelta; !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected modifier delta 5, got %s", got)
	}

	if attachedInvoice != "inv-1" {
		t.Errorf("expected invoice inv-1 attached, got %q", attachedInvoice)
	}
	if result.Invoice.ID != "inv-1" {
		t.Errorf("expected invoice inv-1 in result, got %q", result.Invoice.ID)
	}
	if invoiceParams.Currency != "USD" {
		t.Errorf("expected invoice currency USD, got %q", invoiceParams.Currency)
	}
	if len(invoiceParams.PaymentMethods) != 2 {
		t.Errorf("expected bitcoin payment methods, got %v", invoiceParams.PaymentMethods)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	service := NewCheckoutService(&storage.MockOrderStorage{}, &storage.MockProductStorage{}, &mockCouponService{}, flatShipping(0), &mockGateway{}, nil, "USD", testLogger())

	_, err := service.Checkout(context.Background(), &models.CheckoutRequest{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	product := widgetProduct()
	product.Stock = 2

	service := NewCheckoutService(&storage.MockOrderStorage{}, catalogStorage(product), &mockCouponService{}, flatShipping(0), &mockGateway{}, nil, "USD", testLogger())

	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{{ProductID: product.ID.String(), Quantity: 5}},
		Total: 100,
	}

	_, err := service.Checkout(context.Background(), req)
	var stockErr InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductName != "Widget" {
		t.Errorf("expected product name Widget, got %q", stockErr.ProductName)
	}
	if stockErr.AvailableStock != 2 {
		t.Errorf("expected available stock 2, got %d", stockErr.AvailableStock)
	}
	if stockErr.Requested != 5 {
		t.Errorf("expected requested 5, got %d", stockErr.Requested)
	}
}

func TestCheckoutTotalMismatch(t *testing.T) {
	product := widgetProduct()

	created := false
	orderStorage := &storage.MockOrderStorage{
		CreateFunc: func(ctx context.Context, order *models.Order) error {
			created = true
			return nil
		},
	}

	service := NewCheckoutService(orderStorage, catalogStorage(product), &mockCouponService{}, flatShipping(10), &mockGateway{}, nil, "USD", testLogger())

	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		// Сервер насчитает 30: клиентская сумма занижена
		Total: 25,
	}

	_, err := service.Checkout(context.Background(), req)
	if !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}
	if created {
		t.Error("order must not be created on total mismatch")
	}
}

func TestCheckoutUnknownModifier(t *testing.T) {
	product := widgetProduct()

	service := NewCheckoutService(&storage.MockOrderStorage{}, catalogStorage(product), &mockCouponService{}, flatShipping(0), &mockGateway{}, nil, "USD", testLogger())

	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{
			{
				ProductID: product.ID.String(),
				Quantity:  1,
				Modifiers: []models.Modifier{{Label: "Gigantic"}},
			},
		},
		Total: 20,
	}

	_, err := service.Checkout(context.Background(), req)
	if !errors.Is(err, ErrUnknownModifier) {
		t.Errorf("expected ErrUnknownModifier, got %v", err)
	}
}

func TestCheckoutProductNotFound(t *testing.T) {
	service := NewCheckoutService(&storage.MockOrderStorage{}, &storage.MockProductStorage{}, &mockCouponService{}, flatShipping(0), &mockGateway{}, nil, "USD", testLogger())

	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{{ProductID: uuid.NewString(), Quantity: 1}},
		Total: 20,
	}

	_, err := service.Checkout(context.Background(), req)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCheckoutWithCoupon(t *testing.T) {
	product := widgetProduct()
	coupon := activeCoupon()

	usageRecorded := false
	couponService := &mockCouponService{
		ValidateFunc: func(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error) {
			if code != "SAVE10" {
				t.Errorf("expected code SAVE10, got %q", code)
			}
			return coupon, subtotal.Mul(decimal.NewFromFloat(0.1)).Round(2), nil
		},
		RecordUsageFunc: func(ctx context.Context, c *models.Coupon, email string, orderID uuid.UUID) error {
			usageRecorded = true
			return nil
		},
	}

	var createdOrder *models.Order
	orderStorage := &storage.MockOrderStorage{
		CreateFunc: func(ctx context.Context, order *models.Order) error {
			order.ID = uuid.New()
			createdOrder = order
			return nil
		},
	}

	service := NewCheckoutService(orderStorage, catalogStorage(product), couponService, flatShipping(10), &mockGateway{}, nil, "USD", testLogger())

	// 5 * 20 = 100, скидка 10, доставка 10
	req := &models.CheckoutRequest{
		Items:      []models.CheckoutItem{{ProductID: product.ID.String(), Quantity: 5}},
		Shipping:   models.ShippingAddress{Email: "buyer@example.com", Country: "US"},
		CouponCode: "SAVE10",
		Total:      100,
	}

	if _, err := service.Checkout(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !createdOrder.DiscountAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected discount 10, got %s", createdOrder.DiscountAmount)
	}
	if createdOrder.CouponCode == nil || *createdOrder.CouponCode != "SAVE10" {
		t.Errorf("expected coupon code SAVE10 on order, got %v", createdOrder.CouponCode)
	}
	if !usageRecorded {
		t.Error("expected coupon usage to be recorded")
	}
}

func TestCheckoutInvoiceFailureKeepsOrderPending(t *testing.T) {
	product := widgetProduct()

	orderStorage := &storage.MockOrderStorage{
		CreateFunc: func(ctx context.Context, order *models.Order) error {
			order.ID = uuid.New()
			return nil
		},
		AttachInvoiceFunc: func(ctx context.Context, id uuid.UUID, invoiceID string) error {
			t.Error("attach must not be called when invoice creation fails")
			return nil
		},
	}

	gateway := &mockGateway{
		CreateInvoiceFunc: func(ctx context.Context, params btcpay.CreateInvoiceParams) (*btcpay.Invoice, error) {
			return nil, errors.New("gateway unavailable")
		},
	}

	service := NewCheckoutService(orderStorage, catalogStorage(product), &mockCouponService{}, flatShipping(0), gateway, nil, "USD", testLogger())

	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		Total: 20,
	}

	if _, err := service.Checkout(context.Background(), req); err == nil {
		t.Fatal("expected error when invoice creation fails")
	}
}

func TestSettleDecrementsStockOnce(t *testing.T) {
	productID := uuid.New()
	orderID := uuid.New()

	order := &models.Order{
		ID:     orderID,
		Number: "20260101120000-000001",
		Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: productID, Name: "Widget", UnitPrice: decimal.NewFromInt(20), Quantity: 3},
		},
		Shipping: models.ShippingAddress{Email: "alice@example.com"},
	}

	paid := false
	orderStorage := &storage.MockOrderStorage{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
		MarkPaidFunc: func(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
			if paid {
				return false, nil
			}
			paid = true
			return true, nil
		},
	}

	decrements := 0
	productStorage := &storage.MockProductStorage{
		DecrementStockFunc: func(ctx context.Context, id uuid.UUID, quantity int) error {
			if id != productID || quantity != 3 {
				t.Errorf("unexpected decrement: product %s quantity %d", id, quantity)
			}
			decrements++
			return nil
		},
	}

	confirmations := 0
	notifier := &mockNotifier{
		SendOrderConfirmationFunc: func(ctx context.Context, o *models.Order) error {
			confirmations++
			return nil
		},
	}

	service := NewCheckoutService(orderStorage, productStorage, &mockCouponService{}, flatShipping(0), &mockGateway{}, notifier, "USD", testLogger())

	// Повторное применение оплаты не дублирует побочные эффекты
	if err := service.Settle(context.Background(), orderID); err != nil {
		t.Fatalf("unexpected error on first settle: %v", err)
	}
	if err := service.Settle(context.Background(), orderID); err != nil {
		t.Fatalf("unexpected error on second settle: %v", err)
	}

	if decrements != 1 {
		t.Errorf("expected exactly 1 stock decrement, got %d", decrements)
	}
	if confirmations != 1 {
		t.Errorf("expected exactly 1 confirmation email, got %d", confirmations)
	}
}

func TestSettleStockFailureDoesNotAbort(t *testing.T) {
	firstID := uuid.New()
	secondID := uuid.New()
	orderID := uuid.New()

	order := &models.Order{
		ID:     orderID,
		Number: "20260101120000-000002",
		Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: firstID, Name: "Widget", UnitPrice: decimal.NewFromInt(20), Quantity: 1},
			{ProductID: secondID, Name: "Gadget", UnitPrice: decimal.NewFromInt(30), Quantity: 2},
		},
	}

	orderStorage := &storage.MockOrderStorage{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}

	var decremented []uuid.UUID
	productStorage := &storage.MockProductStorage{
		DecrementStockFunc: func(ctx context.Context, id uuid.UUID, quantity int) error {
			decremented = append(decremented, id)
			if id == firstID {
				return errors.New("storage failure")
			}
			return nil
		},
	}

	service := NewCheckoutService(orderStorage, productStorage, &mockCouponService{}, flatShipping(0), &mockGateway{}, nil, "USD", testLogger())

	if err := service.Settle(context.Background(), orderID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(decremented) != 2 {
		t.Errorf("expected both items decremented despite failure, got %v", decremented)
	}
}
