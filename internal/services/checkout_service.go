package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/agamariel/cryptomart/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrProductNotFound  = errors.New("product not found")
	ErrUnknownModifier  = errors.New("unknown product modifier")
	ErrTotalMismatch    = errors.New("order total mismatch")
	ErrInvalidProductID = errors.New("invalid product id")
)

// InsufficientStockError - отказ из-за нехватки остатка.
// Название товара и доступное количество возвращаются покупателю,
// чтобы клиент мог скорректировать корзину.
type InsufficientStockError struct {
	ProductName    string
	Requested      int
	AvailableStock int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.AvailableStock)
}

// CheckoutResult - результат оформления заказа.
type CheckoutResult struct {
	Order   *models.Order
	Invoice *btcpay.Invoice
}

// CheckoutService описывает оформление заказа и применение оплаты.
type CheckoutService interface {
	Checkout(ctx context.Context, req *models.CheckoutRequest) (*CheckoutResult, error)
	Settle(ctx context.Context, orderID uuid.UUID) error
}

// CheckoutServiceImpl реализует CheckoutService.
type CheckoutServiceImpl struct {
	orderStorage   storage.OrderStorage
	productStorage storage.ProductStorage
	couponService  CouponService
	shipping       ShippingService
	gateway        btcpay.Client
	notifier       NotificationService
	currency       string
	logger         *log.Logger
}

// NewCheckoutService создаёт сервис оформления заказов.
func NewCheckoutService(
	orderStorage storage.OrderStorage,
	productStorage storage.ProductStorage,
	couponService CouponService,
	shipping ShippingService,
	gateway btcpay.Client,
	notifier NotificationService,
	currency string,
	logger *log.Logger,
) *CheckoutServiceImpl {
	if currency == "" {
		currency = "USD"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CheckoutServiceImpl{
		orderStorage:   orderStorage,
		productStorage: productStorage,
		couponService:  couponService,
		shipping:       shipping,
		gateway:        gateway,
		notifier:       notifier,
		currency:       currency,
		logger:         logger,
	}
}

// Checkout выполняет оформление заказа: проверка остатков и суммы,
// создание заказа, учёт купона, создание и привязка инвойса.
// Шаги после создания заказа не откатывают его при ошибке.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, req *models.CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Шаг 1: проверка остатков и пересчёт суммы на сервере
	items, productIDs, err := s.validateItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	var coupon *models.Coupon
	discount := decimal.Zero
	if req.CouponCode != "" {
		coupon, discount, err = s.couponService.Validate(ctx, req.CouponCode, subtotal, req.Shipping.Email, productIDs)
		if err != nil {
			return nil, err
		}
	}

	shippingCost, err := s.shipping.ResolveCost(ctx, req.Shipping.Country)
	if err != nil {
		return nil, fmt.Errorf("resolve shipping cost: %w", err)
	}

	total := subtotal.Add(shippingCost).Sub(discount).Round(2)
	if !utils.AmountsMatch(total, decimal.NewFromFloat(req.Total)) {
		return nil, ErrTotalMismatch
	}

	// Шаг 2: создание заказа в статусе pending
	order := &models.Order{
		Number:         utils.GenerateOrderNumber(time.Now()),
		Status:         models.OrderStatusPending,
		Items:          items,
		Shipping:       req.Shipping,
		ShippingCost:   shippingCost.Round(2),
		DiscountAmount: discount,
		Total:          total,
	}
	if coupon != nil {
		order.CouponCode = &coupon.Code
	}

	if err := s.orderStorage.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Шаг 3: учёт применения купона; ошибка не откатывает заказ
	if coupon != nil && req.Shipping.Email != "" {
		if err := s.couponService.RecordUsage(ctx, coupon, req.Shipping.Email, order.ID); err != nil {
			s.logger.Printf("failed to record coupon usage for order %s: %v", order.Number, err)
		}
	}

	// Шаг 4: создание инвойса; при ошибке заказ остаётся pending без инвойса,
	// повторная попытка оплаты допустима
	invoice, err := s.gateway.CreateInvoice(ctx, btcpay.CreateInvoiceParams{
		Amount:         order.Total,
		Currency:       s.currency,
		OrderID:        order.ID.String(),
		BuyerEmail:     req.Shipping.Email,
		PaymentMethods: btcpay.MethodsForCurrency(req.Currency),
	})
	if err != nil {
		s.logger.Printf("failed to create invoice for order %s: %v", order.Number, err)
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	// Шаг 5: привязка инвойса к заказу, best-effort
	if err := s.orderStorage.AttachInvoice(ctx, order.ID, invoice.ID); err != nil {
		s.logger.Printf("failed to attach invoice %s to order %s: %v", invoice.ID, order.Number, err)
	} else {
		order.InvoiceID = &invoice.ID
	}

	return &CheckoutResult{Order: order, Invoice: invoice}, nil
}

// validateItems проверяет каждую позицию корзины по каталогу и собирает
// позиции заказа с серверными ценами.
func (s *CheckoutServiceImpl) validateItems(ctx context.Context, reqItems []models.CheckoutItem) ([]models.OrderItem, []uuid.UUID, error) {
	items := make([]models.OrderItem, 0, len(reqItems))
	productIDs := make([]uuid.UUID, 0, len(reqItems))

	for _, reqItem := range reqItems {
		productID, err := uuid.Parse(reqItem.ProductID)
		if err != nil {
			return nil, nil, ErrInvalidProductID
		}
		if reqItem.Quantity <= 0 {
			return nil, nil, fmt.Errorf("invalid quantity for product %s", reqItem.ProductID)
		}

		product, err := s.productStorage.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				return nil, nil, ErrProductNotFound
			}
			return nil, nil, fmt.Errorf("get product: %w", err)
		}

		if reqItem.Quantity > product.Stock {
			return nil, nil, InsufficientStockError{
				ProductName:    product.Name,
				Requested:      reqItem.Quantity,
				AvailableStock: product.Stock,
			}
		}

		modifiers, err := resolveModifiers(product, reqItem.Modifiers)
		if err != nil {
			return nil, nil, err
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.EffectivePrice(),
			Quantity:  reqItem.Quantity,
			Modifiers: modifiers,
		})
		productIDs = append(productIDs, product.ID)
	}

	return items, productIDs, nil
}

// resolveModifiers сверяет выбранные модификаторы с каталогом и берёт
// наценку из каталога, а не из запроса.
func resolveModifiers(product *models.Product, requested []models.Modifier) ([]models.Modifier, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	catalog := make(map[string]decimal.Decimal)
	for _, group := range product.ModifierGroups {
		for _, option := range group.Options {
			catalog[option.Label] = option.PriceDelta
		}
	}

	resolved := make([]models.Modifier, 0, len(requested))
	for _, mod := range requested {
		delta, ok := catalog[mod.Label]
		if !ok {
			return nil, ErrUnknownModifier
		}
		resolved = append(resolved, models.Modifier{Label: mod.Label, PriceDelta: delta})
	}

	return resolved, nil
}

// Settle применяет побочные эффекты оплаты: перевод заказа в paid,
// списание остатков, письмо-подтверждение. Повторный вызов для уже
// оплаченного заказа ничего не делает - условный переход pending→paid
// срабатывает не более одного раза.
func (s *CheckoutServiceImpl) Settle(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	transitioned, err := s.orderStorage.MarkPaid(ctx, orderID, time.Now())
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if !transitioned {
		s.logger.Printf("order %s already settled, skipping side effects", order.Number)
		return nil
	}

	// Списание остатков: позиции обрабатываются независимо,
	// ошибка по одной не мешает остальным
	for _, item := range order.Items {
		if err := s.productStorage.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Printf("failed to decrement stock for product %s (order %s): %v",
				item.ProductID, order.Number, err)
		}
	}

	if order.Shipping.Email != "" && s.notifier != nil {
		if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			s.logger.Printf("failed to send confirmation for order %s: %v", order.Number, err)
		}
	}

	return nil
}
