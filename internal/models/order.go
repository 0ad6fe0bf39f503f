package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Modifier представляет выбранную опцию товара с наценкой.
type Modifier struct {
	Label      string          `json:"label"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// OrderItem представляет позицию заказа.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Modifiers []Modifier      `json:"modifiers,omitempty"`
}

// EffectivePrice возвращает цену единицы с учётом модификаторов.
func (i OrderItem) EffectivePrice() decimal.Decimal {
	price := i.UnitPrice
	for _, m := range i.Modifiers {
		price = price.Add(m.PriceDelta)
	}
	return price
}

// LineTotal возвращает стоимость позиции.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress представляет адрес доставки.
type ShippingAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order представляет заказ покупателя.
type Order struct {
	ID             uuid.UUID       `db:"id"`
	Number         string          `db:"number"`
	Status         OrderStatus     `db:"status"`
	Items          []OrderItem     `db:"items"`
	Shipping       ShippingAddress `db:"shipping_address"`
	ShippingCost   decimal.Decimal `db:"shipping_cost"`
	CouponCode     *string         `db:"coupon_code"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	Total          decimal.Decimal `db:"total"`
	InvoiceID      *string         `db:"invoice_id"`
	TrackingNumber *string         `db:"tracking_number"`
	TrackingURL    *string         `db:"tracking_url"`
	ShippedAt      *time.Time      `db:"shipped_at"`
	NotifyAt       *time.Time      `db:"shipping_notification_scheduled_at"`
	NotifiedAt     *time.Time      `db:"shipping_notification_sent_at"`
	PaidAt         *time.Time      `db:"paid_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Subtotal возвращает сумму позиций без доставки и скидки.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// ShipmentData описывает данные отправления, заполняемые при отгрузке.
type ShipmentData struct {
	TrackingNumber string     `json:"tracking_number"`
	TrackingURL    string     `json:"tracking_url"`
	ShippedAt      time.Time  `json:"shipped_at"`
	NotifyAt       *time.Time `json:"notify_at,omitempty"`
}

// OrderResponse - DTO заказа для API.
type OrderResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Status         string          `json:"status"`
	Items          []OrderItem     `json:"items"`
	Shipping       ShippingAddress `json:"shipping_address"`
	ShippingCost   float64         `json:"shipping_cost"`
	CouponCode     *string         `json:"coupon_code,omitempty"`
	DiscountAmount float64         `json:"discount_amount"`
	Total          float64         `json:"total"`
	InvoiceID      *string         `json:"invoice_id,omitempty"`
	TrackingNumber *string         `json:"tracking_number,omitempty"`
	TrackingURL    *string         `json:"tracking_url,omitempty"`
	PaidAt         *string         `json:"paid_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}
