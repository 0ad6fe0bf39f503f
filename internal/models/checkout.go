package models

// CheckoutItem - позиция корзины в запросе оформления заказа.
type CheckoutItem struct {
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
}

// CheckoutRequest - запрос оформления заказа.
// Total пересчитывается на сервере и сверяется с присланным значением.
type CheckoutRequest struct {
	Items      []CheckoutItem  `json:"items"`
	Shipping   ShippingAddress `json:"shipping_address"`
	CouponCode string          `json:"coupon_code,omitempty"`
	// Currency - предпочтительная криптовалюта оплаты: bitcoin, monero или пусто.
	Currency string  `json:"currency,omitempty"`
	Total    float64 `json:"total"`
}

// CheckoutResponse - результат оформления заказа.
type CheckoutResponse struct {
	OrderID      string  `json:"order_id"`
	OrderNumber  string  `json:"order_number"`
	InvoiceID    string  `json:"invoice_id,omitempty"`
	CheckoutLink string  `json:"checkout_link,omitempty"`
	ExpiresAt    *string `json:"expires_at,omitempty"`
	Total        float64 `json:"total"`
}

// PaymentStatusResponse - статус оплаты для поллинга с экрана оплаты.
type PaymentStatusResponse struct {
	OrderStatus   string  `json:"order_status"`
	InvoiceStatus string  `json:"invoice_status,omitempty"`
	ExpiresAt     *string `json:"expires_at,omitempty"`
}

// PaymentMethodResponse - реквизиты оплаты по одной криптовалюте.
type PaymentMethodResponse struct {
	CryptoCode  string  `json:"crypto_code"`
	Destination string  `json:"destination"`
	PaymentLink string  `json:"payment_link"`
	AmountDue   float64 `json:"amount_due"`
}
