package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType описывает тип скидки купона.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// CouponScope описывает область применения купона.
type CouponScope string

const (
	CouponScopeAll      CouponScope = "all"
	CouponScopeSpecific CouponScope = "specific"
)

// Coupon представляет купон на скидку.
type Coupon struct {
	ID             uuid.UUID        `db:"id"`
	Code           string           `db:"code"`
	Active         bool             `db:"active"`
	DiscountType   DiscountType     `db:"discount_type"`
	DiscountValue  decimal.Decimal  `db:"discount_value"`
	MinOrderAmount *decimal.Decimal `db:"min_order_amount"`
	MaxUses        *int             `db:"max_uses"`
	CurrentUses    int              `db:"current_uses"`
	OnePerCustomer bool             `db:"one_per_customer"`
	ValidFrom      time.Time        `db:"valid_from"`
	ValidUntil     *time.Time       `db:"valid_until"`
	Scope          CouponScope      `db:"scope"`
	ProductIDs     []uuid.UUID      `db:"product_ids"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

// CouponUsage представляет факт применения купона покупателем.
type CouponUsage struct {
	ID            uuid.UUID `db:"id"`
	CouponID      uuid.UUID `db:"coupon_id"`
	CustomerEmail string    `db:"customer_email"`
	OrderID       uuid.UUID `db:"order_id"`
	UsedAt        time.Time `db:"used_at"`
}

// CouponValidateRequest - запрос проверки купона для корзины.
type CouponValidateRequest struct {
	Code       string   `json:"code"`
	Subtotal   float64  `json:"subtotal"`
	Email      string   `json:"email,omitempty"`
	ProductIDs []string `json:"product_ids,omitempty"`
}

// CouponValidateResponse - результат проверки купона.
type CouponValidateResponse struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// CouponResponse - DTO купона для админки.
type CouponResponse struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Active         bool       `json:"active"`
	DiscountType   string     `json:"discount_type"`
	DiscountValue  float64    `json:"discount_value"`
	MinOrderAmount *float64   `json:"min_order_amount,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	CurrentUses    int        `json:"current_uses"`
	OnePerCustomer bool       `json:"one_per_customer"`
	ValidFrom      time.Time  `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	Scope          string     `json:"scope"`
	ProductIDs     []string   `json:"product_ids,omitempty"`
}

// CouponRequest - DTO создания/обновления купона в админке.
type CouponRequest struct {
	Code           string     `json:"code"`
	Active         bool       `json:"active"`
	DiscountType   string     `json:"discount_type"`
	DiscountValue  float64    `json:"discount_value"`
	MinOrderAmount *float64   `json:"min_order_amount,omitempty"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	OnePerCustomer bool       `json:"one_per_customer"`
	ValidFrom      time.Time  `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	Scope          string     `json:"scope"`
	ProductIDs     []string   `json:"product_ids,omitempty"`
}
