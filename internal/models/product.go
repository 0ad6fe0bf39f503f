package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModifierGroup представляет группу опций товара (например, цвет).
type ModifierGroup struct {
	Label   string     `json:"label"`
	Options []Modifier `json:"options"`
}

// Product представляет товар каталога.
type Product struct {
	ID              uuid.UUID        `db:"id"`
	Name            string           `db:"name"`
	Description     string           `db:"description"`
	Price           decimal.Decimal  `db:"price"`
	DiscountPercent *decimal.Decimal `db:"discount_percent"`
	Stock           int              `db:"stock"`
	ModifierGroups  []ModifierGroup  `db:"modifier_groups"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}

// EffectivePrice возвращает цену с учётом процентной скидки товара.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPercent == nil || p.DiscountPercent.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(100).Sub(*p.DiscountPercent).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

// ProductRequest - DTO создания/обновления товара в админке.
type ProductRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           float64         `json:"price"`
	DiscountPercent *float64        `json:"discount_percent,omitempty"`
	Stock           int             `json:"stock"`
	ModifierGroups  []ModifierGroup `json:"modifier_groups,omitempty"`
}

// ProductResponse - DTO товара для публичного API.
type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           float64         `json:"price"`
	DiscountPercent *float64        `json:"discount_percent,omitempty"`
	Stock           int             `json:"stock"`
	ModifierGroups  []ModifierGroup `json:"modifier_groups,omitempty"`
}
