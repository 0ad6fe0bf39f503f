package utils

import "github.com/shopspring/decimal"

// totalEpsilon - допуск при сверке сумм: плавающая точка на клиенте
// накапливает погрешность в цепочке умножений.
var totalEpsilon = decimal.NewFromFloat(0.01)

// AmountsMatch сравнивает две суммы с допуском 0.01.
func AmountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(totalEpsilon)
}

// ToFloat конвертирует decimal в float64 для DTO.
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
