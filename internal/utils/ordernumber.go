package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber возвращает человекочитаемый номер заказа:
// метка времени плюс случайный суффикс. Уникальность не проверяется
// активно, коллизии исключает уникальный индекс в базе.
func GenerateOrderNumber(now time.Time) string {
	suffix, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand практически не ошибается; запасной вариант - наносекунды
		return fmt.Sprintf("%s-%06d", now.Format("20060102150405"), now.Nanosecond()%1000000)
	}
	return fmt.Sprintf("%s-%06d", now.Format("20060102150405"), suffix.Int64())
}
