package services

import (
	"context"
	"log"
	"time"

	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/google/uuid"
)

// Settler применяет побочные эффекты оплаты заказа.
type Settler interface {
	Settle(ctx context.Context, orderID uuid.UUID) error
}

// SettlementWatcher следит за оплатой инвойсов: раз в pollInterval
// опрашивает шлюз, раз в tickInterval ведёт обратный отсчёт до истечения
// инвойса. Оба таймера останавливаются вместе.
type SettlementWatcher struct {
	gateway      btcpay.Client
	settler      Settler
	pollInterval time.Duration
	tickInterval time.Duration
	logger       *log.Logger
}

// NewSettlementWatcher создаёт наблюдатель оплаты.
func NewSettlementWatcher(gateway btcpay.Client, settler Settler, pollInterval, tickInterval time.Duration, logger *log.Logger) *SettlementWatcher {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SettlementWatcher{
		gateway:      gateway,
		settler:      settler,
		pollInterval: pollInterval,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

// Watch запускает наблюдение за инвойсом в отдельной горутине.
// Наблюдение завершается по ctx.Done(), истечению инвойса или статусу Expired.
func (w *SettlementWatcher) Watch(ctx context.Context, orderID uuid.UUID, invoiceID string, expiresAt time.Time) {
	go w.run(ctx, orderID, invoiceID, expiresAt)
}

func (w *SettlementWatcher) run(ctx context.Context, orderID uuid.UUID, invoiceID string, expiresAt time.Time) {
	poll := time.NewTicker(w.pollInterval)
	countdown := time.NewTicker(w.tickInterval)
	defer poll.Stop()
	defer countdown.Stop()

	// Одноразовый флаг: опрос продолжается и после оплаты,
	// но побочные эффекты применяются не более одного раза
	fired := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-countdown.C:
			if !time.Now().Before(expiresAt) {
				// Инвойс истёк: pending-заказ не трогаем,
				// он остаётся для ручной сверки
				w.logger.Printf("invoice %s for order %s expired, stopping watch", invoiceID, orderID)
				return
			}
		case <-poll.C:
			invoice, err := w.gateway.GetInvoice(ctx, invoiceID)
			if err != nil {
				w.logger.Printf("failed to poll invoice %s: %v", invoiceID, err)
				continue
			}

			switch {
			case invoice.Status.IsSettledEquivalent():
				if fired {
					continue
				}
				fired = true
				w.logger.Printf("invoice %s observed %s, settling order %s", invoiceID, invoice.RawStatus, orderID)
				if err := w.settler.Settle(ctx, orderID); err != nil {
					w.logger.Printf("failed to settle order %s: %v", orderID, err)
				}
			case invoice.Status == btcpay.StatusExpired:
				w.logger.Printf("invoice %s expired, stopping watch for order %s", invoiceID, orderID)
				return
			}
		}
	}
}
