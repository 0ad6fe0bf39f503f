package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/agamariel/cryptomart/internal/mailer"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
)

// NotificationService описывает отправку писем покупателям.
type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendShippingNotice(ctx context.Context, order *models.Order) error
	RunShippingSweep(ctx context.Context) (int, error)
}

// NotificationServiceImpl реализует NotificationService.
type NotificationServiceImpl struct {
	orderStorage storage.OrderStorage
	mail         mailer.Mailer
	logger       *log.Logger
}

// NewNotificationService создаёт сервис нотификаций.
func NewNotificationService(orderStorage storage.OrderStorage, mail mailer.Mailer, logger *log.Logger) *NotificationServiceImpl {
	if logger == nil {
		logger = log.Default()
	}
	return &NotificationServiceImpl{
		orderStorage: orderStorage,
		mail:         mail,
		logger:       logger,
	}
}

// SendOrderConfirmation отправляет письмо-подтверждение заказа.
func (s *NotificationServiceImpl) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if order.Shipping.Email == "" {
		return nil
	}

	subject, text, html := mailer.OrderConfirmation(order)
	if err := s.mail.Send(ctx, order.Shipping.Email, subject, text, html); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}

	return nil
}

// SendShippingNotice отправляет письмо об отправке заказа.
func (s *NotificationServiceImpl) SendShippingNotice(ctx context.Context, order *models.Order) error {
	if order.Shipping.Email == "" {
		return nil
	}

	subject, text, html := mailer.ShippingNotice(order)
	if err := s.mail.Send(ctx, order.Shipping.Email, subject, text, html); err != nil {
		return fmt.Errorf("send shipping email: %w", err)
	}

	return nil
}

// RunShippingSweep отправляет письма по всем заказам, у которых
// запланированное время нотификации прошло, письмо ещё не отправлено
// и трек-номер заполнен. Заказы обрабатываются независимо: неудачная
// отправка не мешает остальным и оставляет заказ в выборке следующего
// прохода. Возвращает число отправленных писем.
func (s *NotificationServiceImpl) RunShippingSweep(ctx context.Context) (int, error) {
	orders, err := s.orderStorage.ListDueShippingNotifications(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("list due notifications: %w", err)
	}

	if len(orders) > 0 {
		s.logger.Printf("processing %d due shipping notifications", len(orders))
	}

	sent := 0
	for _, order := range orders {
		if order.Shipping.Email == "" {
			s.logger.Printf("order %s has no customer email, skipping shipping notice", order.Number)
			continue
		}

		if err := s.SendShippingNotice(ctx, order); err != nil {
			s.logger.Printf("failed to send shipping notice for order %s: %v", order.Number, err)
			continue
		}

		if err := s.orderStorage.MarkShippingNotified(ctx, order.ID, time.Now()); err != nil {
			// Письмо ушло, но отметка не записана: заказ попадёт
			// в следующий проход и письмо может уйти повторно
			s.logger.Printf("failed to mark order %s notified: %v", order.Number, err)
			continue
		}

		sent++
	}

	return sent, nil
}
