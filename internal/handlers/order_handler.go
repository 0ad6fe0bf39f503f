package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/services"
	"github.com/agamariel/cryptomart/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrderHandler обрабатывает публичные запросы по заказу:
// просмотр заказа и поллинг с экрана оплаты.
type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetOrder обрабатывает GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, mapOrderToResponse(order))
}

// PaymentStatus обрабатывает GET /api/orders/:id/payment-status.
func (h *OrderHandler) PaymentStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	status, err := h.orderService.PaymentStatus(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, status)
}

// PaymentMethods обрабатывает GET /api/orders/:id/payment-methods.
func (h *OrderHandler) PaymentMethods(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	methods, err := h.orderService.PaymentMethods(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrOrderHasNoInvoice):
			return echo.NewHTTPError(http.StatusNotFound, "order has no invoice")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	response := make([]models.PaymentMethodResponse, 0, len(methods))
	for _, method := range methods {
		response = append(response, models.PaymentMethodResponse{
			CryptoCode:  method.CryptoCode,
			Destination: method.Destination,
			PaymentLink: method.PaymentLink,
			AmountDue:   utils.ToFloat(method.AmountDue),
		})
	}

	return c.JSON(http.StatusOK, response)
}

// mapOrderToResponse преобразует domain модель заказа в DTO.
func mapOrderToResponse(order *models.Order) *models.OrderResponse {
	resp := &models.OrderResponse{
		ID:             order.ID.String(),
		Number:         order.Number,
		Status:         string(order.Status),
		Items:          order.Items,
		Shipping:       order.Shipping,
		ShippingCost:   utils.ToFloat(order.ShippingCost),
		CouponCode:     order.CouponCode,
		DiscountAmount: utils.ToFloat(order.DiscountAmount),
		Total:          utils.ToFloat(order.Total),
		InvoiceID:      order.InvoiceID,
		TrackingNumber: order.TrackingNumber,
		TrackingURL:    order.TrackingURL,
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
	}
	if order.PaidAt != nil {
		paidAt := order.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}
