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

// WatchFunc запускает наблюдение за оплатой инвойса.
type WatchFunc func(orderID uuid.UUID, invoiceID string, expiresAt time.Time)

// CheckoutHandler обрабатывает оформление заказа.
type CheckoutHandler struct {
	checkoutService services.CheckoutService
	watch           WatchFunc
}

func NewCheckoutHandler(checkoutService services.CheckoutService, watch WatchFunc) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, watch: watch}
}

// Checkout обрабатывает POST /api/checkout.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.checkoutService.Checkout(c.Request().Context(), &req)
	if err != nil {
		var stockErr services.InsufficientStockError
		var rejection services.CouponRejectionError
		switch {
		case errors.As(err, &stockErr):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error":           "insufficient stock",
				"product_name":    stockErr.ProductName,
				"requested":       stockErr.Requested,
				"available_stock": stockErr.AvailableStock,
			})
		case errors.As(err, &rejection):
			return echo.NewHTTPError(http.StatusBadRequest, rejection.Message)
		case errors.Is(err, services.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, services.ErrInvalidProductID):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
		case errors.Is(err, services.ErrProductNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "product not found")
		case errors.Is(err, services.ErrUnknownModifier):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown product modifier")
		case errors.Is(err, services.ErrTotalMismatch):
			return echo.NewHTTPError(http.StatusBadRequest, "order total mismatch")
		case errors.Is(err, services.ErrCouponNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "coupon not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	if h.watch != nil && result.Invoice != nil {
		h.watch(result.Order.ID, result.Invoice.ID, result.Invoice.ExpiresAt)
	}

	resp := models.CheckoutResponse{
		OrderID:     result.Order.ID.String(),
		OrderNumber: result.Order.Number,
		Total:       utils.ToFloat(result.Order.Total),
	}
	if result.Invoice != nil {
		resp.InvoiceID = result.Invoice.ID
		resp.CheckoutLink = result.Invoice.CheckoutLink
		if !result.Invoice.ExpiresAt.IsZero() {
			expires := result.Invoice.ExpiresAt.Format(time.RFC3339)
			resp.ExpiresAt = &expires
		}
	}

	return c.JSON(http.StatusCreated, resp)
}
