package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/services"
	"github.com/agamariel/cryptomart/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CatalogHandler обрабатывает публичные запросы каталога:
// товары, расчёт доставки, проверка купона.
type CatalogHandler struct {
	catalogService  services.CatalogService
	couponService   services.CouponService
	shippingService services.ShippingService
}

func NewCatalogHandler(catalogService services.CatalogService, couponService services.CouponService, shippingService services.ShippingService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		couponService:   couponService,
		shippingService: shippingService,
	}
}

// ListProducts обрабатывает GET /api/products.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.ListProducts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	response := make([]*models.ProductResponse, 0, len(products))
	for _, product := range products {
		response = append(response, mapProductToResponse(product))
	}

	return c.JSON(http.StatusOK, response)
}

// GetProduct обрабатывает GET /api/products/:id.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.catalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, mapProductToResponse(product))
}

// ShippingCost обрабатывает GET /api/shipping/cost?country=XX.
func (h *CatalogHandler) ShippingCost(c echo.Context) error {
	country := c.QueryParam("country")
	if country == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "country is required")
	}

	cost, err := h.shippingService.ResolveCost(c.Request().Context(), country)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, models.ShippingCostResponse{
		Country: country,
		Cost:    utils.ToFloat(cost),
	})
}

// ValidateCoupon обрабатывает POST /api/coupons/validate.
// Отказ по бизнес-правилу - это не ошибка HTTP, а valid=false с причиной.
func (h *CatalogHandler) ValidateCoupon(c echo.Context) error {
	var req models.CouponValidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
		}
		productIDs = append(productIDs, id)
	}

	subtotal := decimal.NewFromFloat(req.Subtotal)
	_, discount, err := h.couponService.Validate(c.Request().Context(), req.Code, subtotal, req.Email, productIDs)
	if err != nil {
		var rejection services.CouponRejectionError
		switch {
		case errors.As(err, &rejection):
			return c.JSON(http.StatusOK, models.CouponValidateResponse{Valid: false, Error: rejection.Message})
		case errors.Is(err, services.ErrCouponNotFound):
			return c.JSON(http.StatusOK, models.CouponValidateResponse{Valid: false, Error: "coupon not found"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, models.CouponValidateResponse{
		Valid:    true,
		Discount: utils.ToFloat(discount),
	})
}

// mapProductToResponse преобразует domain модель товара в DTO.
func mapProductToResponse(product *models.Product) *models.ProductResponse {
	resp := &models.ProductResponse{
		ID:             product.ID.String(),
		Name:           product.Name,
		Description:    product.Description,
		Price:          utils.ToFloat(product.Price),
		Stock:          product.Stock,
		ModifierGroups: product.ModifierGroups,
	}
	if product.DiscountPercent != nil {
		discount := utils.ToFloat(*product.DiscountPercent)
		resp.DiscountPercent = &discount
	}
	return resp
}
