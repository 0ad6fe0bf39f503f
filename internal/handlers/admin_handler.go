package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/agamariel/cryptomart/internal/auth"
	"github.com/agamariel/cryptomart/internal/config"
	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/services"
	"github.com/agamariel/cryptomart/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const defaultOrderListLimit = 100

// AdminHandler обрабатывает запросы бэк-офиса.
type AdminHandler struct {
	cfg             *config.Config
	catalogService  services.CatalogService
	couponService   services.CouponService
	shippingService services.ShippingService
	orderService    services.OrderService
}

func NewAdminHandler(cfg *config.Config, catalogService services.CatalogService, couponService services.CouponService, shippingService services.ShippingService, orderService services.OrderService) *AdminHandler {
	return &AdminHandler{
		cfg:             cfg,
		catalogService:  catalogService,
		couponService:   couponService,
		shippingService: shippingService,
		orderService:    orderService,
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Login != h.cfg.AdminLogin || !auth.CheckPassword(req.Password, h.cfg.AdminPasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := auth.GenerateToken(req.Login, h.cfg.JWTSecret, h.cfg.TokenExpiration)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	c.SetCookie(&http.Cookie{
		Name:     "Authorization",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(h.cfg.TokenExpiration),
	})

	return c.JSON(http.StatusOK, models.AdminLoginResponse{Token: token})
}

// CreateProduct обрабатывает POST /api/admin/products.
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req models.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	product, err := h.catalogService.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProduct) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusCreated, mapProductToResponse(product))
}

// UpdateProduct обрабатывает PUT /api/admin/products/:id.
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req models.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	product, err := h.catalogService.UpdateProduct(c.Request().Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidProduct):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrProductNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, mapProductToResponse(product))
}

// DeleteProduct обрабатывает DELETE /api/admin/products/:id.
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.catalogService.DeleteProduct(c.Request().Context(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListCoupons обрабатывает GET /api/admin/coupons.
func (h *AdminHandler) ListCoupons(c echo.Context) error {
	coupons, err := h.couponService.ListCoupons(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	response := make([]*models.CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		response = append(response, mapCouponToResponse(coupon))
	}

	return c.JSON(http.StatusOK, response)
}

// CreateCoupon обрабатывает POST /api/admin/coupons.
func (h *AdminHandler) CreateCoupon(c echo.Context) error {
	var req models.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	coupon, err := h.couponService.CreateCoupon(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCoupon):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrCouponExists):
			return echo.NewHTTPError(http.StatusConflict, "coupon code already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusCreated, mapCouponToResponse(coupon))
}

// UpdateCoupon обрабатывает PUT /api/admin/coupons/:id.
func (h *AdminHandler) UpdateCoupon(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid coupon id")
	}

	var req models.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	coupon, err := h.couponService.UpdateCoupon(c.Request().Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCoupon):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrCouponNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, mapCouponToResponse(coupon))
}

// DeleteCoupon обрабатывает DELETE /api/admin/coupons/:id.
func (h *AdminHandler) DeleteCoupon(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid coupon id")
	}

	if err := h.couponService.DeleteCoupon(c.Request().Context(), id); err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetShippingConfig обрабатывает GET /api/admin/shipping.
func (h *AdminHandler) GetShippingConfig(c echo.Context) error {
	cfg, err := h.shippingService.GetConfig(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, mapShippingConfigToResponse(cfg))
}

// UpdateShippingConfig обрабатывает PUT /api/admin/shipping.
func (h *AdminHandler) UpdateShippingConfig(c echo.Context) error {
	var req models.ShippingConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	mode := models.ShippingMode(req.Mode)
	if mode != models.ShippingModeBasic && mode != models.ShippingModeAdvanced {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown shipping mode")
	}

	cfg := &models.ShippingConfig{
		Mode:              mode,
		DomesticCountries: req.DomesticCountries,
		DomesticRate:      decimal.NewFromFloat(req.DomesticRate),
		InternationalRate: decimal.NewFromFloat(req.InternationalRate),
		DefaultRate:       decimal.NewFromFloat(req.DefaultRate),
	}
	if len(req.CountryRates) > 0 {
		cfg.CountryRates = make(map[string]decimal.Decimal, len(req.CountryRates))
		for country, rate := range req.CountryRates {
			cfg.CountryRates[country] = decimal.NewFromFloat(rate)
		}
	}

	if err := h.shippingService.UpdateConfig(c.Request().Context(), cfg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, mapShippingConfigToResponse(cfg))
}

// ListOrders обрабатывает GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	limit := defaultOrderListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	response := make([]*models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, mapOrderToResponse(order))
	}

	return c.JSON(http.StatusOK, response)
}

// GetOrder обрабатывает GET /api/admin/orders/:id.
func (h *AdminHandler) GetOrder(c echo.Context) error {
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

// UpdateOrderStatus обрабатывает PATCH /api/admin/orders/:id/status.
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req models.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err = h.orderService.UpdateStatus(c.Request().Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrUnknownOrderStatus):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown order status")
		case errors.Is(err, services.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, "invalid status transition")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// ShipOrder обрабатывает POST /api/admin/orders/:id/ship.
func (h *AdminHandler) ShipOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req models.ShipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TrackingNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tracking number is required")
	}

	shipment := models.ShipmentData{
		TrackingNumber: req.TrackingNumber,
		TrackingURL:    req.TrackingURL,
		NotifyAt:       req.NotifyAt,
	}
	if req.ShippedAt != nil {
		shipment.ShippedAt = *req.ShippedAt
	}

	if err := h.orderService.Ship(c.Request().Context(), id, shipment); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrOrderNotPaid):
			return echo.NewHTTPError(http.StatusConflict, "order is not paid")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// mapCouponToResponse преобразует domain модель купона в DTO.
func mapCouponToResponse(coupon *models.Coupon) *models.CouponResponse {
	resp := &models.CouponResponse{
		ID:             coupon.ID.String(),
		Code:           coupon.Code,
		Active:         coupon.Active,
		DiscountType:   string(coupon.DiscountType),
		DiscountValue:  utils.ToFloat(coupon.DiscountValue),
		MaxUses:        coupon.MaxUses,
		CurrentUses:    coupon.CurrentUses,
		OnePerCustomer: coupon.OnePerCustomer,
		ValidFrom:      coupon.ValidFrom,
		ValidUntil:     coupon.ValidUntil,
		Scope:          string(coupon.Scope),
	}
	if coupon.MinOrderAmount != nil {
		min := utils.ToFloat(*coupon.MinOrderAmount)
		resp.MinOrderAmount = &min
	}
	for _, id := range coupon.ProductIDs {
		resp.ProductIDs = append(resp.ProductIDs, id.String())
	}
	return resp
}

// mapShippingConfigToResponse преобразует конфигурацию доставки в DTO.
func mapShippingConfigToResponse(cfg *models.ShippingConfig) *models.ShippingConfigResponse {
	resp := &models.ShippingConfigResponse{
		Mode:              string(cfg.Mode),
		DomesticCountries: cfg.DomesticCountries,
		DomesticRate:      utils.ToFloat(cfg.DomesticRate),
		InternationalRate: utils.ToFloat(cfg.InternationalRate),
		DefaultRate:       utils.ToFloat(cfg.DefaultRate),
		UpdatedAt:         cfg.UpdatedAt.Format(time.RFC3339),
	}
	if len(cfg.CountryRates) > 0 {
		resp.CountryRates = make(map[string]float64, len(cfg.CountryRates))
		for country, rate := range cfg.CountryRates {
			resp.CountryRates[country] = utils.ToFloat(rate)
		}
	}
	return resp
}
