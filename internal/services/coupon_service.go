package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExists   = errors.New("coupon already exists")
	ErrInvalidCoupon  = errors.New("invalid coupon")
)

// CouponRejectionError - отказ по бизнес-правилу купона.
// Сообщение предназначено покупателю.
type CouponRejectionError struct {
	Message string
}

func (e CouponRejectionError) Error() string {
	return e.Message
}

// CouponService описывает проверку и учёт применения купонов.
type CouponService interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error)
	RecordUsage(ctx context.Context, coupon *models.Coupon, email string, orderID uuid.UUID) error
	ListCoupons(ctx context.Context) ([]*models.Coupon, error)
	CreateCoupon(ctx context.Context, req *models.CouponRequest) (*models.Coupon, error)
	UpdateCoupon(ctx context.Context, id uuid.UUID, req *models.CouponRequest) (*models.Coupon, error)
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
}

// CouponServiceImpl реализует CouponService.
type CouponServiceImpl struct {
	couponStorage storage.CouponStorage
}

// NewCouponService создаёт сервис купонов.
func NewCouponService(couponStorage storage.CouponStorage) *CouponServiceImpl {
	return &CouponServiceImpl{couponStorage: couponStorage}
}

// Validate находит купон по коду, проверяет правило "один на покупателя"
// и бизнес-правила купона. Возвращает купон и размер скидки.
func (s *CouponServiceImpl) Validate(ctx context.Context, code string, subtotal decimal.Decimal, email string, productIDs []uuid.UUID) (*models.Coupon, decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, decimal.Zero, ErrCouponNotFound
	}

	coupon, err := s.couponStorage.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrCouponNotFound) {
			return nil, decimal.Zero, ErrCouponNotFound
		}
		return nil, decimal.Zero, fmt.Errorf("get coupon: %w", err)
	}

	// "Один на покупателя" проверяется до бизнес-правил самого купона
	if coupon.OnePerCustomer && email != "" {
		used, err := s.couponStorage.HasUsage(ctx, coupon.ID, email)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("check coupon usage: %w", err)
		}
		if used {
			return nil, decimal.Zero, CouponRejectionError{Message: "coupon already used by this customer"}
		}
	}

	discount, err := EvaluateCoupon(coupon, subtotal, productIDs, time.Now())
	if err != nil {
		return nil, decimal.Zero, err
	}

	return coupon, discount, nil
}

// RecordUsage увеличивает счётчик использований и пишет запись о применении.
func (s *CouponServiceImpl) RecordUsage(ctx context.Context, coupon *models.Coupon, email string, orderID uuid.UUID) error {
	if err := s.couponStorage.IncrementUsage(ctx, coupon.ID); err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}

	usage := &models.CouponUsage{
		CouponID:      coupon.ID,
		CustomerEmail: email,
		OrderID:       orderID,
	}
	if err := s.couponStorage.RecordUsage(ctx, usage); err != nil {
		return fmt.Errorf("record coupon usage: %w", err)
	}

	return nil
}

// ListCoupons возвращает все купоны для админки.
func (s *CouponServiceImpl) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	coupons, err := s.couponStorage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// CreateCoupon создаёт купон по данным из админки.
func (s *CouponServiceImpl) CreateCoupon(ctx context.Context, req *models.CouponRequest) (*models.Coupon, error) {
	coupon, err := couponFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.couponStorage.Create(ctx, coupon); err != nil {
		if errors.Is(err, storage.ErrCouponAlreadyExists) {
			return nil, ErrCouponExists
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return coupon, nil
}

// UpdateCoupon обновляет купон по данным из админки.
func (s *CouponServiceImpl) UpdateCoupon(ctx context.Context, id uuid.UUID, req *models.CouponRequest) (*models.Coupon, error) {
	coupon, err := couponFromRequest(req)
	if err != nil {
		return nil, err
	}
	coupon.ID = id

	if err := s.couponStorage.Update(ctx, coupon); err != nil {
		if errors.Is(err, storage.ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("update coupon: %w", err)
	}

	return coupon, nil
}

// DeleteCoupon удаляет купон.
func (s *CouponServiceImpl) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	if err := s.couponStorage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrCouponNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("delete coupon: %w", err)
	}
	return nil
}

// couponFromRequest валидирует DTO и строит доменную модель купона.
func couponFromRequest(req *models.CouponRequest) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidCoupon)
	}

	discountType := models.DiscountType(req.DiscountType)
	if discountType != models.DiscountTypePercentage && discountType != models.DiscountTypeFixed {
		return nil, fmt.Errorf("%w: unknown discount type %q", ErrInvalidCoupon, req.DiscountType)
	}
	if req.DiscountValue <= 0 {
		return nil, fmt.Errorf("%w: discount value must be positive", ErrInvalidCoupon)
	}
	if discountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("%w: percentage discount cannot exceed 100", ErrInvalidCoupon)
	}

	scope := models.CouponScope(req.Scope)
	if scope == "" {
		scope = models.CouponScopeAll
	}
	if scope != models.CouponScopeAll && scope != models.CouponScopeSpecific {
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidCoupon, req.Scope)
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad product id %q", ErrInvalidCoupon, raw)
		}
		productIDs = append(productIDs, id)
	}
	if scope == models.CouponScopeSpecific && len(productIDs) == 0 {
		return nil, fmt.Errorf("%w: specific scope requires product ids", ErrInvalidCoupon)
	}

	coupon := &models.Coupon{
		Code:           code,
		Active:         req.Active,
		DiscountType:   discountType,
		DiscountValue:  decimal.NewFromFloat(req.DiscountValue),
		MaxUses:        req.MaxUses,
		OnePerCustomer: req.OnePerCustomer,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		Scope:          scope,
		ProductIDs:     productIDs,
	}

	if req.MinOrderAmount != nil {
		min := decimal.NewFromFloat(*req.MinOrderAmount)
		coupon.MinOrderAmount = &min
	}

	return coupon, nil
}

// EvaluateCoupon - чистая проверка бизнес-правил купона.
// Правила проверяются по порядку, первая неудача прерывает проверку.
func EvaluateCoupon(coupon *models.Coupon, subtotal decimal.Decimal, productIDs []uuid.UUID, now time.Time) (decimal.Decimal, error) {
	if !coupon.Active {
		return decimal.Zero, CouponRejectionError{Message: "coupon is not active"}
	}

	if now.Before(coupon.ValidFrom) {
		return decimal.Zero, CouponRejectionError{Message: "coupon is not yet valid"}
	}

	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return decimal.Zero, CouponRejectionError{Message: "coupon has expired"}
	}

	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return decimal.Zero, CouponRejectionError{Message: "coupon usage limit reached"}
	}

	if coupon.MinOrderAmount != nil && subtotal.LessThan(*coupon.MinOrderAmount) {
		return decimal.Zero, CouponRejectionError{
			Message: fmt.Sprintf("minimum order amount of %s required", coupon.MinOrderAmount.StringFixed(2)),
		}
	}

	if coupon.Scope == models.CouponScopeSpecific {
		if !intersects(coupon.ProductIDs, productIDs) {
			return decimal.Zero, CouponRejectionError{Message: "coupon is not applicable to items in your cart"}
		}
	}

	return couponDiscount(coupon, subtotal), nil
}

// couponDiscount считает размер скидки, ограничивая её суммой заказа.
func couponDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

func intersects(a, b []uuid.UUID) bool {
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
