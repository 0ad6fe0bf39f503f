package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agamariel/cryptomart/internal/models"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func activeCoupon() *models.Coupon {
	return &models.Coupon{
		ID:            uuid.New(),
		Code:          "SAVE10",
		Active:        true,
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		ValidFrom:     time.Now().Add(-time.Hour),
		Scope:         models.CouponScopeAll,
	}
}

func TestEvaluateCoupon(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	minOrder := decimal.NewFromInt(50)
	maxUses := 5
	scopedID := uuid.New()

	tests := []struct {
		name         string
		mutate       func(c *models.Coupon)
		subtotal     decimal.Decimal
		productIDs   []uuid.UUID
		wantDiscount string
		wantMessage  string
	}{
		{
			name:         "percentage discount on qualifying order",
			mutate:       func(c *models.Coupon) { c.MinOrderAmount = &minOrder },
			subtotal:     decimal.NewFromInt(100),
			wantDiscount: "10",
		},
		{
			name:        "inactive coupon",
			mutate:      func(c *models.Coupon) { c.Active = false },
			subtotal:    decimal.NewFromInt(100),
			wantMessage: "coupon is not active",
		},
		{
			name:        "not yet valid",
			mutate:      func(c *models.Coupon) { c.ValidFrom = future },
			subtotal:    decimal.NewFromInt(100),
			wantMessage: "coupon is not yet valid",
		},
		{
			name:        "expired coupon",
			mutate:      func(c *models.Coupon) { c.ValidUntil = &past },
			subtotal:    decimal.NewFromInt(100),
			wantMessage: "coupon has expired",
		},
		{
			name: "usage limit reached",
			mutate: func(c *models.Coupon) {
				c.MaxUses = &maxUses
				c.CurrentUses = 5
			},
			subtotal:    decimal.NewFromInt(100),
			wantMessage: "coupon usage limit reached",
		},
		{
			name:        "below minimum order amount",
			mutate:      func(c *models.Coupon) { c.MinOrderAmount = &minOrder },
			subtotal:    decimal.NewFromInt(40),
			wantMessage: "minimum order amount of 50.00 required",
		},
		{
			name: "specific scope without matching product",
			mutate: func(c *models.Coupon) {
				c.Scope = models.CouponScopeSpecific
				c.ProductIDs = []uuid.UUID{scopedID}
			},
			subtotal:    decimal.NewFromInt(100),
			productIDs:  []uuid.UUID{uuid.New()},
			wantMessage: "coupon is not applicable to items in your cart",
		},
		{
			name: "specific scope with matching product",
			mutate: func(c *models.Coupon) {
				c.Scope = models.CouponScopeSpecific
				c.ProductIDs = []uuid.UUID{scopedID}
			},
			subtotal:     decimal.NewFromInt(100),
			productIDs:   []uuid.UUID{scopedID, uuid.New()},
			wantDiscount: "10",
		},
		{
			name: "fixed discount capped at subtotal",
			mutate: func(c *models.Coupon) {
				c.DiscountType = models.DiscountTypeFixed
				c.DiscountValue = decimal.NewFromInt(500)
			},
			subtotal:     decimal.NewFromInt(120),
			wantDiscount: "120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := activeCoupon()
			tt.mutate(coupon)

			discount, err := EvaluateCoupon(coupon, tt.subtotal, tt.productIDs, now)

			if tt.wantMessage != "" {
				var rejection CouponRejectionError
				if !errors.As(err, &rejection) {
					t.Fatalf("expected CouponRejectionError, got %v", err)
				}
				if rejection.Message != tt.wantMessage {
					t.Errorf("expected message %q, got %q", tt.wantMessage, rejection.Message)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !discount.Equal(decimal.RequireFromString(tt.wantDiscount)) {
				t.Errorf("expected discount %s, got %s", tt.wantDiscount, discount)
			}
		})
	}
}

func TestCouponServiceValidate(t *testing.T) {
	coupon := activeCoupon()

	couponStorage := &storage.MockCouponStorage{
		GetByCodeFunc: func(ctx context.Context, code string) (*models.Coupon, error) {
			if code == coupon.Code {
				return coupon, nil
			}
			return nil, storage.ErrCouponNotFound
		},
	}

	service := NewCouponService(couponStorage)

	got, discount, err := service.Validate(context.Background(), "SAVE10", decimal.NewFromInt(100), "buyer@example.com", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "SAVE10" {
		t.Errorf("expected coupon SAVE10, got %s", got.Code)
	}
	if !discount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected discount 10, got %s", discount)
	}

	_, _, err = service.Validate(context.Background(), "MISSING", decimal.NewFromInt(100), "", nil)
	if !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestCouponServiceValidateOnePerCustomer(t *testing.T) {
	coupon := activeCoupon()
	coupon.OnePerCustomer = true

	couponStorage := &storage.MockCouponStorage{
		GetByCodeFunc: func(ctx context.Context, code string) (*models.Coupon, error) {
			return coupon, nil
		},
		HasUsageFunc: func(ctx context.Context, couponID uuid.UUID, customerEmail string) (bool, error) {
			return customerEmail == "repeat@example.com", nil
		},
	}

	service := NewCouponService(couponStorage)

	_, _, err := service.Validate(context.Background(), "SAVE10", decimal.NewFromInt(100), "repeat@example.com", nil)
	var rejection CouponRejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected CouponRejectionError, got %v", err)
	}
	if rejection.Message != "coupon already used by this customer" {
		t.Errorf("unexpected rejection message: %q", rejection.Message)
	}

	_, discount, err := service.Validate(context.Background(), "SAVE10", decimal.NewFromInt(100), "first@example.com", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected discount 10, got %s", discount)
	}
}

func TestCouponServiceRecordUsage(t *testing.T) {
	coupon := activeCoupon()
	orderID := uuid.New()

	incremented := false
	var recorded *models.CouponUsage

	couponStorage := &storage.MockCouponStorage{
		IncrementUsageFunc: func(ctx context.Context, id uuid.UUID) error {
			incremented = true
			return nil
		},
		RecordUsageFunc: func(ctx context.Context, usage *models.CouponUsage) error {
			recorded = usage
			return nil
		},
	}

	service := NewCouponService(couponStorage)

	if err := service.RecordUsage(context.Background(), coupon, "buyer@example.com", orderID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !incremented {
		t.Error("expected usage counter to be incremented")
	}
	if recorded == nil || recorded.CustomerEmail != "buyer@example.com" || recorded.OrderID != orderID {
		t.Errorf("unexpected usage record: %+v", recorded)
	}
}

func TestCouponFromRequestValidation(t *testing.T) {
	valid := models.CouponRequest{
		Code:          "save10",
		Active:        true,
		DiscountType:  "percentage",
		DiscountValue: 10,
		ValidFrom:     time.Now(),
		Scope:         "all",
	}

	tests := []struct {
		name    string
		mutate  func(r *models.CouponRequest)
		wantErr bool
	}{
		{"valid request", func(r *models.CouponRequest) {}, false},
		{"empty code", func(r *models.CouponRequest) { r.Code = "  " }, true},
		{"unknown discount type", func(r *models.CouponRequest) { r.DiscountType = "bogus" }, true},
		{"zero discount value", func(r *models.CouponRequest) { r.DiscountValue = 0 }, true},
		{"percentage over 100", func(r *models.CouponRequest) { r.DiscountValue = 150 }, true},
		{"unknown scope", func(r *models.CouponRequest) { r.Scope = "bogus" }, true},
		{"bad product id", func(r *models.CouponRequest) {
			r.Scope = "specific"
			r.ProductIDs = []string{"not-a-uuid"}
		}, true},
		{"specific scope without products", func(r *models.CouponRequest) { r.Scope = "specific" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			coupon, err := couponFromRequest(&req)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoupon) {
					t.Fatalf("expected ErrInvalidCoupon, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if coupon.Code != strings.ToUpper(valid.Code) {
				t.Errorf("expected normalized code %q, got %q", strings.ToUpper(valid.Code), coupon.Code)
			}
		})
	}
}
