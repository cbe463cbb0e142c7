package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salonkit/salonkit-server/internal/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func percentCoupon(value float64) *models.Coupon {
	return &models.Coupon{
		Code:          "SAVE",
		DiscountType:  models.CouponDiscountPercentage,
		DiscountValue: value,
		Active:        true,
	}
}

func TestDerivedStatus_Precedence(t *testing.T) {
	past := now.Add(-time.Hour)
	limit := 1

	// Inactive wins even when also expired and exhausted.
	cp := percentCoupon(10)
	cp.Active = false
	cp.ValidUntil = &past
	cp.UsageLimit = &limit
	cp.UsedCount = 1
	if got := DerivedStatus(cp, now); got != StatusInactive {
		t.Fatalf("got %s, want inactive", got)
	}

	// Expired wins over exhausted.
	cp.Active = true
	if got := DerivedStatus(cp, now); got != StatusExpired {
		t.Fatalf("got %s, want expired", got)
	}

	cp.ValidUntil = nil
	if got := DerivedStatus(cp, now); got != StatusExhausted {
		t.Fatalf("got %s, want exhausted", got)
	}

	cp.UsedCount = 0
	if got := DerivedStatus(cp, now); got != StatusValid {
		t.Fatalf("got %s, want valid", got)
	}
}

func TestDerivedStatus_ExhaustedAtLimit(t *testing.T) {
	limit := 1
	cp := percentCoupon(10)
	cp.UsageLimit = &limit
	cp.UsedCount = 1
	if got := DerivedStatus(cp, now); got != StatusExhausted {
		t.Fatalf("used_count == limit should be exhausted, got %s", got)
	}
}

func TestEvaluate_BelowMinimum(t *testing.T) {
	minimum := 50.0
	cp := percentCoupon(10)
	cp.MinOrderValue = &minimum

	eval := Evaluate(cp, now, decimal.NewFromInt(49))
	if eval.Status != StatusBelowMinimum {
		t.Fatalf("got %s, want below_minimum", eval.Status)
	}
	if eval.Minimum.StringFixed(2) != "50.00" {
		t.Fatalf("minimum = %s, want 50.00", eval.Minimum)
	}

	eval = Evaluate(cp, now, decimal.NewFromInt(50))
	if eval.Status != StatusValid {
		t.Fatalf("subtotal at minimum should be valid, got %s", eval.Status)
	}
}

func TestEvaluate_PercentageWithCap(t *testing.T) {
	maxDiscount := 20.0
	cp := percentCoupon(50)
	cp.MaxDiscount = &maxDiscount

	eval := Evaluate(cp, now, decimal.NewFromInt(100))
	if eval.Status != StatusValid {
		t.Fatalf("got %s, want valid", eval.Status)
	}
	if eval.Discount.StringFixed(2) != "20.00" {
		t.Fatalf("discount = %s, want 20.00 (capped)", eval.Discount)
	}

	eval = Evaluate(cp, now, decimal.NewFromInt(30))
	if eval.Discount.StringFixed(2) != "15.00" {
		t.Fatalf("discount = %s, want 15.00 (uncapped)", eval.Discount)
	}
}

func TestEvaluate_FixedCappedAtSubtotal(t *testing.T) {
	cp := &models.Coupon{
		Code:          "FLAT30",
		DiscountType:  models.CouponDiscountFixed,
		DiscountValue: 30,
		Active:        true,
	}

	eval := Evaluate(cp, now, decimal.NewFromInt(20))
	if eval.Discount.StringFixed(2) != "20.00" {
		t.Fatalf("discount = %s, want capped at subtotal 20.00", eval.Discount)
	}

	eval = Evaluate(cp, now, decimal.NewFromInt(100))
	if eval.Discount.StringFixed(2) != "30.00" {
		t.Fatalf("discount = %s, want 30.00", eval.Discount)
	}
}

func TestEvaluate_StoredStateBeforeMinimum(t *testing.T) {
	minimum := 50.0
	cp := percentCoupon(10)
	cp.Active = false
	cp.MinOrderValue = &minimum

	// Inactive must win even though the subtotal is also below minimum.
	eval := Evaluate(cp, now, decimal.NewFromInt(10))
	if eval.Status != StatusInactive {
		t.Fatalf("got %s, want inactive before minimum check", eval.Status)
	}
}

func TestEvaluate_UnknownTypeZeroDiscount(t *testing.T) {
	cp := percentCoupon(10)
	cp.DiscountType = "mystery"
	eval := Evaluate(cp, now, decimal.NewFromInt(100))
	if eval.Status != StatusValid {
		t.Fatalf("got %s, want valid", eval.Status)
	}
	if !eval.Discount.IsZero() {
		t.Fatalf("unknown type discount = %s, want 0", eval.Discount)
	}
}

func TestEvaluate_RoundsToCents(t *testing.T) {
	cp := percentCoupon(33)
	eval := Evaluate(cp, now, decimal.RequireFromString("9.99"))
	if eval.Discount.StringFixed(2) != "3.30" {
		t.Fatalf("discount = %s, want 3.30", eval.Discount)
	}
}
