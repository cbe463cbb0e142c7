// Package coupon derives coupon validity and discount amounts. Status is a
// derived value, never stored; the precedence is inactive > expired >
// exhausted > active, and only then the minimum-order check applies.
package coupon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/salonkit/salonkit-server/internal/models"
)

// Status is the derived validity state of a coupon.
type Status string

// Status values.
const (
	// StatusValid means the coupon applies and a discount was computed.
	StatusValid Status = "valid"
	// StatusInactive means the coupon was manually deactivated.
	StatusInactive Status = "inactive"
	// StatusExpired means the validity window has passed.
	StatusExpired Status = "expired"
	// StatusExhausted means the usage limit was reached.
	StatusExhausted Status = "exhausted"
	// StatusBelowMinimum means the subtotal is under the minimum order value.
	StatusBelowMinimum Status = "below_minimum"
)

// Evaluation is the outcome of applying a coupon to a subtotal.
type Evaluation struct {
	Status   Status          // Derived status.
	Discount decimal.Decimal // Computed discount, zero unless valid.
	Minimum  decimal.Decimal // Configured minimum, set when below minimum.
}

// DerivedStatus computes the stored-state portion of coupon validity, without
// looking at an order subtotal.
func DerivedStatus(cp *models.Coupon, now time.Time) Status {
	if cp == nil || !cp.Active {
		return StatusInactive
	}
	if cp.ValidUntil != nil && now.After(*cp.ValidUntil) {
		return StatusExpired
	}
	if cp.UsageLimit != nil && cp.UsedCount >= *cp.UsageLimit {
		return StatusExhausted
	}
	return StatusValid
}

// Evaluate applies a coupon to a subtotal at the given time. The stored-state
// checks run before the minimum-order check, which runs before any discount
// computation.
func Evaluate(cp *models.Coupon, now time.Time, subtotal decimal.Decimal) Evaluation {
	if status := DerivedStatus(cp, now); status != StatusValid {
		return Evaluation{Status: status}
	}

	if cp.MinOrderValue != nil {
		minimum := decimal.NewFromFloat(*cp.MinOrderValue)
		if subtotal.LessThan(minimum) {
			return Evaluation{Status: StatusBelowMinimum, Minimum: minimum}
		}
	}

	return Evaluation{Status: StatusValid, Discount: discountFor(cp, subtotal)}
}

// discountFor computes the discount amount for a valid coupon.
func discountFor(cp *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	value := decimal.NewFromFloat(cp.DiscountValue)

	var discount decimal.Decimal
	switch cp.DiscountType {
	case models.CouponDiscountPercentage:
		discount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
		if cp.MaxDiscount != nil {
			maxDiscount := decimal.NewFromFloat(*cp.MaxDiscount)
			if discount.GreaterThan(maxDiscount) {
				discount = maxDiscount
			}
		}
	case models.CouponDiscountFixed:
		discount = value
	default:
		return decimal.Zero
	}

	// Never discount more than the order is worth.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}
