package models

import "time"

// Coupon discount types.
const (
	// CouponDiscountPercentage discounts a percentage of the subtotal.
	CouponDiscountPercentage = "percentage"
	// CouponDiscountFixed discounts a fixed amount.
	CouponDiscountFixed = "fixed"
)

// Coupon represents a discount code. Platform coupons have a nil CompanyID;
// tenant coupons are scoped to the owning company.
type Coupon struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID *uint64  `gorm:"index"`                // Owning tenant, nil for platform coupons.
	Company   *Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Code          string   `gorm:"type:varchar(64);not null;uniqueIndex"` // Unique redeem code.
	DiscountType  string   `gorm:"type:varchar(16);not null"`             // percentage or fixed.
	DiscountValue float64  `gorm:"type:decimal(10,2);not null;default:0"` // Percentage points or fixed amount.
	MinOrderValue *float64 `gorm:"type:decimal(10,2)"`                    // Minimum subtotal, nil for none.
	MaxDiscount   *float64 `gorm:"type:decimal(10,2)"`                    // Discount cap, nil for none.

	UsageLimit *int `gorm:""`                   // Total redemption limit, nil for unlimited.
	UsedCount  int  `gorm:"not null;default:0"` // Redemptions so far.

	ValidUntil *time.Time `gorm:""`                    // Expiry, nil for no expiry.
	Active     bool       `gorm:"not null;default:true"` // Manual active flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
