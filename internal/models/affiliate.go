package models

import "time"

// Affiliate represents a referral partner who brings in companies.
type Affiliate struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name  string `gorm:"type:varchar(255);not null"`     // Affiliate name.
	Email string `gorm:"type:text;not null;uniqueIndex"` // Contact email.
	Phone string `gorm:"type:varchar(32)"`               // Contact phone.

	ReferralCode      string  `gorm:"type:varchar(16);not null;uniqueIndex"` // Code used on signup links.
	CommissionPercent float64 `gorm:"type:decimal(5,2);not null;default:0"`  // Commission on referred revenue.

	Active bool `gorm:"not null;default:true"` // Whether new referrals are accepted.

	Companies []Company `gorm:"foreignKey:AffiliateID"` // Referred companies.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
