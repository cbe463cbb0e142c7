package models

import "time"

// Subscription status values stored on Company.SubscriptionStatus.
const (
	// SubscriptionStatusActive marks a paid, current subscription.
	SubscriptionStatusActive = "active"
	// SubscriptionStatusTrialing marks a company inside its free trial.
	SubscriptionStatusTrialing = "trialing"
	// SubscriptionStatusPastDue marks an overdue payment.
	SubscriptionStatusPastDue = "past_due"
	// SubscriptionStatusPaymentFailed marks a failed charge attempt.
	SubscriptionStatusPaymentFailed = "payment_failed"
	// SubscriptionStatusCancelled marks a cancelled subscription.
	SubscriptionStatusCancelled = "cancelled"
)

// Company represents a tenant business account.
type Company struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(255);not null"`     // Legal name.
	FantasyName string `gorm:"type:varchar(255)"`              // Trade name shown to end customers.
	TaxID       string `gorm:"type:varchar(32);index"`         // Tax document (CNPJ/CPF).
	Email       string `gorm:"type:text;not null;uniqueIndex"` // Operator login email.
	Password    string `gorm:"type:text;not null"`             // Hashed operator password.
	Phone       string `gorm:"type:varchar(32)"`               // Contact phone, normalized.
	WhatsApp    string `gorm:"type:varchar(32)"`               // WhatsApp number, normalized.

	PlanID *uint64 `gorm:"index"`             // Assigned plan ID (nil means no plan).
	Plan   *Plan   `gorm:"foreignKey:PlanID"` // Assigned plan.

	Active  bool `gorm:"not null;default:true"`  // Soft-deactivation flag.
	Blocked bool `gorm:"not null;default:false"` // Administrative block flag.

	TrialEndsAt           *time.Time `gorm:""`                       // Trial expiry, nil when never trialed.
	SubscriptionStatus    string     `gorm:"type:varchar(32);index"` // Billing-derived status.
	BillingSubscriptionID string     `gorm:"type:varchar(128)"`      // External gateway subscription ID.
	NextDueDate           *time.Time `gorm:""`                       // Next billing date from the gateway.

	AffiliateID *uint64    `gorm:"index"`                  // Referring affiliate, if any.
	Affiliate   *Affiliate `gorm:"foreignKey:AffiliateID"` // Referring affiliate record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
