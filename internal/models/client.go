package models

import "time"

// Client represents an end customer of a tenant company.
type Client struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Name      string     `gorm:"type:varchar(255);not null"` // Client name.
	Email     string     `gorm:"type:text"`                  // Email address.
	Phone     string     `gorm:"type:varchar(32)"`           // Phone number, normalized E.164.
	BirthDate *time.Time `gorm:""`                           // Birth date for reminders.
	Notes     string     `gorm:"type:text"`                  // Free-form notes.

	Points int  `gorm:"not null;default:0"`    // Loyalty points balance.
	Active bool `gorm:"not null;default:true"` // Soft-delete flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
