package models

import "time"

// Admin represents a platform administrator account.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Name     string `gorm:"type:text"`                      // Display name.
	Email    string `gorm:"type:text"`                      // Email address.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Active       bool `gorm:"not null;default:true"`  // Whether the admin can sign in.
	IsSuperAdmin bool `gorm:"not null;default:false"` // First admin keeps full control.

	TOTPSecret string `gorm:"type:text"` // TOTP secret for MFA, empty when disabled.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
