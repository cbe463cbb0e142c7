package models

import "time"

// Service represents a bookable service offered by a tenant.
type Service struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Name            string  `gorm:"type:varchar(255);not null"`            // Service name.
	Description     string  `gorm:"type:text"`                             // Service description.
	Price           float64 `gorm:"type:decimal(10,2);not null;default:0"` // Price charged to the client.
	DurationMinutes int     `gorm:"not null;default:30"`                   // Slot length in minutes.

	Active bool `gorm:"not null;default:true"` // Soft-delete flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
