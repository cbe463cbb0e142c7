package models

import "time"

// Professional represents a staff member who performs services.
type Professional struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Name      string `gorm:"type:varchar(255);not null"` // Professional name.
	Email     string `gorm:"type:text"`                  // Email address.
	Phone     string `gorm:"type:varchar(32)"`           // Phone number, normalized E.164.
	Specialty string `gorm:"type:varchar(255)"`          // Specialty label.

	Active bool `gorm:"not null;default:true"` // Counts against the plan limit while true.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
