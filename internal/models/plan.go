package models

import (
	"time"

	"gorm.io/datatypes"
)

// Plan represents a subscription plan configuration.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string  `gorm:"type:varchar(255);not null"`            // Plan name.
	MonthPrice  float64 `gorm:"type:decimal(10,2);not null;default:0"` // Monthly price.
	YearPrice   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Annual price (0 means not offered).
	Description string  `gorm:"type:text"`                             // Plan description.

	TrialDays        int `gorm:"not null;default:0"` // Free trial length in days.
	MaxProfessionals int `gorm:"not null;default:0"` // Professional headcount limit (0 means unlimited).

	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Feature permission map.

	SortOrder int  `gorm:"not null;default:0"`    // Display ordering weight.
	IsEnabled bool `gorm:"not null;default:true"` // Whether the plan is active.
	IsPublic  bool `gorm:"not null;default:true"` // Whether the plan appears on public pricing.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
