package models

import "time"

// Task represents a to-do item for a tenant operator.
type Task struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Title       string     `gorm:"type:varchar(255);not null"` // Task title.
	Description string     `gorm:"type:text"`                  // Task details.
	DueDate     *time.Time `gorm:""`                           // Optional due date.
	Done        bool       `gorm:"not null;default:false"`     // Completion flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
