package models

import "time"

// Setting is a key/value platform configuration row.
type Setting struct {
	Key   string `gorm:"type:varchar(128);primaryKey"` // Setting key.
	Value string `gorm:"type:text"`                    // Setting value.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
