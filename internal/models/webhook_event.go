package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent stores a processed billing gateway event for idempotency.
type WebhookEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	EventID string         `gorm:"type:varchar(128);not null;uniqueIndex"` // Gateway event identifier.
	Type    string         `gorm:"type:varchar(64);not null"`              // Gateway event type.
	Payload datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`       // Raw event payload.

	ProcessedAt time.Time `gorm:"not null"` // When the event was applied.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
