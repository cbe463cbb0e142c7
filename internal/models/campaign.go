package models

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign status values.
const (
	// CampaignStatusDraft marks an unsent campaign.
	CampaignStatusDraft = "draft"
	// CampaignStatusQueued marks a campaign scheduled for delivery.
	CampaignStatusQueued = "queued"
	// CampaignStatusSent marks a delivered campaign.
	CampaignStatusSent = "sent"
)

// Campaign records a WhatsApp message campaign. Delivery happens through an
// external integration; this service only stores and schedules the records.
type Campaign struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Name     string         `gorm:"type:varchar(255);not null"`       // Campaign name.
	Message  string         `gorm:"type:text;not null"`               // Message body.
	Audience datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Target client IDs.

	Status      string     `gorm:"type:varchar(16);not null;default:'draft'"` // Lifecycle status.
	ScheduledAt *time.Time `gorm:""`                                          // Scheduled send time.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
