package models

import "time"

// Appointment status values.
const (
	// AppointmentStatusScheduled marks a booked, upcoming appointment.
	AppointmentStatusScheduled = "scheduled"
	// AppointmentStatusCompleted marks a finished appointment.
	AppointmentStatusCompleted = "completed"
	// AppointmentStatusCancelled marks a cancelled appointment.
	AppointmentStatusCancelled = "cancelled"
)

// Appointment links a client, a professional, and a service at a time slot.
type Appointment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	ClientID       uint64       `gorm:"not null;index"`           // Booked client.
	Client         Client       `gorm:"foreignKey:ClientID"`      // Booked client record.
	ProfessionalID uint64       `gorm:"not null;index"`           // Assigned professional.
	Professional   Professional `gorm:"foreignKey:ProfessionalID"` // Assigned professional record.
	ServiceID      uint64       `gorm:"not null;index"`           // Booked service.
	Service        Service      `gorm:"foreignKey:ServiceID"`     // Booked service record.

	StartsAt        time.Time `gorm:"not null;index"`                        // Slot start time.
	DurationMinutes int       `gorm:"not null;default:30"`                   // Slot length, copied from the service.
	Price           float64   `gorm:"type:decimal(10,2);not null;default:0"` // Price at booking time.

	Status string `gorm:"type:varchar(16);not null;default:'scheduled'"` // Lifecycle status.
	Notes  string `gorm:"type:text"`                                     // Free-form notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
