package models

import "time"

// Support ticket status values.
const (
	// TicketStatusOpen marks a ticket awaiting a staff reply.
	TicketStatusOpen = "open"
	// TicketStatusAnswered marks a ticket awaiting a tenant reply.
	TicketStatusAnswered = "answered"
	// TicketStatusClosed marks a resolved ticket.
	TicketStatusClosed = "closed"
)

// Ticket message author types.
const (
	// TicketAuthorCompany marks a message written by the tenant.
	TicketAuthorCompany = "company"
	// TicketAuthorAdmin marks a message written by platform staff.
	TicketAuthorAdmin = "admin"
)

// SupportTicket represents a support conversation opened by a tenant.
type SupportTicket struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning tenant.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning tenant record.

	Reference string `gorm:"type:varchar(36);not null;uniqueIndex"` // Public reference code.
	Subject   string `gorm:"type:varchar(255);not null"`            // Ticket subject.
	Status    string `gorm:"type:varchar(16);not null;default:'open'"` // Lifecycle status.

	Messages []TicketMessage `gorm:"foreignKey:TicketID"` // Conversation messages.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TicketMessage is a single message inside a support ticket.
type TicketMessage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	TicketID uint64        `gorm:"not null;index"`      // Parent ticket.
	Ticket   SupportTicket `gorm:"foreignKey:TicketID"` // Parent ticket record.

	AuthorType string `gorm:"type:varchar(16);not null"` // company or admin.
	Body       string `gorm:"type:text;not null"`        // Message body.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
