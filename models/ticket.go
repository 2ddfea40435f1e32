package models

import (
	"time"
)

type TicketType string

const (
	TicketTypeOrganizerReport TicketType = "organizer_report"
	TicketTypeGDPRDeletion    TicketType = "gdpr_deletion"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// IsTerminal reports whether the ticket has been dealt with.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Ticket is a moderation request handled by admins, independent of
// the event lifecycle.
type Ticket struct {
	ID          string       `json:"id" gorm:"primaryKey;size:191"`
	Type        TicketType   `json:"type" gorm:"not null;size:30"`
	Status      TicketStatus `json:"status" gorm:"not null;size:20;default:'open'"`
	Title       string       `json:"title" gorm:"not null;size:255"`
	Description *string      `json:"description" gorm:"type:text"`
	UserID      string       `json:"user_id" gorm:"not null;size:191"`
	ResolvedBy  *string      `json:"resolved_by" gorm:"size:191"`
	ResolvedAt  *time.Time   `json:"resolved_at"`
	AdminNotes  *string      `json:"admin_notes" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}
