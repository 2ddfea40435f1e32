package models

import (
	"time"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// CanTransitionTo reports whether the status change is allowed.
// Transitions are monotonic: draft -> active -> completed, with
// cancelled reachable from draft and active only.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case EventStatusDraft:
		return next == EventStatusActive || next == EventStatusCancelled
	case EventStatusActive:
		return next == EventStatusCompleted || next == EventStatusCancelled
	default:
		return false
	}
}

type Event struct {
	ID                  string      `json:"id" gorm:"primaryKey;size:191"`
	Title               string      `json:"title" gorm:"not null;size:255"`
	Description         string      `json:"description" gorm:"type:text"`
	SportType           string      `json:"sport_type" gorm:"not null;size:50"`
	DateTime            time.Time   `json:"date_time" gorm:"not null"`
	DurationMinutes     int         `json:"duration_minutes" gorm:"not null;default:60"`
	Location            string      `json:"location" gorm:"not null;size:255"`
	MaxParticipants     int         `json:"max_participants" gorm:"not null"`
	Price               float64     `json:"price" gorm:"default:0"`
	Status              EventStatus `json:"status" gorm:"not null;size:20;default:'draft'"`
	CreatorID           string      `json:"creator_id" gorm:"not null;size:191"`
	CoOrganizerIDs      StringSlice `json:"co_organizer_ids" gorm:"type:json"`
	CancelDeadlineHours int         `json:"cancel_deadline_hours" gorm:"not null;default:2"`
	AttendanceRecorded  bool        `json:"attendance_recorded" gorm:"default:false"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	Creator      User               `json:"creator" gorm:"foreignKey:CreatorID"`
	Participants []EventParticipant `json:"participants,omitempty" gorm:"foreignKey:EventID"`
}

// EndsAt returns the scheduled end of the event.
func (e *Event) EndsAt() time.Time {
	return e.DateTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// CancelDeadline returns the last moment a participant may still withdraw.
func (e *Event) CancelDeadline() time.Time {
	return e.DateTime.Add(-time.Duration(e.CancelDeadlineHours) * time.Hour)
}

// IsOrganizer reports whether the user created the event or co-organizes it.
func (e *Event) IsOrganizer(userID string) bool {
	return e.CreatorID == userID || e.CoOrganizerIDs.Contains(userID)
}

type EventParticipant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"not null;size:191;index:idx_participants_event_user,unique"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;index:idx_participants_event_user,unique"`
	IsReserve bool      `json:"is_reserve" gorm:"default:false"`
	Attended  *bool     `json:"attended"`
	CreatedAt time.Time `json:"created_at"`

	Event Event `json:"-" gorm:"foreignKey:EventID"`
	User  User  `json:"user" gorm:"foreignKey:UserID"`
}

// SignupResult is returned to a user after joining an event.
type SignupResult struct {
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	IsReserve bool   `json:"is_reserve"`
	Position  int    `json:"position"`
}
