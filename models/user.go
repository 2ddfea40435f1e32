package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:191"`
	FullName     string    `json:"full_name" gorm:"not null;size:255"`
	Nickname     string    `json:"nickname" gorm:"uniqueIndex;not null;size:50"`
	Email        *string   `json:"email" gorm:"size:255"`
	Phone        *string   `json:"phone" gorm:"size:30"`
	PasswordHash string    `json:"-" gorm:"not null;size:255"`
	AvatarURL    *string   `json:"avatar_url" gorm:"size:500"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	CreatedEvents  []Event            `json:"created_events,omitempty" gorm:"foreignKey:CreatorID"`
	Participations []EventParticipant `json:"participations,omitempty" gorm:"foreignKey:UserID"`
	Roles          []UserRole         `json:"roles,omitempty" gorm:"foreignKey:UserID"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type UserRole struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;size:191"`
	Role      string    `json:"role" gorm:"not null;size:20;default:'user'"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// AuditLog records an administrative action against a user or resource.
type AuditLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	Action    string    `json:"action" gorm:"not null;size:100"`
	AdminID   *string   `json:"admin_id" gorm:"size:191"`
	UserID    string    `json:"user_id" gorm:"not null;size:191"`
	Details   JSONMap   `json:"details" gorm:"type:json"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStatistics is the attendance history summary shown on profiles.
type UserStatistics struct {
	TotalSignups          int64 `json:"total_signups"`
	Attended              int64 `json:"attended"`
	NoShow                int64 `json:"no_show"`
	ReliabilityPercentage int   `json:"reliability_percentage"`
}

// PublicProfile is the trimmed user view exposed to other participants.
type PublicProfile struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Nickname    string  `json:"nickname"`
	AvatarURL   *string `json:"avatar_url"`
	Reliability int     `json:"reliability"`
}
