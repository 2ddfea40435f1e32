package models

import (
	"time"
)

type Sport struct {
	ID          string    `json:"id" gorm:"primaryKey;size:191"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null;size:50"`
	IconName    *string   `json:"icon_name" gorm:"size:50"`
	Description *string   `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`
}
