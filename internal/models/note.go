package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MeetingID   uuid.UUID `gorm:"type:uuid;not null;index" json:"meeting_id"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`

	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
