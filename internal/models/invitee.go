package models

import (
	"time"

	"github.com/google/uuid"
)

type Invitee struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MeetingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invitee_meeting_user" json:"meeting_id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invitee_meeting_user;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Email      string `gorm:"size:256" json:"email"`
	Status     string `gorm:"size:20;default:'Pending'" json:"status"`
	Attendance string `gorm:"size:20;default:'Declined'" json:"attendance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
