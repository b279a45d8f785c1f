package models

import (
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	RoomID *uuid.UUID `gorm:"type:uuid;index" json:"room_id"`
	Room   *Room      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"room,omitempty"`

	OrganizerID *uuid.UUID `gorm:"type:uuid;index" json:"organizer_id"`
	Organizer   *User      `gorm:"foreignKey:OrganizerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	RecurringBookingID *uuid.UUID        `gorm:"type:uuid;index" json:"recurring_booking_id"`
	RecurringBooking   *RecurringBooking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Title      string `gorm:"size:200;not null" json:"title"`
	Agenda     string `gorm:"type:text" json:"agenda"`
	OnlineLink string `gorm:"size:500" json:"online_link"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status string `gorm:"size:20;default:'Scheduled';index" json:"status"`

	Invitees    []Invitee    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"invitees"`
	Notes       []Note       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"notes"`
	ActionItems []ActionItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"action_items"`
	Attachments []Attachment `gorm:"foreignKey:MeetingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RecurringBooking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User   *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	RecurrencePattern string    `gorm:"size:50;not null" json:"recurrence_pattern"`
	RecurrenceEndDate time.Time `gorm:"not null" json:"recurrence_end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
