package models

import (
	"time"

	"github.com/google/uuid"
)

type ActionItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MeetingID    uuid.UUID `gorm:"type:uuid;not null;index" json:"meeting_id"`
	AssignedToID uuid.UUID `gorm:"type:uuid;not null;index" json:"assigned_to_id"`

	Description string    `gorm:"type:text;not null" json:"description"`
	Type        string    `gorm:"size:20" json:"type"`
	Deadline    time.Time `json:"deadline"`

	Status   string `gorm:"size:20;default:'Pending'" json:"status"`
	Judgment string `gorm:"size:20;default:'Unjudged'" json:"judgment"`

	Attachments []Attachment `gorm:"foreignKey:ActionItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttachmentsOf returns the attachments of one side (assignment or submission).
func (a *ActionItem) AttachmentsOf(kind string) []Attachment {
	out := make([]Attachment, 0, len(a.Attachments))
	for _, att := range a.Attachments {
		if att.Kind == kind {
			out = append(out, att)
		}
	}
	return out
}
