package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttachmentMeeting    = "meeting"
	AttachmentAssignment = "assignment"
	AttachmentSubmission = "submission"
)

// Attachment is one stored file. Meeting-level rows set MeetingID,
// action-item rows set ActionItemID and a side in Kind.
type Attachment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MeetingID    *uuid.UUID `gorm:"type:uuid;index" json:"meeting_id,omitempty"`
	ActionItemID *uuid.UUID `gorm:"type:uuid;index" json:"action_item_id,omitempty"`
	Kind         string     `gorm:"size:20;not null" json:"kind"`

	StorageKey   string `gorm:"size:500;not null" json:"-"`
	FileName     string `gorm:"size:255;not null" json:"file_name"`
	OriginalName string `gorm:"size:255" json:"original_name"`
	ContentType  string `gorm:"size:100" json:"content_type"`
	Size         int64  `json:"size"`
	URL          string `gorm:"size:500" json:"url"`

	UploadedByID uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
