package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Subject string    `gorm:"size:100;not null" json:"subject"`
	Body    string    `gorm:"type:text" json:"body"`
	Date    time.Time `gorm:"index" json:"date"`
	IsRead  bool      `gorm:"default:false" json:"is_read"`
}
