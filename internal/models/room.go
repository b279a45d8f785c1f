package models

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name     string `gorm:"size:100;not null" json:"name"`
	Capacity int    `gorm:"not null" json:"capacity"`
	Location string `gorm:"size:200" json:"location"`

	ImageKey string `gorm:"size:300" json:"-"`
	ImageURL string `gorm:"size:300" json:"image_url"`

	Features []Feature `gorm:"many2many:room_features;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"features"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Feature struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:50;uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomFeature is the join row of the rooms/features many-to-many.
type RoomFeature struct {
	RoomID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FeatureID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (RoomFeature) TableName() string {
	return "room_features"
}
