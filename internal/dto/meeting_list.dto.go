package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

// MeetingListDTO is the flat row used by the /users/me projections.
type MeetingListDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	OnlineLink  string     `json:"online_link"`
	OrganizerID *uuid.UUID `json:"organizer_id"`
	RoomID      *uuid.UUID `json:"room_id"`
	RoomName    string     `json:"room_name"`
}

func MeetingList(m models.Meeting) MeetingListDTO {
	out := MeetingListDTO{
		ID:          m.ID,
		Title:       m.Title,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Status:      m.Status,
		OnlineLink:  m.OnlineLink,
		OrganizerID: m.OrganizerID,
		RoomID:      m.RoomID,
	}
	if m.Room != nil {
		out.RoomName = m.Room.Name
	}
	return out
}

func MeetingLists(list []models.Meeting) []MeetingListDTO {
	out := make([]MeetingListDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MeetingList(m))
	}
	return out
}

// InviteDTO is an invitation seen from the invited user.
type InviteDTO struct {
	ID           uuid.UUID `json:"id"`
	MeetingID    uuid.UUID `json:"meeting_id"`
	MeetingTitle string    `json:"meeting_title"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	Attendance   string    `json:"attendance"`
}

type DayCountDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type RoomUsageDTO struct {
	RoomID       uuid.UUID `json:"room_id"`
	RoomName     string    `json:"room_name"`
	MeetingCount int64     `json:"meetings"`
}
