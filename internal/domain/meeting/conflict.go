package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// BookingReader returns the non-cancelled meetings of a room that overlap
// [start, end).
type BookingReader interface {
	ListRoomBookings(
		ctx context.Context,
		roomID uuid.UUID,
		start time.Time,
		end time.Time,
	) ([]models.Meeting, error)
}

// Conflicts is the booking predicate over an already loaded set of meetings.
func Conflicts(existing []models.Meeting, roomID *uuid.UUID, exclude uuid.UUID, w Window) bool {
	if roomID == nil {
		return false
	}

	for i := range existing {
		m := &existing[i]
		if m.RoomID == nil || *m.RoomID != *roomID {
			continue
		}
		if m.ID == exclude || Status(m.Status) == StatusCancelled {
			continue
		}
		if w.Overlaps(Window{Start: m.StartTime, End: m.EndTime}) {
			return true
		}
	}
	return false
}

// IsBooked reports whether roomID already has a live meeting overlapping w,
// ignoring the meeting exclude. A nil room never conflicts.
func IsBooked(
	ctx context.Context,
	r BookingReader,
	roomID *uuid.UUID,
	exclude uuid.UUID,
	w Window,
) (bool, error) {

	if roomID == nil {
		return false, nil
	}

	existing, err := r.ListRoomBookings(ctx, *roomID, w.Start, w.End)
	if err != nil {
		return false, err
	}

	return Conflicts(existing, roomID, exclude, w), nil
}
