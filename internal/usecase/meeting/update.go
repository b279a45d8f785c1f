package meeting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/metrics"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type UpdateMeetingInput struct {
	MeetingID uuid.UUID
	CreateMeetingInput
	// Status keeps the current value when empty.
	Status string
}

type UpdateMeeting struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewUpdateMeeting(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateMeeting {
	return &UpdateMeeting{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *UpdateMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	in UpdateMeetingInput,
) (*models.Meeting, error) {

	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}

	window := domain.Window{Start: in.StartTime, End: in.EndTime}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	var status domain.Status
	if in.Status != "" {
		if status, err = domain.ParseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	var updated *models.Meeting

	err = uc.repo.WithRoomLock(ctx, in.RoomID, func(tx domain.Repository) error {
		m, err := tx.GetMeeting(ctx, in.MeetingID)
		if err != nil {
			return err
		}

		if err := domain.Authorize(actor, domain.UpdateMeeting, domain.Target{Meeting: m}); err != nil {
			return err
		}

		if status == "" {
			status = domain.Status(m.Status)
		}

		if in.RoomID != nil && status != domain.StatusCancelled {
			room, err := tx.GetRoom(ctx, *in.RoomID)
			if err != nil {
				return err
			}
			if domain.AcceptedCount(m) > room.Capacity {
				return domain.ErrRoomTooSmall
			}
		}

		if status != domain.StatusCancelled {
			booked, err := domain.IsBooked(ctx, tx, in.RoomID, m.ID, window)
			if err != nil {
				return err
			}
			if booked {
				return domain.ErrRoomBooked
			}
		}

		m.Title = title
		m.Agenda = in.Agenda
		m.OnlineLink = strings.TrimSpace(in.OnlineLink)
		m.RoomID = in.RoomID
		m.Room = nil
		m.StartTime = in.StartTime
		m.EndTime = in.EndTime
		m.Status = string(status)
		m.UpdatedAt = uc.now()

		if err := tx.UpdateMeeting(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomBooked) {
			metrics.BookingConflicts.WithLabelValues("update").Inc()
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "meeting_updated",
		Entity:   "meeting",
		EntityID: &updated.ID,
	})

	return updated, nil
}
