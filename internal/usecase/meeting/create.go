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

// ======================================================
// INPUT
// ======================================================

type CreateMeetingInput struct {
	Title      string
	Agenda     string
	OnlineLink string
	RoomID     *uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
}

// ======================================================
// USE CASE
// ======================================================

type CreateMeeting struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewCreateMeeting(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateMeeting {
	return &CreateMeeting{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	in CreateMeetingInput,
) (*models.Meeting, error) {

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}

	window := domain.Window{Start: in.StartTime, End: in.EndTime}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Conflict check and insert under the room lock
	// --------------------------------------------------
	now := uc.now()
	organizerID := actor.UserID

	m := &models.Meeting{
		ID:          uuid.New(),
		RoomID:      in.RoomID,
		OrganizerID: &organizerID,
		Title:       title,
		Agenda:      in.Agenda,
		OnlineLink:  strings.TrimSpace(in.OnlineLink),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      string(domain.InitialStatus()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.repo.WithRoomLock(ctx, in.RoomID, func(tx domain.Repository) error {
		booked, err := domain.IsBooked(ctx, tx, in.RoomID, m.ID, window)
		if err != nil {
			return err
		}
		if booked {
			return domain.ErrRoomBooked
		}
		return tx.CreateMeeting(ctx, m)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomBooked) {
			metrics.BookingConflicts.WithLabelValues("create").Inc()
		}
		return nil, err
	}

	// --------------------------------------------------
	// 3. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		UserID:   &organizerID,
		Action:   "meeting_created",
		Entity:   "meeting",
		EntityID: &m.ID,
	})

	return m, nil
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > 200 {
		return "", domain.ErrInvalidTitle
	}
	return title, nil
}
