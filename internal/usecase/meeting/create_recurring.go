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
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/recurrence"
	"github.com/BruksfildServices01/meeting-rooms/internal/metrics"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type CreateRecurringInput struct {
	CreateMeetingInput
	Pattern           string
	RecurrenceEndDate time.Time
}

type RecurringResult struct {
	RecurringBookingID uuid.UUID        `json:"recurring_booking_id"`
	Title              string           `json:"title"`
	TotalMeetings      int              `json:"total_meetings"`
	Skipped            int              `json:"skipped"`
	Pattern            string           `json:"pattern"`
	RecurrenceEndDate  time.Time        `json:"recurrence_end_date"`
	Meetings           []models.Meeting `json:"meetings"`
}

type CreateRecurringMeeting struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewCreateRecurringMeeting(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateRecurringMeeting {
	return &CreateRecurringMeeting{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *CreateRecurringMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	in CreateRecurringInput,
) (*RecurringResult, error) {

	// --------------------------------------------------
	// 1. Input, rejected before any expansion
	// --------------------------------------------------
	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}

	if err := (domain.Window{Start: in.StartTime, End: in.EndTime}).Validate(); err != nil {
		return nil, err
	}

	pattern, err := recurrence.ParsePattern(in.Pattern)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Expand and insert the batch in one transaction
	// --------------------------------------------------
	now := uc.now()
	ownerID := actor.UserID

	rb := &models.RecurringBooking{
		ID:                uuid.New(),
		UserID:            &ownerID,
		RecurrencePattern: string(pattern),
		RecurrenceEndDate: in.RecurrenceEndDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var (
		created []models.Meeting
		skipped int
	)

	err = uc.repo.WithRoomLock(ctx, in.RoomID, func(tx domain.Repository) error {
		first := recurrence.Occurrence{Start: in.StartTime, End: in.EndTime}

		plan, err := recurrence.Expand(first, pattern, in.RecurrenceEndDate, func(o recurrence.Occurrence) (bool, error) {
			return domain.IsBooked(ctx, tx, in.RoomID, uuid.Nil, domain.Window{Start: o.Start, End: o.End})
		})
		if err != nil {
			return err
		}

		skipped = len(plan.Skipped)
		if len(plan.Occurrences) == 0 {
			return domain.ErrNoFreeOccurrence
		}

		created = make([]models.Meeting, 0, len(plan.Occurrences))
		for _, o := range plan.Occurrences {
			created = append(created, models.Meeting{
				ID:                 uuid.New(),
				RoomID:             in.RoomID,
				OrganizerID:        &ownerID,
				RecurringBookingID: &rb.ID,
				Title:              title,
				Agenda:             in.Agenda,
				OnlineLink:         strings.TrimSpace(in.OnlineLink),
				StartTime:          o.Start,
				EndTime:            o.End,
				Status:             string(domain.InitialStatus()),
				CreatedAt:          now,
				UpdatedAt:          now,
			})
		}

		return tx.CreateRecurring(ctx, rb, created)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoFreeOccurrence) || errors.Is(err, domain.ErrRoomBooked) {
			metrics.BookingConflicts.WithLabelValues("recurring").Inc()
		}
		return nil, err
	}

	metrics.RecurringOccurrences.WithLabelValues("created").Add(float64(len(created)))
	metrics.RecurringOccurrences.WithLabelValues("skipped").Add(float64(skipped))

	// --------------------------------------------------
	// 3. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		UserID:   &ownerID,
		Action:   "recurring_meeting_created",
		Entity:   "recurring_booking",
		EntityID: &rb.ID,
		Metadata: map[string]any{
			"pattern": rb.RecurrencePattern,
			"created": len(created),
			"skipped": skipped,
		},
	})

	return &RecurringResult{
		RecurringBookingID: rb.ID,
		Title:              title,
		TotalMeetings:      len(created),
		Skipped:            skipped,
		Pattern:            rb.RecurrencePattern,
		RecurrenceEndDate:  rb.RecurrenceEndDate,
		Meetings:           created,
	}, nil
}
