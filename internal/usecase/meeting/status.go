package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type CancelMeeting struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewCancelMeeting(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelMeeting {
	return &CancelMeeting{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *CancelMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
) (*models.Meeting, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.UpdateMeeting, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	if err := domain.Cancel(m, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateMeeting(ctx, m); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "meeting_cancelled",
		Entity:   "meeting",
		EntityID: &m.ID,
	})

	return m, nil
}

type CompleteMeeting struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewCompleteMeeting(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteMeeting {
	return &CompleteMeeting{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *CompleteMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
) (*models.Meeting, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.UpdateMeeting, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	if err := domain.Complete(m, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateMeeting(ctx, m); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "meeting_completed",
		Entity:   "meeting",
		EntityID: &m.ID,
	})

	return m, nil
}
