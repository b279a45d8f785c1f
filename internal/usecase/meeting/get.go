package meeting

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type GetMeeting struct {
	repo domain.Repository
}

func NewGetMeeting(repo domain.Repository) *GetMeeting {
	return &GetMeeting{repo: repo}
}

func (uc *GetMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
) (*models.Meeting, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.ViewMeeting, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	return m, nil
}

type ListMeetings struct {
	repo domain.Repository
}

func NewListMeetings(repo domain.Repository) *ListMeetings {
	return &ListMeetings{repo: repo}
}

// Execute lists every meeting for admins and otherwise only the meetings the
// actor organizes or has accepted.
func (uc *ListMeetings) Execute(
	ctx context.Context,
	actor access.Actor,
	f domain.ListFilter,
) ([]models.Meeting, error) {

	if !actor.IsAdmin() {
		id := actor.UserID
		f.VisibleTo = &id
	}

	if f.Status != "" {
		if _, err := domain.ParseStatus(f.Status); err != nil {
			return nil, err
		}
	}

	return uc.repo.ListMeetings(ctx, f)
}
