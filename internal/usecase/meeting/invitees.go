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

type AddInvitee struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewAddInvitee(repo domain.Repository, audit *audit.Dispatcher) *AddInvitee {
	return &AddInvitee{repo: repo, audit: audit, now: time.Now}
}

func (uc *AddInvitee) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	userID uuid.UUID,
) (*models.Invitee, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1. Organizer only
	// --------------------------------------------------
	if err := domain.Authorize(actor, domain.AddInvitee, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Invited user
	// --------------------------------------------------
	user, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if domain.IsOrganizer(m, user.ID) {
		return nil, domain.ErrInviteOrganizer
	}
	if domain.InviteeForUser(m, user.ID) != nil {
		return nil, domain.ErrAlreadyInvited
	}

	// --------------------------------------------------
	// 3. Capacity (accepted invitees only)
	// --------------------------------------------------
	if !domain.HasRoomFor(m) {
		return nil, domain.ErrRoomFull
	}

	now := uc.now()
	inv := &models.Invitee{
		ID:         uuid.New(),
		MeetingID:  m.ID,
		UserID:     user.ID,
		Email:      user.Email,
		Status:     string(domain.InvitePending),
		Attendance: string(domain.AttendanceDeclined),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.repo.CreateInvitee(ctx, inv); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "invitee_added",
		Entity:   "invitee",
		EntityID: &inv.ID,
		Metadata: map[string]any{"meeting_id": m.ID, "user_id": user.ID},
	})

	return inv, nil
}

type RespondToInvite struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewRespondToInvite(repo domain.Repository, audit *audit.Dispatcher) *RespondToInvite {
	return &RespondToInvite{repo: repo, audit: audit, now: time.Now}
}

// Execute records the invited user's accept or decline. Accepting runs under
// the room lock so concurrent accepts cannot overfill the room.
func (uc *RespondToInvite) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	inviteID uuid.UUID,
	accept bool,
) (*models.Invitee, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	var answered *models.Invitee

	err = uc.repo.WithRoomLock(ctx, m.RoomID, func(tx domain.Repository) error {
		m, err := tx.GetMeeting(ctx, meetingID)
		if err != nil {
			return err
		}

		inv := domain.FindInvitee(m, inviteID)
		if inv == nil {
			return domain.ErrInviteNotFound
		}

		if err := domain.Authorize(actor, domain.RespondInvite, domain.Target{Meeting: m, Invitee: inv}); err != nil {
			return err
		}

		if err := domain.Respond(m, inv, accept, uc.now()); err != nil {
			return err
		}

		if err := tx.UpdateInvitee(ctx, inv); err != nil {
			return err
		}
		answered = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "invite_declined"
	if accept {
		action = "invite_accepted"
	}
	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   action,
		Entity:   "invitee",
		EntityID: &answered.ID,
	})

	return answered, nil
}

type DeleteInvitee struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteInvitee(repo domain.Repository, audit *audit.Dispatcher) *DeleteInvitee {
	return &DeleteInvitee{repo: repo, audit: audit}
}

func (uc *DeleteInvitee) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	inviteID uuid.UUID,
) error {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	inv := domain.FindInvitee(m, inviteID)
	if inv == nil {
		return domain.ErrInviteNotFound
	}

	if err := domain.Authorize(actor, domain.DeleteInvitee, domain.Target{Meeting: m, Invitee: inv}); err != nil {
		return err
	}

	if err := uc.repo.DeleteInvitee(ctx, inv.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "invitee_removed",
		Entity:   "invitee",
		EntityID: &inv.ID,
	})

	return nil
}
