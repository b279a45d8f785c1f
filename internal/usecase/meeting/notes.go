package meeting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type AddNote struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewAddNote(repo domain.Repository, audit *audit.Dispatcher) *AddNote {
	return &AddNote{repo: repo, audit: audit, now: time.Now}
}

func (uc *AddNote) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	content string,
) (*models.Note, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.AddNote, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyNote
	}

	now := uc.now()
	n := &models.Note{
		ID:          uuid.New(),
		MeetingID:   m.ID,
		CreatedByID: actor.UserID,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.CreateNote(ctx, n); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "note_added",
		Entity:   "note",
		EntityID: &n.ID,
	})

	return n, nil
}

type UpdateNote struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewUpdateNote(repo domain.Repository, audit *audit.Dispatcher) *UpdateNote {
	return &UpdateNote{repo: repo, audit: audit, now: time.Now}
}

func (uc *UpdateNote) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	noteID uuid.UUID,
	content string,
) (*models.Note, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	n := domain.FindNote(m, noteID)
	if n == nil {
		return nil, domain.ErrNoteNotFound
	}

	if err := domain.Authorize(actor, domain.EditNote, domain.Target{Meeting: m, Note: n}); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyNote
	}

	n.Content = content
	n.UpdatedAt = uc.now()

	if err := uc.repo.UpdateNote(ctx, n); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "note_updated",
		Entity:   "note",
		EntityID: &n.ID,
	})

	return n, nil
}

type DeleteNote struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteNote(repo domain.Repository, audit *audit.Dispatcher) *DeleteNote {
	return &DeleteNote{repo: repo, audit: audit}
}

func (uc *DeleteNote) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	noteID uuid.UUID,
) error {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	n := domain.FindNote(m, noteID)
	if n == nil {
		return domain.ErrNoteNotFound
	}

	if err := domain.Authorize(actor, domain.EditNote, domain.Target{Meeting: m, Note: n}); err != nil {
		return err
	}

	if err := uc.repo.DeleteNote(ctx, n.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "note_deleted",
		Entity:   "note",
		EntityID: &n.ID,
	})

	return nil
}
