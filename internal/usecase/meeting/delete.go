package meeting

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type DeleteMeeting struct {
	repo  domain.Repository
	store FileStore
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewDeleteMeeting(
	repo domain.Repository,
	store FileStore,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *DeleteMeeting {
	return &DeleteMeeting{
		repo:  repo,
		store: store,
		audit: audit,
		log:   log,
	}
}

func (uc *DeleteMeeting) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
) error {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	if err := domain.Authorize(actor, domain.DeleteMeeting, domain.Target{Meeting: m}); err != nil {
		return err
	}

	keys := storageKeys(m.Attachments)
	for i := range m.ActionItems {
		keys = append(keys, storageKeys(m.ActionItems[i].Attachments)...)
	}

	if err := uc.repo.DeleteMeeting(ctx, m.ID); err != nil {
		return err
	}

	removeFiles(ctx, uc.store, uc.log, keys)

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "meeting_deleted",
		Entity:   "meeting",
		EntityID: &m.ID,
		Metadata: map[string]any{"title": m.Title},
	})

	return nil
}

func storageKeys(atts []models.Attachment) []string {
	keys := make([]string, 0, len(atts))
	for _, a := range atts {
		keys = append(keys, a.StorageKey)
	}
	return keys
}
