package meeting

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/storage"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type FileDownload struct {
	Attachment models.Attachment
	Object     *storage.Object
}

type OpenFile struct {
	repo  domain.Repository
	store FileStore
}

func NewOpenFile(repo domain.Repository, store FileStore) *OpenFile {
	return &OpenFile{repo: repo, store: store}
}

// Meeting opens a meeting-level file for the organizer or an accepted invitee.
func (uc *OpenFile) Meeting(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	fileName string,
) (*FileDownload, error) {

	if err := domain.SafeFileName(fileName); err != nil {
		return nil, err
	}

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.ReadMeetingFile, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		if a.FileName == fileName {
			return uc.open(ctx, a)
		}
	}
	return nil, domain.ErrFileNotFound
}

// ActionItem opens an assignment or submission file for the organizer or
// the assignee.
func (uc *OpenFile) ActionItem(
	ctx context.Context,
	actor access.Actor,
	itemID uuid.UUID,
	kind string,
	fileName string,
) (*FileDownload, error) {

	if !domain.IsAttachmentKind(kind) {
		return nil, domain.ErrInvalidKind
	}
	if err := domain.SafeFileName(fileName); err != nil {
		return nil, err
	}

	ref, err := uc.repo.GetActionItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	m, item, err := loadItem(ctx, uc.repo, ref.MeetingID, itemID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.ReadActionItemFile, domain.Target{Meeting: m, ActionItem: item}); err != nil {
		return nil, err
	}

	for _, a := range item.AttachmentsOf(kind) {
		if a.FileName == fileName {
			return uc.open(ctx, a)
		}
	}
	return nil, domain.ErrFileNotFound
}

func (uc *OpenFile) open(ctx context.Context, a models.Attachment) (*FileDownload, error) {
	obj, err := uc.store.Open(ctx, a.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return &FileDownload{Attachment: a, Object: obj}, nil
}
