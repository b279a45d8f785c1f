package meeting

import (
	"context"
	"errors"
	"mime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/lock"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

// ======================================================
// MEETING-LEVEL (append)
// ======================================================

type UploadMeetingAttachments struct {
	repo  domain.Repository
	store FileStore
	audit *audit.Dispatcher
	log   *zap.Logger
	now   clock
}

func NewUploadMeetingAttachments(
	repo domain.Repository,
	store FileStore,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *UploadMeetingAttachments {
	return &UploadMeetingAttachments{
		repo:  repo,
		store: store,
		audit: audit,
		log:   log,
		now:   time.Now,
	}
}

func (uc *UploadMeetingAttachments) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	files []domain.UploadFile,
) ([]models.Attachment, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.AddMeetingAttachment, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	if err := domain.ValidateUploadBatch(files); err != nil {
		return nil, err
	}

	atts, err := putFiles(ctx, uc.store, uc.log, files, func(a *models.Attachment) string {
		a.MeetingID = &m.ID
		a.Kind = models.AttachmentMeeting
		return domain.MeetingFileKey(m.ID, a.FileName)
	}, actor.UserID, uc.now())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.CreateAttachments(ctx, atts); err != nil {
		removeFiles(ctx, uc.store, uc.log, storageKeys(atts))
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "meeting_attachments_added",
		Entity:   "meeting",
		EntityID: &m.ID,
		Metadata: map[string]any{"count": len(atts)},
	})

	return atts, nil
}

type DeleteMeetingAttachment struct {
	repo  domain.Repository
	store FileStore
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewDeleteMeetingAttachment(
	repo domain.Repository,
	store FileStore,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *DeleteMeetingAttachment {
	return &DeleteMeetingAttachment{repo: repo, store: store, audit: audit, log: log}
}

func (uc *DeleteMeetingAttachment) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	attachmentID uuid.UUID,
) error {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	att := domain.FindAttachment(m, attachmentID)
	if att == nil {
		return domain.ErrAttachmentNotFound
	}

	if err := domain.Authorize(actor, domain.DeleteMeetingAttachment, domain.Target{Meeting: m, Attachment: att}); err != nil {
		return err
	}

	if err := uc.repo.DeleteAttachment(ctx, att.ID); err != nil {
		return err
	}

	removeFiles(ctx, uc.store, uc.log, []string{att.StorageKey})

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "meeting_attachment_deleted",
		Entity:   "attachment",
		EntityID: &att.ID,
	})

	return nil
}

// ======================================================
// ACTION-ITEM SIDES (replace)
// ======================================================

type ReplaceActionItemAttachments struct {
	repo   domain.Repository
	store  FileStore
	locker Locker
	audit  *audit.Dispatcher
	log    *zap.Logger
	now    clock
}

func NewReplaceActionItemAttachments(
	repo domain.Repository,
	store FileStore,
	locker Locker,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *ReplaceActionItemAttachments {
	return &ReplaceActionItemAttachments{
		repo:   repo,
		store:  store,
		locker: locker,
		audit:  audit,
		log:    log,
		now:    time.Now,
	}
}

func (uc *ReplaceActionItemAttachments) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	itemID uuid.UUID,
	kind string,
	files []domain.UploadFile,
) ([]models.Attachment, error) {

	if !domain.IsAttachmentKind(kind) {
		return nil, domain.ErrInvalidKind
	}

	// --------------------------------------------------
	// 1. Authorization
	// --------------------------------------------------
	m, item, err := loadItem(ctx, uc.repo, meetingID, itemID)
	if err != nil {
		return nil, err
	}

	capability := domain.AddAssignmentAttachment
	if kind == models.AttachmentSubmission {
		capability = domain.AddSubmissionAttachment
	}
	if err := domain.Authorize(actor, capability, domain.Target{Meeting: m, ActionItem: item}); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Whole batch is validated before anything is written
	// --------------------------------------------------
	if err := domain.ValidateUploadBatch(files); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. One replacement per item side at a time
	// --------------------------------------------------
	release, err := uc.locker.Lock(ctx, "action-item:"+item.ID.String()+":"+kind)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, domain.ErrAttachmentsBusy
		}
		return nil, err
	}
	defer release()

	// --------------------------------------------------
	// 4. Write new files, swap rows, then drop old files
	// --------------------------------------------------
	atts, err := putFiles(ctx, uc.store, uc.log, files, func(a *models.Attachment) string {
		a.ActionItemID = &item.ID
		a.Kind = kind
		return domain.ActionItemFileKey(item.ID, kind, a.FileName)
	}, actor.UserID, uc.now())
	if err != nil {
		return nil, err
	}

	removed, err := uc.repo.ReplaceActionItemAttachments(ctx, item.ID, kind, atts)
	if err != nil {
		removeFiles(ctx, uc.store, uc.log, storageKeys(atts))
		return nil, err
	}

	removeFiles(ctx, uc.store, uc.log, storageKeys(removed))

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "action_item_attachments_replaced",
		Entity:   "action_item",
		EntityID: &item.ID,
		Metadata: map[string]any{"kind": kind, "count": len(atts), "removed": len(removed)},
	})

	return atts, nil
}

// putFiles stores every file and builds its row. On a failure the files
// already written are removed again.
func putFiles(
	ctx context.Context,
	store FileStore,
	log *zap.Logger,
	files []domain.UploadFile,
	place func(a *models.Attachment) string,
	uploader uuid.UUID,
	now time.Time,
) ([]models.Attachment, error) {

	atts := make([]models.Attachment, 0, len(files))

	for _, f := range files {
		id := uuid.New()
		a := models.Attachment{
			ID:           id,
			FileName:     domain.StoredName(id, f),
			OriginalName: f.Name,
			ContentType:  contentType(f),
			Size:         f.Size,
			UploadedByID: uploader,
			UploadedAt:   now,
		}
		a.StorageKey = place(&a)
		a.URL = domain.FileURL(a.StorageKey)

		if err := putOne(ctx, store, f, a); err != nil {
			removeFiles(ctx, store, log, storageKeys(atts))
			return nil, err
		}
		atts = append(atts, a)
	}

	return atts, nil
}

func putOne(ctx context.Context, store FileStore, f domain.UploadFile, a models.Attachment) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	return store.Put(ctx, a.StorageKey, r, f.Size, a.ContentType)
}

func contentType(f domain.UploadFile) string {
	if ct := mime.TypeByExtension(f.Ext()); ct != "" {
		return ct
	}
	if f.ContentType != "" {
		return f.ContentType
	}
	return "application/octet-stream"
}
