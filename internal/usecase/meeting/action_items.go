package meeting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type ActionItemInput struct {
	Description  string
	Type         string
	Deadline     time.Time
	AssignedToID uuid.UUID
}

func (in ActionItemInput) validate(m *models.Meeting) (ActionItemInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || in.Deadline.IsZero() {
		return in, domain.ErrInvalidActionItem
	}

	t, err := domain.ParseItemType(in.Type)
	if err != nil {
		return in, err
	}
	in.Type = string(t)

	if err := domain.CanAssign(m, in.AssignedToID); err != nil {
		return in, err
	}
	return in, nil
}

type AddActionItem struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewAddActionItem(repo domain.Repository, audit *audit.Dispatcher) *AddActionItem {
	return &AddActionItem{repo: repo, audit: audit, now: time.Now}
}

func (uc *AddActionItem) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	in ActionItemInput,
) (*models.ActionItem, error) {

	m, err := uc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.AddActionItem, domain.Target{Meeting: m}); err != nil {
		return nil, err
	}

	in, err = in.validate(m)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	item := &models.ActionItem{
		ID:           uuid.New(),
		MeetingID:    m.ID,
		AssignedToID: in.AssignedToID,
		Description:  in.Description,
		Type:         in.Type,
		Deadline:     in.Deadline,
		Status:       string(domain.ItemPending),
		Judgment:     string(domain.JudgmentUnjudged),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.CreateActionItem(ctx, item); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "action_item_added",
		Entity:   "action_item",
		EntityID: &item.ID,
	})

	return item, nil
}

type UpdateActionItem struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewUpdateActionItem(repo domain.Repository, audit *audit.Dispatcher) *UpdateActionItem {
	return &UpdateActionItem{repo: repo, audit: audit, now: time.Now}
}

func (uc *UpdateActionItem) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	itemID uuid.UUID,
	in ActionItemInput,
) (*models.ActionItem, error) {

	m, item, err := loadItem(ctx, uc.repo, meetingID, itemID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.UpdateActionItem, domain.Target{Meeting: m, ActionItem: item}); err != nil {
		return nil, err
	}

	in, err = in.validate(m)
	if err != nil {
		return nil, err
	}

	item.Description = in.Description
	item.Type = in.Type
	item.Deadline = in.Deadline
	item.AssignedToID = in.AssignedToID
	item.UpdatedAt = uc.now()

	if err := uc.repo.UpdateActionItem(ctx, item); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "action_item_updated",
		Entity:   "action_item",
		EntityID: &item.ID,
	})

	return item, nil
}

type ToggleActionItemStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewToggleActionItemStatus(repo domain.Repository, audit *audit.Dispatcher) *ToggleActionItemStatus {
	return &ToggleActionItemStatus{repo: repo, audit: audit, now: time.Now}
}

func (uc *ToggleActionItemStatus) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	itemID uuid.UUID,
) (*models.ActionItem, error) {

	m, item, err := loadItem(ctx, uc.repo, meetingID, itemID)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.ToggleActionItem, domain.Target{Meeting: m, ActionItem: item}); err != nil {
		return nil, err
	}

	domain.ToggleStatus(item, uc.now())

	if err := uc.repo.UpdateActionItem(ctx, item); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "action_item_status_toggled",
		Entity:   "action_item",
		EntityID: &item.ID,
		Metadata: map[string]any{"status": item.Status},
	})

	return item, nil
}

type JudgeActionItem struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   clock
}

func NewJudgeActionItem(repo domain.Repository, audit *audit.Dispatcher) *JudgeActionItem {
	return &JudgeActionItem{repo: repo, audit: audit, now: time.Now}
}

// Execute forces the verdict. The Submitted precondition is checked before
// the caller, so a Pending item is InvalidInput for everyone.
func (uc *JudgeActionItem) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	itemID uuid.UUID,
	verdict domain.Judgment,
) (*models.ActionItem, error) {

	m, item, err := loadItem(ctx, uc.repo, meetingID, itemID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanJudge(item); err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.JudgeActionItem, domain.Target{Meeting: m, ActionItem: item}); err != nil {
		return nil, err
	}

	if err := domain.Judge(item, verdict, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateActionItem(ctx, item); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "action_item_judged",
		Entity:   "action_item",
		EntityID: &item.ID,
		Metadata: map[string]any{"judgment": item.Judgment},
	})

	return item, nil
}

type DeleteActionItem struct {
	repo  domain.Repository
	store FileStore
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewDeleteActionItem(
	repo domain.Repository,
	store FileStore,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *DeleteActionItem {
	return &DeleteActionItem{repo: repo, store: store, audit: audit, log: log}
}

func (uc *DeleteActionItem) Execute(
	ctx context.Context,
	actor access.Actor,
	meetingID uuid.UUID,
	itemID uuid.UUID,
) error {

	m, item, err := loadItem(ctx, uc.repo, meetingID, itemID)
	if err != nil {
		return err
	}

	if err := domain.Authorize(actor, domain.DeleteActionItem, domain.Target{Meeting: m, ActionItem: item}); err != nil {
		return err
	}

	if err := uc.repo.DeleteActionItem(ctx, item.ID); err != nil {
		return err
	}

	removeFiles(ctx, uc.store, uc.log, storageKeys(item.Attachments))

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "action_item_deleted",
		Entity:   "action_item",
		EntityID: &item.ID,
	})

	return nil
}

func loadItem(
	ctx context.Context,
	repo domain.Repository,
	meetingID uuid.UUID,
	itemID uuid.UUID,
) (*models.Meeting, *models.ActionItem, error) {

	m, err := repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}

	item := domain.FindActionItem(m, itemID)
	if item == nil {
		return nil, nil, domain.ErrActionItemNotFound
	}
	return m, item, nil
}
