package handlers

import (
	"io"
	"mime/multipart"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/recurrence"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	ucmeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

// ======================================================
// HANDLER
// ======================================================

// MeetingUseCases groups every use case behind the /meetings routes.
type MeetingUseCases struct {
	Create          *ucmeeting.CreateMeeting
	CreateRecurring *ucmeeting.CreateRecurringMeeting
	Update          *ucmeeting.UpdateMeeting
	Delete          *ucmeeting.DeleteMeeting
	Cancel          *ucmeeting.CancelMeeting
	Complete        *ucmeeting.CompleteMeeting
	Get             *ucmeeting.GetMeeting
	List            *ucmeeting.ListMeetings

	AddNote    *ucmeeting.AddNote
	UpdateNote *ucmeeting.UpdateNote
	DeleteNote *ucmeeting.DeleteNote

	AddInvitee    *ucmeeting.AddInvitee
	RespondInvite *ucmeeting.RespondToInvite
	DeleteInvitee *ucmeeting.DeleteInvitee

	AddActionItem    *ucmeeting.AddActionItem
	UpdateActionItem *ucmeeting.UpdateActionItem
	ToggleActionItem *ucmeeting.ToggleActionItemStatus
	JudgeActionItem  *ucmeeting.JudgeActionItem
	DeleteActionItem *ucmeeting.DeleteActionItem

	UploadAttachments      *ucmeeting.UploadMeetingAttachments
	DeleteAttachment       *ucmeeting.DeleteMeetingAttachment
	ReplaceItemAttachments *ucmeeting.ReplaceActionItemAttachments
	OpenFile               *ucmeeting.OpenFile
}

// NewMeetingUseCases wires every use case to the same collaborators.
func NewMeetingUseCases(
	repo domain.Repository,
	store ucmeeting.FileStore,
	locker ucmeeting.Locker,
	dispatcher *audit.Dispatcher,
	log *zap.Logger,
) MeetingUseCases {
	return MeetingUseCases{
		Create:          ucmeeting.NewCreateMeeting(repo, dispatcher),
		CreateRecurring: ucmeeting.NewCreateRecurringMeeting(repo, dispatcher),
		Update:          ucmeeting.NewUpdateMeeting(repo, dispatcher),
		Delete:          ucmeeting.NewDeleteMeeting(repo, store, dispatcher, log),
		Cancel:          ucmeeting.NewCancelMeeting(repo, dispatcher),
		Complete:        ucmeeting.NewCompleteMeeting(repo, dispatcher),
		Get:             ucmeeting.NewGetMeeting(repo),
		List:            ucmeeting.NewListMeetings(repo),

		AddNote:    ucmeeting.NewAddNote(repo, dispatcher),
		UpdateNote: ucmeeting.NewUpdateNote(repo, dispatcher),
		DeleteNote: ucmeeting.NewDeleteNote(repo, dispatcher),

		AddInvitee:    ucmeeting.NewAddInvitee(repo, dispatcher),
		RespondInvite: ucmeeting.NewRespondToInvite(repo, dispatcher),
		DeleteInvitee: ucmeeting.NewDeleteInvitee(repo, dispatcher),

		AddActionItem:    ucmeeting.NewAddActionItem(repo, dispatcher),
		UpdateActionItem: ucmeeting.NewUpdateActionItem(repo, dispatcher),
		ToggleActionItem: ucmeeting.NewToggleActionItemStatus(repo, dispatcher),
		JudgeActionItem:  ucmeeting.NewJudgeActionItem(repo, dispatcher),
		DeleteActionItem: ucmeeting.NewDeleteActionItem(repo, store, dispatcher, log),

		UploadAttachments:      ucmeeting.NewUploadMeetingAttachments(repo, store, dispatcher, log),
		DeleteAttachment:       ucmeeting.NewDeleteMeetingAttachment(repo, store, dispatcher, log),
		ReplaceItemAttachments: ucmeeting.NewReplaceActionItemAttachments(repo, store, locker, dispatcher, log),
		OpenFile:               ucmeeting.NewOpenFile(repo, store),
	}
}

type MeetingHandler struct {
	uc  MeetingUseCases
	loc *time.Location
	log *zap.Logger
}

// NewMeetingHandler reads date-only inputs as calendar days in loc.
func NewMeetingHandler(uc MeetingUseCases, loc *time.Location, log *zap.Logger) *MeetingHandler {
	return &MeetingHandler{uc: uc, loc: loc, log: log}
}

// ======================================================
// REQUESTS
// ======================================================

type MeetingRequest struct {
	Title      string     `json:"title" binding:"required"`
	Agenda     string     `json:"agenda"`
	OnlineLink string     `json:"online_link"`
	RoomID     *uuid.UUID `json:"room_id"`
	StartTime  time.Time  `json:"start_time" binding:"required"`
	EndTime    time.Time  `json:"end_time" binding:"required"`
	Status     string     `json:"status"`
}

func (r MeetingRequest) input() ucmeeting.CreateMeetingInput {
	return ucmeeting.CreateMeetingInput{
		Title:      r.Title,
		Agenda:     r.Agenda,
		OnlineLink: r.OnlineLink,
		RoomID:     r.RoomID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
	}
}

type RecurringMeetingRequest struct {
	MeetingRequest
	RecurrencePattern string `json:"recurrence_pattern" binding:"required"`
	RecurrenceEndDate string `json:"recurrence_end_date" binding:"required"`
}

type NoteRequest struct {
	Content string `json:"content" binding:"required"`
}

type InviteeRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

type ActionItemRequest struct {
	Description  string    `json:"description" binding:"required"`
	Type         string    `json:"type" binding:"required"`
	Deadline     time.Time `json:"deadline" binding:"required"`
	AssignedToID uuid.UUID `json:"assigned_to_id" binding:"required"`
}

func (r ActionItemRequest) input() ucmeeting.ActionItemInput {
	return ucmeeting.ActionItemInput{
		Description:  r.Description,
		Type:         r.Type,
		Deadline:     r.Deadline,
		AssignedToID: r.AssignedToID,
	}
}

// ======================================================
// MEETINGS
// ======================================================

func (h *MeetingHandler) Create(c *gin.Context) {
	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	m, err := h.uc.Create.Execute(c.Request.Context(), actorFrom(c), req.input())
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.Created(c, m)
}

func (h *MeetingHandler) CreateRecurring(c *gin.Context) {
	var req RecurringMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	until, err := recurrenceEnd(req.RecurrenceEndDate, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_recurrence_end_date", "RecurrenceEndDate must be a date.")
		return
	}

	res, err := h.uc.CreateRecurring.Execute(c.Request.Context(), actorFrom(c), ucmeeting.CreateRecurringInput{
		CreateMeetingInput: req.input(),
		Pattern:            req.RecurrencePattern,
		RecurrenceEndDate:  until,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.Created(c, res)
}

// recurrenceEnd takes an RFC 3339 instant as is. A bare date includes the
// whole day in loc.
func recurrenceEnd(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := parseDay(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return recurrence.EndOfDay(d), nil
}

func (h *MeetingHandler) List(c *gin.Context) {
	f := domain.ListFilter{Status: c.Query("status")}

	var ok bool
	if f.From, ok = optionalTime(c, "from"); !ok {
		return
	}
	if f.To, ok = optionalTime(c, "to"); !ok {
		return
	}
	if v := c.Query("roomId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httperr.BadRequest(c, "invalid_room_id", "Invalid roomId.")
			return
		}
		f.RoomID = &id
	}

	list, err := h.uc.List.Execute(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.List(c, list)
}

func (h *MeetingHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	m, err := h.uc.Get.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, m)
}

func (h *MeetingHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	m, err := h.uc.Update.Execute(c.Request.Context(), actorFrom(c), ucmeeting.UpdateMeetingInput{
		MeetingID:          id,
		CreateMeetingInput: req.input(),
		Status:             req.Status,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, m)
}

func (h *MeetingHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), actorFrom(c), id); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.NoContent(c)
}

func (h *MeetingHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	m, err := h.uc.Cancel.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, m)
}

func (h *MeetingHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	m, err := h.uc.Complete.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, m)
}

// ======================================================
// NOTES
// ======================================================

func (h *MeetingHandler) AddNote(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	n, err := h.uc.AddNote.Execute(c.Request.Context(), actorFrom(c), id, req.Content)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.Created(c, n)
}

func (h *MeetingHandler) UpdateNote(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := uuidParam(c, "noteId")
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	n, err := h.uc.UpdateNote.Execute(c.Request.Context(), actorFrom(c), id, noteID, req.Content)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, n)
}

func (h *MeetingHandler) DeleteNote(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := uuidParam(c, "noteId")
	if !ok {
		return
	}

	if err := h.uc.DeleteNote.Execute(c.Request.Context(), actorFrom(c), id, noteID); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.NoContent(c)
}

// ======================================================
// INVITEES
// ======================================================

func (h *MeetingHandler) AddInvitee(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req InviteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	inv, err := h.uc.AddInvitee.Execute(c.Request.Context(), actorFrom(c), id, req.UserID)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.Created(c, inv)
}

func (h *MeetingHandler) AcceptInvite(c *gin.Context) {
	h.respondInvite(c, true)
}

func (h *MeetingHandler) DeclineInvite(c *gin.Context) {
	h.respondInvite(c, false)
}

func (h *MeetingHandler) respondInvite(c *gin.Context, accept bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	inviteID, ok := uuidParam(c, "inviteId")
	if !ok {
		return
	}

	inv, err := h.uc.RespondInvite.Execute(c.Request.Context(), actorFrom(c), id, inviteID, accept)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, inv)
}

func (h *MeetingHandler) DeleteInvitee(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	inviteID, ok := uuidParam(c, "inviteId")
	if !ok {
		return
	}

	if err := h.uc.DeleteInvitee.Execute(c.Request.Context(), actorFrom(c), id, inviteID); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.NoContent(c)
}

// ======================================================
// ACTION ITEMS
// ======================================================

func (h *MeetingHandler) AddActionItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req ActionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	item, err := h.uc.AddActionItem.Execute(c.Request.Context(), actorFrom(c), id, req.input())
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.Created(c, item)
}

func (h *MeetingHandler) UpdateActionItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	var req ActionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	item, err := h.uc.UpdateActionItem.Execute(c.Request.Context(), actorFrom(c), id, itemID, req.input())
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, item)
}

func (h *MeetingHandler) ToggleActionItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	item, err := h.uc.ToggleActionItem.Execute(c.Request.Context(), actorFrom(c), id, itemID)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, item)
}

func (h *MeetingHandler) AcceptActionItem(c *gin.Context) {
	h.judge(c, domain.JudgmentAccepted)
}

func (h *MeetingHandler) RejectActionItem(c *gin.Context) {
	h.judge(c, domain.JudgmentRejected)
}

func (h *MeetingHandler) judge(c *gin.Context, verdict domain.Judgment) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	item, err := h.uc.JudgeActionItem.Execute(c.Request.Context(), actorFrom(c), id, itemID, verdict)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, item)
}

func (h *MeetingHandler) DeleteActionItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.uc.DeleteActionItem.Execute(c.Request.Context(), actorFrom(c), id, itemID); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.NoContent(c)
}

// ======================================================
// ATTACHMENTS
// ======================================================

func (h *MeetingHandler) UploadAttachments(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	files, ok := h.uploadFiles(c)
	if !ok {
		return
	}

	atts, err := h.uc.UploadAttachments.Execute(c.Request.Context(), actorFrom(c), id, files)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.Created(c, gin.H{"attachments": atts})
}

func (h *MeetingHandler) DeleteAttachment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	attID, ok := uuidParam(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.uc.DeleteAttachment.Execute(c.Request.Context(), actorFrom(c), id, attID); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.NoContent(c)
}

// ActionItemAttachments returns the handler replacing one side of an item.
func (h *MeetingHandler) ActionItemAttachments(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		itemID, ok := uuidParam(c, "itemId")
		if !ok {
			return
		}

		files, ok := h.uploadFiles(c)
		if !ok {
			return
		}

		atts, err := h.uc.ReplaceItemAttachments.Execute(c.Request.Context(), actorFrom(c), id, itemID, kind, files)
		if err != nil {
			httperr.Respond(c, h.log, err)
			return
		}
		httpresp.OK(c, gin.H{"attachments": atts})
	}
}

func (h *MeetingHandler) uploadFiles(c *gin.Context) ([]domain.UploadFile, bool) {
	headers, err := formFiles(c)
	if err != nil {
		httperr.Respond(c, h.log, domain.ErrNoFiles)
		return nil, false
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFile(fh))
	}
	return files, true
}

func uploadFile(fh *multipart.FileHeader) domain.UploadFile {
	return domain.UploadFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
