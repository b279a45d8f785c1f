package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting/meetingtest"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/lock"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/storage"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	ucmeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

type meetingEnv struct {
	router    *gin.Engine
	repo      *meetingtest.Memory
	store     *storage.Local
	organizer models.User
	alice     models.User
	bob       models.User
	room      models.Room
}

func newMeetingEnv(t *testing.T) *meetingEnv {
	t.Helper()

	repo := meetingtest.New()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	uc := NewMeetingUseCases(repo, store, lock.NewLocal(time.Second), nil, nopLog)
	h := NewMeetingHandler(uc, time.UTC, nopLog)
	files := NewFileHandler(uc.OpenFile, store, nopLog)

	r := gin.New()
	g := securedGroup(r)
	g.GET("/meetings", h.List)
	g.POST("/meetings", h.Create)
	g.POST("/meetings/recurring", h.CreateRecurring)
	g.GET("/meetings/:id", h.Get)
	g.PUT("/meetings/:id", h.Update)
	g.DELETE("/meetings/:id", h.Delete)
	g.PATCH("/meetings/:id/cancel", h.Cancel)
	g.POST("/meetings/:id/notes", h.AddNote)
	g.POST("/meetings/:id/invitees", h.AddInvitee)
	g.PUT("/meetings/:id/invitees/:inviteId/accept", h.AcceptInvite)
	g.PUT("/meetings/:id/invitees/:inviteId/decline", h.DeclineInvite)
	g.POST("/meetings/:id/action-items", h.AddActionItem)
	g.PUT("/meetings/:id/action-items/:itemId/toggle-status", h.ToggleActionItem)
	g.PUT("/meetings/:id/action-items/:itemId/accept", h.AcceptActionItem)
	g.POST("/meetings/:id/action-items/:itemId/submission-attachments", h.ActionItemAttachments(models.AttachmentSubmission))
	g.POST("/meetings/:id/attachments", h.UploadAttachments)
	g.GET("/files/meetings/:meetingId/:fileName", files.MeetingFile)
	g.GET("/files/action-items/:itemId/:kind/:fileName", files.ActionItemFile)
	g.GET("/files/rooms/:roomId/:fileName", files.RoomImage)

	return &meetingEnv{
		router:    r,
		repo:      repo,
		store:     store,
		organizer: repo.AddUser(models.User{Email: "org@example.com", Role: string(access.RoleEmployee)}),
		alice:     repo.AddUser(models.User{Email: "alice@example.com", Role: string(access.RoleEmployee)}),
		bob:       repo.AddUser(models.User{Email: "bob@example.com", Role: string(access.RoleGuest)}),
		room:      repo.AddRoom(models.Room{Name: "Fjord", Capacity: 4}),
	}
}

var slot = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func (e *meetingEnv) create(t *testing.T, start time.Time) models.Meeting {
	t.Helper()
	w := doJSON(t, e.router, http.MethodPost, "/api/meetings", tokenFor(t, e.organizer), MeetingRequest{
		Title:     "Planning",
		RoomID:    &e.room.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Meeting](t, w)
}

func (e *meetingEnv) accept(t *testing.T, m models.Meeting, u models.User) models.Invitee {
	t.Helper()
	w := doJSON(t, e.router, http.MethodPost, "/api/meetings/"+m.ID.String()+"/invitees",
		tokenFor(t, e.organizer), InviteeRequest{UserID: u.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[models.Invitee](t, w)

	w = doJSON(t, e.router, http.MethodPut,
		fmt.Sprintf("/api/meetings/%s/invitees/%s/accept", m.ID, inv.ID), tokenFor(t, u), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Invitee](t, w)
}

func TestMeetingHandler_Create(t *testing.T) {
	e := newMeetingEnv(t)

	m := e.create(t, slot)

	assert.Equal(t, "Scheduled", m.Status)
	assert.Equal(t, e.organizer.ID, *m.OrganizerID)
	assert.Equal(t, 1, e.repo.MeetingCount())
}

func TestMeetingHandler_Create_Errors(t *testing.T) {
	e := newMeetingEnv(t)
	e.create(t, slot)
	token := tokenFor(t, e.organizer)

	tests := []struct {
		name   string
		token  string
		body   any
		status int
		code   string
	}{
		{
			name:   "overlap",
			token:  token,
			body:   MeetingRequest{Title: "Clash", RoomID: &e.room.ID, StartTime: slot.Add(30 * time.Minute), EndTime: slot.Add(90 * time.Minute)},
			status: http.StatusConflict,
			code:   "room_already_booked",
		},
		{
			name:   "inverted window",
			token:  token,
			body:   MeetingRequest{Title: "Backwards", StartTime: slot.Add(time.Hour), EndTime: slot},
			status: http.StatusBadRequest,
			code:   "invalid_time_range",
		},
		{
			name:   "missing title",
			token:  token,
			body:   map[string]any{"start_time": slot, "end_time": slot.Add(time.Hour)},
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "unknown room",
			token:  token,
			body:   MeetingRequest{Title: "Nowhere", RoomID: ptr(uuid.New()), StartTime: slot, EndTime: slot.Add(time.Hour)},
			status: http.StatusNotFound,
			code:   "room_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, e.router, http.MethodPost, "/api/meetings", tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}

	assert.Equal(t, 1, e.repo.MeetingCount())
}

func TestMeetingHandler_RequiresToken(t *testing.T) {
	e := newMeetingEnv(t)

	w := doJSON(t, e.router, http.MethodGet, "/api/meetings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, e.router, http.MethodGet, "/api/meetings", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeetingHandler_InvalidID(t *testing.T) {
	e := newMeetingEnv(t)

	w := doJSON(t, e.router, http.MethodGet, "/api/meetings/not-a-uuid", tokenFor(t, e.organizer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", errorCode(t, w))
}

func TestMeetingHandler_UpdateByNonOrganizer(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)

	w := doJSON(t, e.router, http.MethodPut, "/api/meetings/"+m.ID.String(), tokenFor(t, e.alice), MeetingRequest{
		Title:     "Hijack",
		StartTime: slot,
		EndTime:   slot.Add(time.Hour),
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errorCode(t, w))
}

func TestMeetingHandler_Visibility(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)

	w := doJSON(t, e.router, http.MethodGet, "/api/meetings/"+m.ID.String(), tokenFor(t, e.alice), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.accept(t, m, e.alice)

	w = doJSON(t, e.router, http.MethodGet, "/api/meetings/"+m.ID.String(), tokenFor(t, e.alice), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, e.router, http.MethodGet, "/api/meetings", tokenFor(t, e.alice), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[httpresp.ListResponse[models.Meeting]](t, w).Total)

	w = doJSON(t, e.router, http.MethodGet, "/api/meetings", tokenFor(t, e.bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[httpresp.ListResponse[models.Meeting]](t, w).Total)
}

func TestMeetingHandler_ListFilters(t *testing.T) {
	e := newMeetingEnv(t)
	e.create(t, slot)
	e.create(t, slot.Add(48*time.Hour))

	w := doJSON(t, e.router, http.MethodGet, "/api/meetings?from=2025-06-03", tokenFor(t, e.organizer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[httpresp.ListResponse[models.Meeting]](t, w).Total)

	w = doJSON(t, e.router, http.MethodGet, "/api/meetings?from=yesterday", tokenFor(t, e.organizer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_from", errorCode(t, w))

	w = doJSON(t, e.router, http.MethodGet, "/api/meetings?roomId=x", tokenFor(t, e.organizer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeetingHandler_CreateRecurring(t *testing.T) {
	e := newMeetingEnv(t)

	w := doJSON(t, e.router, http.MethodPost, "/api/meetings/recurring", tokenFor(t, e.organizer), RecurringMeetingRequest{
		MeetingRequest: MeetingRequest{
			Title:     "Standup",
			RoomID:    &e.room.ID,
			StartTime: slot,
			EndTime:   slot.Add(15 * time.Minute),
		},
		RecurrencePattern: "Daily",
		RecurrenceEndDate: "2025-06-04",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[ucmeeting.RecurringResult](t, w)
	assert.Equal(t, 3, res.TotalMeetings)
	assert.Equal(t, "Daily", res.Pattern)
	assert.Len(t, res.Meetings, 3)
	assert.Equal(t, 3, e.repo.MeetingCount())
}

func TestMeetingHandler_CreateRecurring_EndInstant(t *testing.T) {
	e := newMeetingEnv(t)

	w := doJSON(t, e.router, http.MethodPost, "/api/meetings/recurring", tokenFor(t, e.organizer), RecurringMeetingRequest{
		MeetingRequest: MeetingRequest{
			Title:     "Standup",
			RoomID:    &e.room.ID,
			StartTime: slot,
			EndTime:   slot.Add(15 * time.Minute),
		},
		RecurrencePattern: "Daily",
		RecurrenceEndDate: "2025-06-04T08:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[ucmeeting.RecurringResult](t, w).TotalMeetings)

	w = doJSON(t, e.router, http.MethodPost, "/api/meetings/recurring", tokenFor(t, e.organizer), RecurringMeetingRequest{
		MeetingRequest: MeetingRequest{
			Title:     "Early",
			RoomID:    &e.room.ID,
			StartTime: slot.AddDate(0, 1, 0),
			EndTime:   slot.AddDate(0, 1, 0).Add(15 * time.Minute),
		},
		RecurrencePattern: "Daily",
		RecurrenceEndDate: slot.AddDate(0, 1, 0).Add(-time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_recurrence_end_date", errorCode(t, w))
	assert.Equal(t, 2, e.repo.MeetingCount())
}

func TestMeetingHandler_CreateRecurring_BadInput(t *testing.T) {
	e := newMeetingEnv(t)
	token := tokenFor(t, e.organizer)
	base := MeetingRequest{Title: "Standup", StartTime: slot, EndTime: slot.Add(15 * time.Minute)}

	w := doJSON(t, e.router, http.MethodPost, "/api/meetings/recurring", token, RecurringMeetingRequest{
		MeetingRequest: base, RecurrencePattern: "Daily", RecurrenceEndDate: "soon",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_recurrence_end_date", errorCode(t, w))

	w = doJSON(t, e.router, http.MethodPost, "/api/meetings/recurring", token, RecurringMeetingRequest{
		MeetingRequest: base, RecurrencePattern: "Hourly", RecurrenceEndDate: "2025-06-04",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, e.repo.MeetingCount())
}

func TestMeetingHandler_InviteLifecycle(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)

	inv := e.accept(t, m, e.alice)
	assert.Equal(t, "Answered", inv.Status)
	assert.Equal(t, "Accepted", inv.Attendance)

	w := doJSON(t, e.router, http.MethodPut,
		fmt.Sprintf("/api/meetings/%s/invitees/%s/decline", m.ID, inv.ID), tokenFor(t, e.alice), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invite_already_answered", errorCode(t, w))

	w = doJSON(t, e.router, http.MethodPost, "/api/meetings/"+m.ID.String()+"/invitees",
		tokenFor(t, e.organizer), InviteeRequest{UserID: e.alice.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "already_invited", errorCode(t, w))
}

func TestMeetingHandler_NoteByInvitee(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)
	e.accept(t, m, e.alice)

	w := doJSON(t, e.router, http.MethodPost, "/api/meetings/"+m.ID.String()+"/notes",
		tokenFor(t, e.alice), NoteRequest{Content: "Bring the Q3 numbers"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, e.alice.ID, decode[models.Note](t, w).CreatedByID)

	w = doJSON(t, e.router, http.MethodPost, "/api/meetings/"+m.ID.String()+"/notes",
		tokenFor(t, e.bob), NoteRequest{Content: "Not invited"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMeetingHandler_ActionItemFlow(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)
	e.accept(t, m, e.alice)
	base := "/api/meetings/" + m.ID.String() + "/action-items"

	w := doJSON(t, e.router, http.MethodPost, base, tokenFor(t, e.organizer), ActionItemRequest{
		Description:  "Draft the budget",
		Type:         "Task",
		Deadline:     slot.Add(72 * time.Hour),
		AssignedToID: e.alice.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[models.ActionItem](t, w)
	itemPath := base + "/" + item.ID.String()

	w = doJSON(t, e.router, http.MethodPut, itemPath+"/accept", tokenFor(t, e.organizer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "action_item_not_submitted", errorCode(t, w))

	w = doUpload(t, e.router, itemPath+"/submission-attachments", tokenFor(t, e.alice), "files", map[string][]byte{
		"budget.txt": []byte("42"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	atts := decode[map[string][]models.Attachment](t, w)["attachments"]
	require.Len(t, atts, 1)

	w = doJSON(t, e.router, http.MethodGet,
		fmt.Sprintf("/api/files/action-items/%s/submission/%s", item.ID, atts[0].FileName), tokenFor(t, e.organizer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = doJSON(t, e.router, http.MethodPut, itemPath+"/toggle-status", tokenFor(t, e.alice), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Submitted", decode[models.ActionItem](t, w).Status)

	w = doJSON(t, e.router, http.MethodPut, itemPath+"/accept", tokenFor(t, e.organizer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Accepted", decode[models.ActionItem](t, w).Judgment)
}

func TestMeetingHandler_MeetingAttachments(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)
	path := "/api/meetings/" + m.ID.String() + "/attachments"

	w := doUpload(t, e.router, path, tokenFor(t, e.organizer), "files", map[string][]byte{
		"agenda.txt": []byte("1. intro"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	atts := decode[map[string][]models.Attachment](t, w)["attachments"]
	require.Len(t, atts, 1)
	assert.Equal(t, "agenda.txt", atts[0].OriginalName)

	w = doJSON(t, e.router, http.MethodGet,
		fmt.Sprintf("/api/files/meetings/%s/%s", m.ID, atts[0].FileName), tokenFor(t, e.organizer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1. intro", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "agenda.txt")

	w = doJSON(t, e.router, http.MethodGet,
		fmt.Sprintf("/api/files/meetings/%s/%s", m.ID, atts[0].FileName), tokenFor(t, e.bob), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMeetingHandler_AttachmentRejections(t *testing.T) {
	e := newMeetingEnv(t)
	m := e.create(t, slot)
	path := "/api/meetings/" + m.ID.String() + "/attachments"
	token := tokenFor(t, e.organizer)

	w := doUpload(t, e.router, path, token, "files", map[string][]byte{"run.exe": []byte("MZ")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported_file_type", errorCode(t, w))

	six := map[string][]byte{}
	for i := range 6 {
		six[fmt.Sprintf("f%d.txt", i)] = []byte("x")
	}
	w = doUpload(t, e.router, path, token, "files", six)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "too_many_files", errorCode(t, w))

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_files", errorCode(t, rec))

	assert.Empty(t, e.reload(t, m.ID).Attachments)
}

func TestFileHandler_RoomImage(t *testing.T) {
	e := newMeetingEnv(t)
	key := "rooms/" + e.room.ID.String() + "/cover.webp"
	require.NoError(t, e.store.Put(t.Context(), key, strings.NewReader("RIFF"), 4, "image/webp"))

	w := doJSON(t, e.router, http.MethodGet, "/api/files/rooms/"+e.room.ID.String()+"/cover.webp", tokenFor(t, e.bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RIFF", w.Body.String())

	w = doJSON(t, e.router, http.MethodGet, "/api/files/rooms/"+e.room.ID.String()+"/missing.webp", tokenFor(t, e.bob), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "file_not_found", errorCode(t, w))
}

func (e *meetingEnv) reload(t *testing.T, id uuid.UUID) *models.Meeting {
	t.Helper()
	m, err := e.repo.GetMeeting(t.Context(), id)
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T { return &v }
