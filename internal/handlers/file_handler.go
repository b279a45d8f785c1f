package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/storage"
	ucmeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

type FileHandler struct {
	open  *ucmeeting.OpenFile
	store ucmeeting.FileStore
	log   *zap.Logger
}

func NewFileHandler(open *ucmeeting.OpenFile, store ucmeeting.FileStore, log *zap.Logger) *FileHandler {
	return &FileHandler{open: open, store: store, log: log}
}

func (h *FileHandler) MeetingFile(c *gin.Context) {
	meetingID, ok := uuidParam(c, "meetingId")
	if !ok {
		return
	}

	dl, err := h.open.Meeting(c.Request.Context(), actorFrom(c), meetingID, c.Param("fileName"))
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	stream(c, dl.Object, dl.Attachment.OriginalName)
}

func (h *FileHandler) ActionItemFile(c *gin.Context) {
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	dl, err := h.open.ActionItem(c.Request.Context(), actorFrom(c), itemID, c.Param("kind"), c.Param("fileName"))
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	stream(c, dl.Object, dl.Attachment.OriginalName)
}

func (h *FileHandler) RoomImage(c *gin.Context) {
	roomID, ok := uuidParam(c, "roomId")
	if !ok {
		return
	}
	h.public(c, "rooms/"+roomID.String()+"/"+c.Param("fileName"))
}

func (h *FileHandler) ProfileImage(c *gin.Context) {
	h.public(c, "users/"+c.Param("fileName"))
}

// public serves images any authenticated user may see.
func (h *FileHandler) public(c *gin.Context, key string) {
	if err := domain.SafeFileName(c.Param("fileName")); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	obj, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			err = domain.ErrFileNotFound
		}
		httperr.Respond(c, h.log, err)
		return
	}
	stream(c, obj, "")
}

func stream(c *gin.Context, obj *storage.Object, downloadName string) {
	defer obj.Body.Close()

	headers := map[string]string{}
	if downloadName != "" {
		headers["Content-Disposition"] = mime.FormatMediaType("inline", map[string]string{"filename": downloadName})
	}

	size := obj.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, obj.ContentType, obj.Body, headers)
}
