package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

var (
	errNotificationNotFound  = httperr.NotFoundErr("notification_not_found", "Notification not found.")
	errNotificationForbidden = httperr.ForbiddenErr("forbidden", "You are not allowed to perform this action.")
)

type NotificationHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewNotificationHandler(db *gorm.DB, audit *audit.Dispatcher, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{db: db, audit: audit, log: log}
}

type NotificationRequest struct {
	UserID  uuid.UUID `json:"user_id" binding:"required"`
	Subject string    `json:"subject" binding:"required,max=100"`
	Body    string    `json:"body"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	var list []models.Notification
	if err := h.db.
		Where("user_id = ?", actorFrom(c).UserID).
		Order("date DESC").
		Find(&list).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.List(c, list)
}

func (h *NotificationHandler) Create(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	var target models.User
	if err := h.db.Select("id").First(&target, "id = ?", req.UserID).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}

	n := models.Notification{
		ID:      uuid.New(),
		UserID:  req.UserID,
		Subject: req.Subject,
		Body:    req.Body,
		Date:    time.Now(),
	}
	if err := h.db.Create(&n).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "notification_created", "notification", n.ID, map[string]any{
		"user_id": n.UserID,
		"subject": n.Subject,
	})

	httpresp.Created(c, n)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, ok := h.owned(c)
	if !ok {
		return
	}

	n.IsRead = true
	if err := h.db.Model(n).Update("is_read", true).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, n)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	n, ok := h.owned(c)
	if !ok {
		return
	}

	if err := h.db.Delete(&models.Notification{}, "id = ?", n.ID).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "notification_deleted", "notification", n.ID, nil)

	httpresp.NoContent(c)
}

// owned loads the notification in the path if the caller owns it or is admin.
func (h *NotificationHandler) owned(c *gin.Context) (*models.Notification, bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}

	var n models.Notification
	if err := h.db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = errNotificationNotFound
		}
		httperr.Respond(c, h.log, err)
		return nil, false
	}

	if !canManageNotification(actorFrom(c), n) {
		httperr.Respond(c, h.log, errNotificationForbidden)
		return nil, false
	}
	return &n, true
}

func canManageNotification(actor access.Actor, n models.Notification) bool {
	return actor.IsAdmin() || n.UserID == actor.UserID
}
