package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type AuditLogsHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuditLogsHandler(db *gorm.DB, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, log: log}
}

type auditLogQuery struct {
	Action string `form:"action"`
	Entity string `form:"entity"`
	UserID string `form:"user_id"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// List pages through audit_logs, newest first. from and to bound created_at
// and accept a date or a timestamp; a plain date for to includes that day.
func (h *AuditLogsHandler) List(c *gin.Context) {
	var q auditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}

	from, ok := optionalTime(c, "from")
	if !ok {
		return
	}
	to, ok := optionalTime(c, "to")
	if !ok {
		return
	}

	db := h.db.Model(&models.AuditLog{})
	if q.Action != "" {
		db = db.Where("action = ?", q.Action)
	}
	if q.Entity != "" {
		db = db.Where("entity = ?", q.Entity)
	}
	if q.UserID != "" {
		id, err := uuid.Parse(q.UserID)
		if err != nil {
			httperr.BadRequest(c, "invalid_user_id", "Invalid user_id.")
			return
		}
		db = db.Where("user_id = ?", id)
	}
	if from != nil {
		db = db.Where("created_at >= ?", *from)
	}
	if to != nil {
		end := *to
		if len(c.Query("to")) == len("2006-01-02") {
			end = end.AddDate(0, 0, 1)
		}
		db = db.Where("created_at < ?", end)
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	logs := []models.AuditLog{}
	if err := db.Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&logs).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"page":  q.Page,
		"limit": q.Limit,
		"total": total,
		"logs":  logs,
	})
}
