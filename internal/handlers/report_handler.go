package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/dto"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

const topRoomsLimit = 3

type ReportHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReportHandler(db *gorm.DB, log *zap.Logger) *ReportHandler {
	return &ReportHandler{db: db, log: log}
}

func (h *ReportHandler) MeetingCount(c *gin.Context) {
	var total int64
	if err := h.db.Model(&models.Meeting{}).Count(&total).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, gin.H{"count": total})
}

func (h *ReportHandler) TopRooms(c *gin.Context) {
	var rows []dto.RoomUsageDTO
	if err := h.db.Table("meetings").
		Select("rooms.id AS room_id, rooms.name AS room_name, COUNT(meetings.id) AS meeting_count").
		Joins("JOIN rooms ON rooms.id = meetings.room_id").
		Where("meetings.status <> ?", string(domain.StatusCancelled)).
		Group("rooms.id, rooms.name").
		Order("meeting_count DESC, rooms.name ASC").
		Limit(topRoomsLimit).
		Scan(&rows).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.List(c, rows)
}
