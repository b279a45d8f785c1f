package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meeting-rooms/internal/dto"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	"github.com/BruksfildServices01/meeting-rooms/internal/validators"
)

type UserHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserHandler(db *gorm.DB, log *zap.Logger) *UserHandler {
	return &UserHandler{db: db, log: log}
}

func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("first_name ASC, last_name ASC").Find(&users).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.List(c, dto.Users(users))
}

func (h *UserHandler) Count(c *gin.Context) {
	var total int64
	if err := h.db.Model(&models.User{}).Count(&total).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, gin.H{"count": total})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}
	httpresp.OK(c, dto.User(user))
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	var user models.User
	if err := h.db.
		Where("email = ?", validators.NormalizeEmail(c.Param("email"))).
		First(&user).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}
	httpresp.OK(c, dto.User(user))
}
