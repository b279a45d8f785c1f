package handlers

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/imaging"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	ucmeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

const (
	roomImageWidth    = 1280
	profileImageWidth = 512
	maxImageSize      = 5 << 20
)

var (
	errFeatureNotFound    = httperr.NotFoundErr("feature_not_found", "Feature not found.")
	errFeatureAttached    = httperr.ConflictErr("feature_already_attached", "Feature is already attached to this room.")
	errFeatureNotAttached = httperr.NotFoundErr("feature_not_attached", "Feature is not attached to this room.")
	errFeatureExists      = httperr.ConflictErr("feature_already_exists", "A feature with this name already exists.")
	errRoomInUse          = httperr.ConflictErr("room_has_scheduled_meetings", "Room still has scheduled meetings.")
	errNoImage            = httperr.InvalidErr("no_image", "An image file is required.")
	errImageTooLarge      = httperr.InvalidErr("image_too_large", "Image must be at most 5 MB.")
	errImageType          = httperr.InvalidErr("unsupported_image_type", "Image must be jpg, jpeg, png or webp.")
)

type RoomHandler struct {
	db    *gorm.DB
	store ucmeeting.FileStore
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewRoomHandler(db *gorm.DB, store ucmeeting.FileStore, audit *audit.Dispatcher, log *zap.Logger) *RoomHandler {
	return &RoomHandler{db: db, store: store, audit: audit, log: log}
}

// --------- Requests ---------

type RoomRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
	Location string `json:"location" binding:"max=200"`
}

// --------- Rooms ---------

func (h *RoomHandler) List(c *gin.Context) {
	var rooms []models.Room
	if err := h.db.Preload("Features").Order("name ASC").Find(&rooms).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.List(c, rooms)
}

func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.find(id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, room)
}

func (h *RoomHandler) Create(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	now := time.Now()
	room := models.Room{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Capacity:  req.Capacity,
		Location:  strings.TrimSpace(req.Location),
		Features:  []models.Feature{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.db.Omit("Features").Create(&room).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "room_created", "room", room.ID, map[string]any{
		"name":     room.Name,
		"capacity": room.Capacity,
	})

	httpresp.Created(c, room)
}

func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, id)
		if err != nil {
			return err
		}

		busiest, err := maxAccepted(tx, id)
		if err != nil {
			return err
		}
		if busiest > int64(req.Capacity) {
			return domain.ErrRoomTooSmall
		}

		room.Name = strings.TrimSpace(req.Name)
		room.Capacity = req.Capacity
		room.Location = strings.TrimSpace(req.Location)
		room.UpdatedAt = time.Now()

		return tx.Model(room).Select("name", "capacity", "location", "updated_at").Updates(room).Error
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	room, err := h.find(id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "room_updated", "room", room.ID, req)

	httpresp.OK(c, room)
}

func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.find(id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockRoom(tx, id); err != nil {
			return err
		}

		var scheduled int64
		if err := tx.Model(&models.Meeting{}).
			Where("room_id = ? AND status = ?", id, string(domain.StatusScheduled)).
			Count(&scheduled).Error; err != nil {
			return err
		}
		if scheduled > 0 {
			return errRoomInUse
		}

		if err := tx.Where("room_id = ?", id).Delete(&models.RoomFeature{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, "id = ?", id).Error
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	h.deleteObject(c, room.ImageKey)
	writeAudit(h.audit, actorFrom(c), "room_deleted", "room", id, map[string]any{"name": room.Name})

	httpresp.NoContent(c)
}

// --------- Features of a room ---------

func (h *RoomHandler) AddFeature(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	featureID, ok := uuidParam(c, "featureId")
	if !ok {
		return
	}

	if _, err := h.find(id); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	var feature models.Feature
	if err := h.db.First(&feature, "id = ?", featureID).Error; err != nil {
		httperr.Respond(c, h.log, featureLookupErr(err))
		return
	}

	var linked int64
	if err := h.db.Model(&models.RoomFeature{}).
		Where("room_id = ? AND feature_id = ?", id, featureID).
		Count(&linked).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	if linked > 0 {
		httperr.Respond(c, h.log, errFeatureAttached)
		return
	}

	if err := h.db.Create(&models.RoomFeature{RoomID: id, FeatureID: featureID}).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			err = errFeatureAttached
		}
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "room_feature_added", "room", id, map[string]any{"feature": feature.Name})

	room, err := h.find(id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, room)
}

func (h *RoomHandler) RemoveFeature(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	featureID, ok := uuidParam(c, "featureId")
	if !ok {
		return
	}

	res := h.db.Where("room_id = ? AND feature_id = ?", id, featureID).Delete(&models.RoomFeature{})
	if res.Error != nil {
		httperr.Respond(c, h.log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, h.log, errFeatureNotAttached)
		return
	}

	writeAudit(h.audit, actorFrom(c), "room_feature_removed", "room", id, map[string]any{"feature_id": featureID})

	httpresp.NoContent(c)
}

// --------- Image ---------

func (h *RoomHandler) UploadImage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.find(id)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	key, err := h.storeImage(c, "rooms/"+id.String()+"/", roomImageWidth)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	previous := room.ImageKey
	room.ImageKey = key
	room.ImageURL = domain.FileURL(key)
	room.UpdatedAt = time.Now()

	if err := h.db.Model(room).Select("image_key", "image_url", "updated_at").Updates(room).Error; err != nil {
		h.deleteObject(c, key)
		httperr.Respond(c, h.log, err)
		return
	}

	h.deleteObject(c, previous)
	writeAudit(h.audit, actorFrom(c), "room_image_uploaded", "room", id, nil)

	httpresp.OK(c, room)
}

// storeImage converts the "file" part to webp and stores it under prefix.
func (h *RoomHandler) storeImage(c *gin.Context, prefix string, width int) (string, error) {
	return storeImage(c, h.store, prefix, width)
}

func storeImage(c *gin.Context, store ucmeeting.FileStore, prefix string, width int) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", errNoImage
	}
	if fh.Size > maxImageSize {
		return "", errImageTooLarge
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", errImageType
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := imaging.ToWebP(f, width)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return "", errImageType
		}
		return "", err
	}

	key := prefix + uuid.NewString() + ".webp"
	if err := store.Put(c.Request.Context(), key, bytes.NewReader(data), int64(len(data)), imaging.ContentTypeWebP); err != nil {
		return "", err
	}
	return key, nil
}

func (h *RoomHandler) deleteObject(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := h.store.Delete(c.Request.Context(), key); err != nil {
		h.log.Warn("failed to delete stored image", zap.String("key", key), zap.Error(err))
	}
}

// lockRoom takes the same row lock as meeting bookings, so room edits and
// bookings of the room are serialized.
func lockRoom(tx *gorm.DB, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// maxAccepted is the largest accepted-invitee count among the room's
// non-cancelled meetings.
func maxAccepted(tx *gorm.DB, roomID uuid.UUID) (int64, error) {
	var counts []int64
	if err := tx.Model(&models.Invitee{}).
		Joins("JOIN meetings ON meetings.id = invitees.meeting_id").
		Where("meetings.room_id = ? AND meetings.status <> ?", roomID, string(domain.StatusCancelled)).
		Where("invitees.attendance = ?", string(domain.AttendanceAccepted)).
		Group("invitees.meeting_id").
		Pluck("COUNT(*)", &counts).Error; err != nil {
		return 0, err
	}

	var busiest int64
	for _, n := range counts {
		busiest = max(busiest, n)
	}
	return busiest, nil
}

func (h *RoomHandler) find(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := h.db.Preload("Features", func(db *gorm.DB) *gorm.DB {
		return db.Order("features.name ASC")
	}).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	if room.Features == nil {
		room.Features = []models.Feature{}
	}
	return &room, nil
}

func featureLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errFeatureNotFound
	}
	return err
}

// ======================================================
// FEATURES
// ======================================================

type FeatureHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewFeatureHandler(db *gorm.DB, audit *audit.Dispatcher, log *zap.Logger) *FeatureHandler {
	return &FeatureHandler{db: db, audit: audit, log: log}
}

type FeatureRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

func (h *FeatureHandler) List(c *gin.Context) {
	var features []models.Feature
	if err := h.db.Order("name ASC").Find(&features).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.List(c, features)
}

func (h *FeatureHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var feature models.Feature
	if err := h.db.First(&feature, "id = ?", id).Error; err != nil {
		httperr.Respond(c, h.log, featureLookupErr(err))
		return
	}
	httpresp.OK(c, feature)
}

func (h *FeatureHandler) Create(c *gin.Context) {
	var req FeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	now := time.Now()
	feature := models.Feature{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.db.Create(&feature).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			err = errFeatureExists
		}
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "feature_created", "feature", feature.ID, map[string]any{"name": feature.Name})

	httpresp.Created(c, feature)
}

func (h *FeatureHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req FeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	var feature models.Feature
	if err := h.db.First(&feature, "id = ?", id).Error; err != nil {
		httperr.Respond(c, h.log, featureLookupErr(err))
		return
	}

	feature.Name = strings.TrimSpace(req.Name)
	feature.UpdatedAt = time.Now()

	if err := h.db.Model(&feature).Select("name", "updated_at").Updates(&feature).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			err = errFeatureExists
		}
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "feature_updated", "feature", feature.ID, map[string]any{"name": feature.Name})

	httpresp.OK(c, feature)
}

func (h *FeatureHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var affected int64
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feature_id = ?", id).Delete(&models.RoomFeature{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Feature{}, "id = ?", id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	if affected == 0 {
		httperr.Respond(c, h.log, errFeatureNotFound)
		return
	}

	writeAudit(h.audit, actorFrom(c), "feature_deleted", "feature", id, nil)

	httpresp.NoContent(c)
}
