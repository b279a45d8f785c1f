package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/dto"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	"github.com/BruksfildServices01/meeting-rooms/internal/timezone"
	ucmeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

// MeHandler serves read projections of the caller's meetings and invites.
type MeHandler struct {
	db    *gorm.DB
	store ucmeeting.FileStore
	audit *audit.Dispatcher
	log   *zap.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewMeHandler(
	db *gorm.DB,
	store ucmeeting.FileStore,
	audit *audit.Dispatcher,
	loc *time.Location,
	log *zap.Logger,
) *MeHandler {
	return &MeHandler{db: db, store: store, audit: audit, log: log, loc: loc, now: time.Now}
}

const acceptedMeetingIDs = "SELECT meeting_id FROM invitees WHERE user_id = ? AND attendance = 'Accepted'"

// visible scopes meetings to those organized or accepted by userID.
func visible(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("meetings.organizer_id = ? OR meetings.id IN ("+acceptedMeetingIDs+")", userID, userID)
	}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", actorFrom(c).UserID).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}
	httpresp.OK(c, dto.User(user))
}

func (h *MeHandler) Organized(c *gin.Context) {
	page, size := pagination(c, 3, 50)
	userID := actorFrom(c).UserID

	q := h.db.Model(&models.Meeting{}).
		Where("organizer_id = ? AND start_time >= ? AND status = ?", userID, h.now(), string(domain.StatusScheduled))

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	var list []models.Meeting
	if err := q.Preload("Room").
		Order("start_time ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&list).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.Page(c, dto.MeetingLists(list), total, page, size)
}

func (h *MeHandler) Invited(c *gin.Context) {
	userID := actorFrom(c).UserID

	var list []models.Meeting
	if err := h.db.Preload("Room").
		Where("id IN ("+acceptedMeetingIDs+")", userID).
		Where("start_time >= ? AND status = ?", h.now(), string(domain.StatusScheduled)).
		Order("start_time ASC").
		Find(&list).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.List(c, dto.MeetingLists(list))
}

func (h *MeHandler) PendingInvites(c *gin.Context) {
	h.invites(c, "invitees.status = ?", string(domain.InvitePending))
}

func (h *MeHandler) AcceptedInvites(c *gin.Context) {
	h.invites(c, "invitees.attendance = ?", string(domain.AttendanceAccepted))
}

func (h *MeHandler) invites(c *gin.Context, cond string, arg string) {
	var rows []dto.InviteDTO
	if err := h.db.Table("invitees").
		Select(`invitees.id, invitees.meeting_id, meetings.title AS meeting_title,
			meetings.start_time, meetings.end_time, invitees.status, invitees.attendance`).
		Joins("JOIN meetings ON meetings.id = invitees.meeting_id").
		Where("invitees.user_id = ?", actorFrom(c).UserID).
		Where(cond, arg).
		Order("meetings.start_time ASC").
		Scan(&rows).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.List(c, rows)
}

func (h *MeHandler) All(c *gin.Context) {
	var list []models.Meeting
	if err := h.db.Preload("Room").
		Scopes(visible(actorFrom(c).UserID)).
		Order("start_time DESC").
		Find(&list).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.List(c, dto.MeetingLists(list))
}

func (h *MeHandler) Previous(c *gin.Context) {
	var list []models.Meeting
	if err := h.db.Preload("Room").
		Scopes(visible(actorFrom(c).UserID)).
		Where("end_time < ?", h.now()).
		Order("start_time DESC").
		Find(&list).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.List(c, dto.MeetingLists(list))
}

func (h *MeHandler) DailyCount(c *gin.Context) {
	day := startOfDay(h.now(), h.loc)
	if v := c.Query("date"); v != "" {
		d, err := parseDay(v, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
			return
		}
		day = d
	}

	var count int64
	if err := h.db.Model(&models.Meeting{}).
		Scopes(visible(actorFrom(c).UserID)).
		Where("start_time >= ? AND start_time < ?", day, day.AddDate(0, 0, 1)).
		Where("status <> ?", string(domain.StatusCancelled)).
		Count(&count).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.DayCountDTO{Date: timezone.DayKey(day, h.loc), Count: count})
}

func (h *MeHandler) Heatmap(c *gin.Context) {
	year := h.now().In(h.loc).Year()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			httperr.BadRequest(c, "invalid_year", "Year is invalid.")
			return
		}
		year = y
	}

	days := daysOfYear(year, h.loc)
	from := days[0]
	to := from.AddDate(1, 0, 0)

	var rows []dto.DayCountDTO
	if err := h.db.Model(&models.Meeting{}).
		Select("to_char(start_time AT TIME ZONE ?, 'YYYY-MM-DD') AS date, COUNT(*) AS count", h.loc.String()).
		Scopes(visible(actorFrom(c).UserID)).
		Where("start_time >= ? AND start_time < ?", from, to).
		Where("status <> ?", string(domain.StatusCancelled)).
		Group("date").
		Scan(&rows).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Date] = r.Count
	}

	out := make([]dto.DayCountDTO, 0, len(days))
	for _, d := range days {
		key := timezone.DayKey(d, h.loc)
		out = append(out, dto.DayCountDTO{Date: key, Count: counts[key]})
	}

	httpresp.OK(c, gin.H{"year": year, "days": out})
}

func (h *MeHandler) UploadProfile(c *gin.Context) {
	actor := actorFrom(c)

	var user models.User
	if err := h.db.First(&user, "id = ?", actor.UserID).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}

	key, err := storeImage(c, h.store, "users/", profileImageWidth)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	previous := user.ProfileImageKey
	user.ProfileImageKey = key
	user.ProfileImageURL = domain.FileURL(key)
	user.UpdatedAt = h.now()

	if err := h.db.Model(&user).
		Select("profile_image_key", "profile_image_url", "updated_at").
		Updates(&user).Error; err != nil {
		_ = h.store.Delete(c.Request.Context(), key)
		httperr.Respond(c, h.log, err)
		return
	}

	if previous != "" {
		if err := h.store.Delete(c.Request.Context(), previous); err != nil {
			h.log.Warn("failed to delete stored image", zap.String("key", previous), zap.Error(err))
		}
	}
	writeAudit(h.audit, actor, "profile_image_uploaded", "user", user.ID, nil)

	httpresp.OK(c, dto.User(user))
}
