package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/config"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/handlers"
	infraRepo "github.com/BruksfildServices01/meeting-rooms/internal/infra/repository"
	"github.com/BruksfildServices01/meeting-rooms/internal/middleware"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	ucMeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

// Deps are the singletons every handler is built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Store    ucMeeting.FileStore
	Locker   ucMeeting.Locker
	Audit    *audit.Dispatcher
	Location *time.Location
	Log      *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// INFRA
	// ======================================================
	meetingRepo := infraRepo.NewMeetingGormRepository(d.DB)

	// ======================================================
	// USE CASES
	// ======================================================
	meetingUC := handlers.NewMeetingUseCases(meetingRepo, d.Store, d.Locker, d.Audit, d.Log)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Config, d.Audit, d.Log)
	meHandler := handlers.NewMeHandler(d.DB, d.Store, d.Audit, d.Location, d.Log)
	userHandler := handlers.NewUserHandler(d.DB, d.Log)
	roomHandler := handlers.NewRoomHandler(d.DB, d.Store, d.Audit, d.Log)
	featureHandler := handlers.NewFeatureHandler(d.DB, d.Audit, d.Log)
	meetingHandler := handlers.NewMeetingHandler(meetingUC, d.Location, d.Log)
	fileHandler := handlers.NewFileHandler(meetingUC.OpenFile, d.Store, d.Log)
	notificationHandler := handlers.NewNotificationHandler(d.DB, d.Audit, d.Log)
	reportHandler := handlers.NewReportHandler(d.DB, d.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, d.Log)

	admin := middleware.RequireRole(access.RoleAdmin)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Config))

		// ------------------------------
		// AUTH
		// ------------------------------
		secured.POST("/auth/register", admin, authHandler.Register)
		secured.PUT("/auth/role/:id", admin, authHandler.UpdateRole)
		secured.POST("/auth/change-password", authHandler.ChangePassword)
		secured.DELETE("/auth/:id", admin, authHandler.Delete)

		// ------------------------------
		// USERS
		// ------------------------------
		secured.GET("/users", userHandler.List)
		secured.GET("/users/count", userHandler.Count)
		secured.GET("/users/email/:email", admin, userHandler.GetByEmail)

		secured.GET("/users/me", meHandler.GetMe)
		secured.POST("/users/me/upload-profile", meHandler.UploadProfile)
		secured.GET("/users/me/meetings/organized", meHandler.Organized)
		secured.GET("/users/me/meetings/invited", meHandler.Invited)
		secured.GET("/users/me/meetings/all", meHandler.All)
		secured.GET("/users/me/meetings/previous/all", meHandler.Previous)
		secured.GET("/users/me/meetings/dailycount", meHandler.DailyCount)
		secured.GET("/users/me/meetings/heatmap", meHandler.Heatmap)
		secured.GET("/users/me/invites/pending", meHandler.PendingInvites)
		secured.GET("/users/me/invites/accepted", meHandler.AcceptedInvites)

		secured.GET("/users/:id", admin, userHandler.Get)

		// ------------------------------
		// ROOMS & FEATURES
		// ------------------------------
		secured.GET("/rooms", roomHandler.List)
		secured.GET("/rooms/:id", roomHandler.Get)
		secured.POST("/rooms", admin, roomHandler.Create)
		secured.PUT("/rooms/:id", admin, roomHandler.Update)
		secured.DELETE("/rooms/:id", admin, roomHandler.Delete)
		secured.POST("/rooms/:id/features/:featureId", admin, roomHandler.AddFeature)
		secured.DELETE("/rooms/:id/features/:featureId", admin, roomHandler.RemoveFeature)
		secured.POST("/rooms/:id/upload-image", admin, roomHandler.UploadImage)

		secured.GET("/features", featureHandler.List)
		secured.GET("/features/:id", featureHandler.Get)
		secured.POST("/features", admin, featureHandler.Create)
		secured.PUT("/features/:id", admin, featureHandler.Update)
		secured.DELETE("/features/:id", admin, featureHandler.Delete)

		// ------------------------------
		// MEETINGS
		// ------------------------------
		RegisterMeetingRoutes(secured, meetingHandler)
		secured.GET("/meetings/count", admin, reportHandler.MeetingCount)
		secured.GET("/meetings/top-rooms", admin, reportHandler.TopRooms)

		// ------------------------------
		// FILES
		// ------------------------------
		secured.GET("/files/meetings/:meetingId/:fileName", fileHandler.MeetingFile)
		secured.GET("/files/action-items/:itemId/:kind/:fileName", fileHandler.ActionItemFile)
		secured.GET("/files/rooms/:roomId/:fileName", fileHandler.RoomImage)
		secured.GET("/files/users/:fileName", fileHandler.ProfileImage)

		// ------------------------------
		// NOTIFICATIONS & AUDIT
		// ------------------------------
		secured.GET("/notifications", notificationHandler.List)
		secured.POST("/notifications", admin, notificationHandler.Create)
		secured.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		secured.DELETE("/notifications/:id", notificationHandler.Delete)

		secured.GET("/audit-logs", admin, auditLogsHandler.List)
	}
}

// RegisterMeetingRoutes mounts the meeting aggregate under g.
func RegisterMeetingRoutes(g *gin.RouterGroup, h *handlers.MeetingHandler) {
	g.GET("/meetings", h.List)
	g.POST("/meetings", h.Create)
	g.POST("/meetings/recurring", h.CreateRecurring)
	g.GET("/meetings/:id", h.Get)
	g.PUT("/meetings/:id", h.Update)
	g.DELETE("/meetings/:id", h.Delete)
	g.PATCH("/meetings/:id/cancel", h.Cancel)
	g.PATCH("/meetings/:id/complete", h.Complete)

	g.POST("/meetings/:id/notes", h.AddNote)
	g.PUT("/meetings/:id/notes/:noteId", h.UpdateNote)
	g.DELETE("/meetings/:id/notes/:noteId", h.DeleteNote)

	g.POST("/meetings/:id/invitees", h.AddInvitee)
	g.PUT("/meetings/:id/invitees/:inviteId/accept", h.AcceptInvite)
	g.PUT("/meetings/:id/invitees/:inviteId/decline", h.DeclineInvite)
	g.DELETE("/meetings/:id/invitees/:inviteId", h.DeleteInvitee)

	g.POST("/meetings/:id/action-items", h.AddActionItem)
	g.PUT("/meetings/:id/action-items/:itemId", h.UpdateActionItem)
	g.PUT("/meetings/:id/action-items/:itemId/toggle-status", h.ToggleActionItem)
	g.PUT("/meetings/:id/action-items/:itemId/accept", h.AcceptActionItem)
	g.PUT("/meetings/:id/action-items/:itemId/reject", h.RejectActionItem)
	g.DELETE("/meetings/:id/action-items/:itemId", h.DeleteActionItem)
	g.POST("/meetings/:id/action-items/:itemId/assignment-attachments", h.ActionItemAttachments(models.AttachmentAssignment))
	g.POST("/meetings/:id/action-items/:itemId/submission-attachments", h.ActionItemAttachments(models.AttachmentSubmission))

	g.POST("/meetings/:id/attachments", h.UploadAttachments)
	g.DELETE("/meetings/:id/attachments/:attachmentId", h.DeleteAttachment)
}
