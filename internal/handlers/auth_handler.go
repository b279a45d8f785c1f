package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/config"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/dto"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/httpresp"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	"github.com/BruksfildServices01/meeting-rooms/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  *audit.Dispatcher
	log    *zap.Logger

	// emailDomainOK is swapped in tests to avoid DNS lookups.
	emailDomainOK func(string) bool
	now           func() time.Time
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, audit *audit.Dispatcher, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:            db,
		config:        cfg,
		audit:         audit,
		log:           log,
		emailDomainOK: validators.IsEmailDomainValid,
		now:           time.Now,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	role, ok := access.ParseRole(req.Role)
	if !ok || role == access.RoleAdmin {
		httperr.BadRequest(c, "invalid_role", "Role must be Employee or Guest.")
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !validators.IsEmailSyntaxValid(email) {
		httperr.BadRequest(c, "invalid_email", "Email is not a valid address.")
		return
	}
	if !h.emailDomainOK(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	if count > 0 {
		httperr.Conflict(c, "email_already_registered", "A user with this email already exists.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	now := h.now()
	user := models.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         string(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Conflict(c, "email_already_registered", "A user with this email already exists.")
			return
		}
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "user_registered", "user", user.ID, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})

	httpresp.Created(c, dto.User(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	var user models.User
	if err := h.db.
		Where("email = ?", validators.NormalizeEmail(req.Email)).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		httperr.Respond(c, h.log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"user":  dto.User(user),
		"token": token,
	})
}

func (h *AuthHandler) UpdateRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	role, ok := access.ParseRole(req.Role)
	if !ok {
		httperr.BadRequest(c, "invalid_role", "Role must be Admin, Employee or Guest.")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}

	if user.Role == string(role) {
		httperr.BadRequest(c, "role_unchanged", "User already has this role.")
		return
	}

	previous := user.Role
	user.Role = string(role)
	user.UpdatedAt = h.now()
	if err := h.db.Model(&user).Select("role", "updated_at").Updates(&user).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actorFrom(c), "user_role_changed", "user", user.ID, map[string]any{
		"from": previous,
		"to":   user.Role,
	})

	httpresp.OK(c, dto.User(user))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor := actorFrom(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		httperr.BadRequest(c, "password_mismatch", "New password and confirmation do not match.")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", actor.UserID).Error; err != nil {
		httperr.Respond(c, h.log, userLookupErr(err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httperr.BadRequest(c, "invalid_current_password", "Current password is incorrect.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	if err := h.db.Model(&user).Updates(map[string]any{
		"password_hash": string(hashed),
		"updated_at":    h.now(),
	}).Error; err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	writeAudit(h.audit, actor, "password_changed", "user", user.ID, nil)

	httpresp.NoContent(c)
}

func (h *AuthHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	res := h.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		httperr.Respond(c, h.log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, h.log, errUserNotFound)
		return
	}

	writeAudit(h.audit, actorFrom(c), "user_deleted", "user", id, nil)

	httpresp.NoContent(c)
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := h.now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"role":      user.Role,
		"exp":       now.Add(h.config.JWTTTL).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

var errUserNotFound = httperr.NotFoundErr("user_not_found", "User not found.")

func userLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errUserNotFound
	}
	return err
}
