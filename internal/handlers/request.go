package handlers

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/middleware"
	"github.com/BruksfildServices01/meeting-rooms/internal/timezone"
)

// actorFrom reads the caller set by AuthMiddleware.
func actorFrom(c *gin.Context) access.Actor {
	id, _ := c.Get(middleware.ContextUserID)
	role, _ := c.Get(middleware.ContextUserRole)

	a := access.Actor{}
	a.UserID, _ = id.(uuid.UUID)
	a.Role, _ = role.(access.Role)
	return a
}

// uuidParam parses a path parameter, answering 400 when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.BadRequest(c, "invalid_"+strings.ToLower(name), "Invalid "+name+".")
		return uuid.Nil, false
	}
	return id, true
}

func invalidRequest(c *gin.Context, err error) {
	httperr.BadRequest(c, "invalid_request", err.Error())
}

// parseTimeOrDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseTimeOrDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(timezone.DayLayout, s)
}

func optionalTime(c *gin.Context, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, err := parseTimeOrDate(v)
	if err != nil {
		httperr.BadRequest(c, "invalid_"+key, "Invalid "+key+".")
		return nil, false
	}
	return &t, true
}

func pagination(c *gin.Context, defSize, maxSize int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defSize)))
	if size <= 0 || size > maxSize {
		size = defSize
	}
	return page, size
}

// formFiles returns the uploaded parts under the "files" field.
func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form.File["files"], nil
}
