package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusinessError_UnwrapsToKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NotFoundErr("meeting_not_found", "Meeting not found."), ErrNotFound},
		{"forbidden", ForbiddenErr("forbidden", ""), ErrForbidden},
		{"invalid", InvalidErr("invalid_time_range", ""), ErrInvalidInput},
		{"conflict", ConflictErr("room_already_booked", ""), ErrConflict},
		{"legacy business", ErrBusiness("invalid_state"), ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("wrapped: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("ctx: %w", ConflictErr("room_already_booked", "busy"))

	assert.True(t, IsBusiness(err, "room_already_booked"))
	assert.False(t, IsBusiness(err, "other"))
	assert.False(t, IsBusiness(errors.New("plain"), "room_already_booked"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestPostgresClassification(t *testing.T) {
	excl := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"})
	uniq := &pgconn.PgError{Code: "23505"}

	assert.True(t, IsExclusionConflict(excl))
	assert.False(t, IsExclusionConflict(uniq))
	assert.True(t, IsUniqueViolation(uniq))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"not found", NotFoundErr("meeting_not_found", "Meeting not found."), http.StatusNotFound, "meeting_not_found"},
		{"forbidden", ForbiddenErr("forbidden", "nope"), http.StatusForbidden, "forbidden"},
		{"invalid", InvalidErr("room_full", ""), http.StatusBadRequest, "room_full"},
		{"conflict", ConflictErr("room_already_booked", ""), http.StatusConflict, "room_already_booked"},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) {
				Respond(c, zap.NewNop(), tt.err)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.expectedCode, w.Code)

			var body HTTPError
			require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body.Code)
			assert.NotContains(t, body.Message, "connection reset")
		})
	}
}
