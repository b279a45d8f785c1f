package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/meeting-rooms/internal/config"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
)

var testCfg = &config.Config{JWTSecret: "test-secret"}

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testCfg))
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := c.Get(ContextUserID)
		role, _ := c.Get(ContextUserRole)
		c.JSON(http.StatusOK, gin.H{"id": id.(uuid.UUID).String(), "role": string(role.(access.Role))})
	})
	r.GET("/admin", RequireRole(access.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func call(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	id := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, []byte(testCfg.JWTSecret), jwt.MapClaims{
		"sub":  id.String(),
		"role": "employee",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := call(newAuthRouter(), "/whoami", "bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body["id"])
	assert.Equal(t, "Employee", body["role"])
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	secret := []byte(testCfg.JWTSecret)
	valid := jwt.MapClaims{"sub": uuid.NewString(), "role": "Admin", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "missing_token"},
		{"wrong scheme", "Basic abc", "missing_token"},
		{"empty token", "Bearer ", "missing_token"},
		{"garbage", "Bearer not-a-jwt", "invalid_token"},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid), "invalid_token"},
		{"wrong method", "Bearer " + sign(t, jwt.SigningMethodHS512, secret, valid), "invalid_token"},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": uuid.NewString(), "role": "Admin", "exp": time.Now().Add(-time.Minute).Unix(),
		}), "invalid_token"},
		{"no exp", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": uuid.NewString(), "role": "Admin",
		}), "invalid_token"},
		{"bad subject", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": "42", "role": "Admin", "exp": time.Now().Add(time.Hour).Unix(),
		}), "invalid_token"},
		{"unknown role", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
			"sub": uuid.NewString(), "role": "Root", "exp": time.Now().Add(time.Hour).Unix(),
		}), "invalid_token"},
	}

	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(r, "/whoami", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body httperr.HTTPError
			require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()
	claims := func(role string) jwt.MapClaims {
		return jwt.MapClaims{"sub": uuid.NewString(), "role": role, "exp": time.Now().Add(time.Hour).Unix()}
	}
	secret := []byte(testCfg.JWTSecret)

	w := call(r, "/admin", "Bearer "+sign(t, jwt.SigningMethodHS256, secret, claims("Admin")))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(r, "/admin", "Bearer "+sign(t, jwt.SigningMethodHS256, secret, claims("Guest")))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
