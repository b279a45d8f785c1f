package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/config"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware verifies the bearer token and stores the caller's id and
// role on the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	key := func(*jwt.Token) (any, error) { return []byte(cfg.JWTSecret), nil }

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing_token", "A bearer token is required.")
			return
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, key); err != nil {
			unauthorized(c, "invalid_token", "Token is invalid or expired.")
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			unauthorized(c, "invalid_token", "Token payload is invalid.")
			return
		}

		c.Set(ContextUserID, actor.UserID)
		c.Set(ContextUserRole, actor.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func actorFromClaims(claims jwt.MapClaims) (access.Actor, bool) {
	sub, err := claims.GetSubject()
	if err != nil {
		return access.Actor{}, false
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return access.Actor{}, false
	}

	roleClaim, _ := claims["role"].(string)
	role, ok := access.ParseRole(roleClaim)
	if !ok {
		return access.Actor{}, false
	}
	return access.Actor{UserID: id, Role: role}, true
}

func unauthorized(c *gin.Context, code, message string) {
	httperr.Unauthorized(c, code, message)
	c.Abort()
}

// RequireRole lets the request through only for one of the given roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextUserRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		httperr.Forbidden(c, "forbidden", "You are not allowed to perform this action.")
		c.Abort()
	}
}
