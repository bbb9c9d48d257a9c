package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/jwt"
	"photosession/internal/pkg/logger"
	"photosession/internal/pkg/response"
)

// JWTAuth validates the bearer token and puts user_id and role on the
// context for handlers.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}
		if !audit.Role(claims.Role).Valid() {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		l := logger.FromContext(c.Request.Context()).With().
			Int64("user_id", claims.UserID).
			Str("role", claims.Role).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), &l))
		c.Next()
	}
}
