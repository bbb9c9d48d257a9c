package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/response"
)

// RequireRole lets the request through when the token role is one of roles.
func RequireRole(roles ...audit.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		s, _ := role.(string)
		if !slices.Contains(roles, audit.Role(s)) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(audit.RoleAdmin)
}
