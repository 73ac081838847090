package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
)

// RoleMiddleware lets the request through only when the authenticated user has
// one of allowedRoles. It must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)

		if !slices.Contains(allowedRoles, role) {
			_ = c.Error(appErrors.NewAppError(http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to perform this action", appErrors.ErrInsufficientPermissions))
			c.Abort()
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleAdmin)
}
