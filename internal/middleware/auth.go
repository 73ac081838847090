package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
)

const (
	UserKey   = "user"
	UserIDKey = "userID"
	RoleKey   = "role"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domainUser.User, error)
}

// AuthMiddleware requires a valid bearer token and stores the authenticated
// user on the context. Rejections are recorded for the error handler.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, user.Role)

		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*domainUser.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domainUser.User)
	return user, ok
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
