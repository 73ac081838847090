package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
)

// Recovery turns a panic into a recorded error so the terminal formatter
// answers with a 500 instead of dropping the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			logger.WithRequestID(GetRequestID(c)).Error("Panic recovered",
				zap.Any("panic", recovered),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)

			_ = c.Error(fmt.Errorf("panic: %v", recovered))
			c.Abort()
		}()

		c.Next()
	}
}
