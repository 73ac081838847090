package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes applies when MAX_BODY_BYTES is unset or not positive.
const DefaultMaxBodyBytes = 1 << 20

// BodyLimit caps job and user payloads at maxBytes. A declared oversize body
// is refused before any handler runs; an undeclared one fails when the
// binder reads past the cap. Both surface as a 413 from ErrorHandler.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			_ = c.Error(&http.MaxBytesError{Limit: maxBytes})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
