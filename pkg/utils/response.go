package utils

import (
	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// SuccessResponse writes {"status":"success","data":{"data":payload}}.
func SuccessResponse(c *gin.Context, statusCode int, payload any) {
	c.JSON(statusCode, gin.H{
		"status": StatusSuccess,
		"data":   gin.H{"data": payload},
	})
}

// ListResponse is SuccessResponse for collections; it also reports the item count.
func ListResponse[T any](c *gin.Context, statusCode int, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(statusCode, gin.H{
		"status":  StatusSuccess,
		"results": len(items),
		"data":    gin.H{"data": items},
	})
}

// TokenResponse is used by the auth endpoints, which return a signed JWT next to the user.
func TokenResponse(c *gin.Context, statusCode int, token string, user any) {
	c.JSON(statusCode, gin.H{
		"status": StatusSuccess,
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// MessageResponse writes a success envelope without data.
func MessageResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"status":  StatusSuccess,
		"message": message,
	})
}

// ErrorResponse writes the error envelope. Only the terminal error handler should call it.
func ErrorResponse(c *gin.Context, statusCode int, status, message string, extra gin.H) {
	body := gin.H{
		"status":  status,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(statusCode, body)
}
