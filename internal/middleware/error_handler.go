package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

const msgUnexpected = "Something went very wrong!"

// ErrorHandler is the terminal error formatter. It must be the first middleware
// registered so that it sees every error recorded with c.Error. When
// development is true the raw error text is added to the body.
func ErrorHandler(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, operational := resolve(err)

		if appErr.StatusCode >= http.StatusInternalServerError {
			logger.WithRequestID(GetRequestID(c)).Error("Request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status_code", appErr.StatusCode),
				zap.Error(err),
			)
			report(c, err)
		}

		message := appErr.Message
		if !operational && development {
			message = err.Error()
		}

		var extra gin.H
		if development {
			extra = gin.H{"error": err.Error()}
		}

		utils.ErrorResponse(c, appErr.StatusCode, appErr.Status(), message, extra)
	}
}

// resolve maps err onto an AppError. The second result is false for errors
// nobody anticipated, whose text must not reach production clients.
func resolve(err error) (*appErrors.AppError, bool) {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg := "Invalid input data. " + strings.Join(utils.ValidationMessages(verrs), ". ")
		return appErrors.Validation(msg, err), true
	}

	var invalidID *resource.InvalidIDError
	if errors.As(err, &invalidID) {
		return appErrors.InvalidID(invalidID.ID), true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.NewAppError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", err), true
	}

	switch {
	case errors.Is(err, domainUser.ErrUserAlreadyExists):
		return appErrors.Conflict("Duplicate field value: email. Please use another value!", err), true
	case errors.Is(err, resource.ErrDuplicate):
		return appErrors.BadRequest("Duplicate field value. Please use another value!", err), true
	case errors.Is(err, resource.ErrNotFound):
		return appErrors.NotFound("No document found with that ID"), true
	case errors.Is(err, domainUser.ErrTokenInvalid):
		return appErrors.BadRequest("Token is invalid or has expired", err), true
	}

	return appErrors.Internal(msgUnexpected, err), false
}

func report(c *gin.Context, err error) {
	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", GetRequestID(c))
		scope.SetRequest(c.Request)
	})
	hub.CaptureException(err)
}
