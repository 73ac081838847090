package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

// Factory turns a crud.Service into the five standard gin handlers. Every
// error is recorded on the context and rendered by the error middleware.
type Factory[T any] struct {
	service *crud.Service[T]
	present func(*T) any
}

func NewFactory[T any](service *crud.Service[T]) *Factory[T] {
	present := service.Definition().Present
	if present == nil {
		present = func(entity *T) any { return entity }
	}
	return &Factory[T]{service: service, present: present}
}

func (f *Factory[T]) GetOne(c *gin.Context) {
	entity, err := f.service.GetOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, f.present(entity))
}

func (f *Factory[T]) GetAll(c *gin.Context) {
	entities, err := f.service.GetAll(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	items := make([]any, 0, len(entities))
	for _, entity := range entities {
		items = append(items, f.present(entity))
	}
	utils.ListResponse(c, http.StatusOK, items)
}

func (f *Factory[T]) CreateOne(c *gin.Context) {
	newCreate := f.service.Definition().NewCreate
	if newCreate == nil {
		_ = c.Error(appErrors.NewAppError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "This route does not create documents.", nil))
		return
	}

	payload := newCreate()
	if err := bind(c, payload); err != nil {
		_ = c.Error(err)
		return
	}

	entity, err := f.service.CreateOne(c.Request.Context(), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, f.present(entity))
}

func (f *Factory[T]) UpdateOne(c *gin.Context) {
	newUpdate := f.service.Definition().NewUpdate
	if newUpdate == nil {
		_ = c.Error(appErrors.NewAppError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "This route does not update documents.", nil))
		return
	}

	payload := newUpdate()
	if err := bind(c, payload); err != nil {
		_ = c.Error(err)
		return
	}

	entity, err := f.service.UpdateOne(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, f.present(entity))
}

func (f *Factory[T]) DeleteOne(c *gin.Context) {
	if err := f.service.DeleteOne(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bind decodes a JSON or url-encoded body into payload, picking the decoder by
// Content-Type. An empty body leaves payload untouched.
func bind(c *gin.Context, payload any) error {
	err := c.ShouldBind(payload)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return appErrors.BadRequest("Invalid request body", err)
}
