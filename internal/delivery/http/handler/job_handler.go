package handler

import (
	"github.com/gin-gonic/gin"

	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
)

type JobHandler struct {
	*Factory[domainJob.Job]
}

func NewJobHandler(service *crud.Service[domainJob.Job]) *JobHandler {
	return &JobHandler{Factory: NewFactory(service)}
}

func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/jobs")
	{
		jobs.GET("", h.GetAll)
		jobs.POST("", h.CreateOne)
		jobs.GET("/:id", h.GetOne)
		jobs.PATCH("/:id", h.UpdateOne)
		jobs.PUT("/:id", h.UpdateOne)
		jobs.DELETE("/:id", h.DeleteOne)
	}
}
