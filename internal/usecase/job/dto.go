package job

import (
	"time"

	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

type CreateJobRequest struct {
	Company     string `json:"company" form:"company" validate:"required,min=1,max=50"`
	Position    string `json:"position" form:"position" validate:"required,min=1,max=100"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=pending interview declined"`
	JobType     string `json:"jobType" form:"jobType" validate:"omitempty,oneof=full-time part-time remote internship"`
	Location    string `json:"location" form:"location" validate:"omitempty,max=100"`
	Description string `json:"description" form:"description" validate:"omitempty,max=2000"`
}

func (r *CreateJobRequest) Normalize() {
	r.Company = utils.SanitizeString(r.Company)
	r.Position = utils.SanitizeString(r.Position)
	r.Status = utils.SanitizeString(r.Status)
	r.JobType = utils.SanitizeString(r.JobType)
	r.Location = utils.SanitizeString(r.Location)
	r.Description = utils.SanitizeText(r.Description)
}

func (r *CreateJobRequest) ToEntity() *domainJob.Job {
	j := &domainJob.Job{
		Company:     r.Company,
		Position:    r.Position,
		Status:      domainJob.Status(r.Status),
		Type:        domainJob.Type(r.JobType),
		Location:    r.Location,
		Description: r.Description,
	}
	j.ApplyDefaults()
	return j
}

// UpdateJobRequest carries only the fields present in the request body.
type UpdateJobRequest struct {
	Company     *string `json:"company" form:"company" validate:"omitempty,min=1,max=50"`
	Position    *string `json:"position" form:"position" validate:"omitempty,min=1,max=100"`
	Status      *string `json:"status" form:"status" validate:"omitempty,oneof=pending interview declined"`
	JobType     *string `json:"jobType" form:"jobType" validate:"omitempty,oneof=full-time part-time remote internship"`
	Location    *string `json:"location" form:"location" validate:"omitempty,max=100"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=2000"`
}

func (r *UpdateJobRequest) Normalize() {
	for _, field := range []*string{r.Company, r.Position, r.Status, r.JobType, r.Location} {
		if field != nil {
			*field = utils.SanitizeString(*field)
		}
	}
	if r.Description != nil {
		*r.Description = utils.SanitizeText(*r.Description)
	}
}

// ToPatch keys the update by JSON field name.
func (r *UpdateJobRequest) ToPatch() resource.Patch {
	patch := resource.Patch{}
	set := func(field string, value *string) {
		if value != nil {
			patch[field] = *value
		}
	}

	set("company", r.Company)
	set("position", r.Position)
	set("status", r.Status)
	set("jobType", r.JobType)
	set("location", r.Location)
	set("description", r.Description)

	return patch
}

type JobResponse struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Status      string    `json:"status"`
	JobType     string    `json:"jobType"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToJobResponse(j *domainJob.Job) *JobResponse {
	if j == nil {
		return nil
	}
	return &JobResponse{
		ID:          j.ID,
		Company:     j.Company,
		Position:    j.Position,
		Status:      string(j.Status),
		JobType:     string(j.Type),
		Location:    j.Location,
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
