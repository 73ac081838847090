package job

import (
	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	"github.com/dulanjanabandara/job-recommender-system/internal/events"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
)

const ResourceName = "jobs"

// NewService wires the job repository into the generic CRUD service.
func NewService(repo domainJob.Repository, publisher events.Publisher) *crud.Service[domainJob.Job] {
	return crud.NewService(crud.Definition[domainJob.Job]{
		Name:       ResourceName,
		Repository: repo,
		Schema:     domainJob.QuerySchema,
		NewCreate:  func() crud.CreatePayload[domainJob.Job] { return &CreateJobRequest{} },
		NewUpdate:  func() crud.UpdatePayload { return &UpdateJobRequest{} },
		ID:         func(j *domainJob.Job) string { return j.ID },
		Present:    func(j *domainJob.Job) any { return ToJobResponse(j) },
	}, publisher)
}
