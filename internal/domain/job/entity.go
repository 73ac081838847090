package job

import (
	"time"

	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

// Status tracks where an application stands.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInterview Status = "interview"
	StatusDeclined  Status = "declined"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInterview, StatusDeclined:
		return true
	}
	return false
}

type Type string

const (
	TypeFullTime   Type = "full-time"
	TypePartTime   Type = "part-time"
	TypeRemote     Type = "remote"
	TypeInternship Type = "internship"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeRemote, TypeInternship:
		return true
	}
	return false
}

const DefaultLocation = "my city"

type Job struct {
	ID          string
	Company     string
	Position    string
	Status      Status
	Type        Type
	Location    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDefaults fills the optional fields a new job was created without.
func (j *Job) ApplyDefaults() {
	if j.Status == "" {
		j.Status = StatusPending
	}
	if j.Type == "" {
		j.Type = TypeFullTime
	}
	if j.Location == "" {
		j.Location = DefaultLocation
	}
}

// QuerySchema lists the JSON fields clients may filter, sort and project jobs by.
var QuerySchema = query.Schema{
	"company":     query.String,
	"position":    query.String,
	"status":      query.String,
	"jobType":     query.String,
	"location":    query.String,
	"description": query.String,
	"createdAt":   query.Time,
	"updatedAt":   query.Time,
}
