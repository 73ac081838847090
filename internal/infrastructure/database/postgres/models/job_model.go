package models

import (
	"time"

	"github.com/google/uuid"
)

// JobModel represents the database model for Job
type JobModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Company     string    `gorm:"type:varchar(50);not null"`
	Position    string    `gorm:"type:varchar(100);not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_jobs_status_type"`
	JobType     string    `gorm:"type:varchar(20);not null;default:'full-time';index:idx_jobs_status_type"`
	Location    string    `gorm:"type:varchar(100);not null;default:'my city'"`
	Description string    `gorm:"type:varchar(2000)"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (JobModel) TableName() string {
	return "jobs"
}
