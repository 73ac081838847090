package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/database/postgres/models"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

var jobColumns = columnMap{
	"company":     "company",
	"position":    "position",
	"status":      "status",
	"jobType":     "job_type",
	"location":    "location",
	"description": "description",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// JobRepository implements domain.Job.Repository interface
type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) domainJob.Repository {
	return &JobRepository{db: db}
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domainJob.Job, error) {
	jobID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	var dbModel models.JobModel
	err = r.db.DB.WithContext(ctx).
		Where("id = ?", jobID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return toJobEntity(&dbModel), nil
}

func (r *JobRepository) Find(ctx context.Context, q *query.Query) ([]*domainJob.Job, error) {
	var dbModels []models.JobModel
	tx := applyQuery(r.db.DB.WithContext(ctx).Model(&models.JobModel{}), q, jobColumns)
	if err := tx.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*domainJob.Job, 0, len(dbModels))
	for i := range dbModels {
		jobs = append(jobs, toJobEntity(&dbModels[i]))
	}
	return jobs, nil
}

func (r *JobRepository) Create(ctx context.Context, j *domainJob.Job) error {
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	dbModel := toJobModel(j)
	dbModel.ID = uuid.New()

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return resource.ErrDuplicate
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	j.ID = dbModel.ID.String()
	return nil
}

func (r *JobRepository) UpdateByID(ctx context.Context, id string, patch resource.Patch) (*domainJob.Job, error) {
	jobID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	updates := jobColumns.patch(patch)
	updates["updated_at"] = time.Now().UTC()

	var dbModel models.JobModel
	result := r.db.DB.WithContext(ctx).
		Model(&dbModel).
		Clauses(clause.Returning{}).
		Where("id = ?", jobID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, resource.ErrNotFound
	}

	return toJobEntity(&dbModel), nil
}

func (r *JobRepository) DeleteByID(ctx context.Context, id string) error {
	jobID, err := parseUUID(id)
	if err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).Where("id = ?", jobID).Delete(&models.JobModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, &resource.InvalidIDError{ID: id}
	}
	return parsed, nil
}

func toJobModel(j *domainJob.Job) *models.JobModel {
	return &models.JobModel{
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

func toJobEntity(m *models.JobModel) *domainJob.Job {
	return &domainJob.Job{
		ID:          m.ID.String(),
		Company:     m.Company,
		Position:    m.Position,
		Status:      domainJob.Status(m.Status),
		Type:        domainJob.Type(m.JobType),
		Location:    m.Location,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
