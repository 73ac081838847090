package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	domainJob "github.com/dulanjanabandara/job-recommender-system/internal/domain/job"
	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

const jobCollection = "jobs"

type jobDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Company     string        `bson:"company"`
	Position    string        `bson:"position"`
	Status      string        `bson:"status"`
	JobType     string        `bson:"jobType"`
	Location    string        `bson:"location"`
	Description string        `bson:"description,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

type JobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(ctx context.Context, db *DB) (domainJob.Repository, error) {
	collection := db.Collection(jobCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "jobType", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create job indexes: %w", err)
	}

	return &JobRepository{collection: collection}, nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domainJob.Job, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc jobDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return toJobEntity(&doc), nil
}

func (r *JobRepository) Find(ctx context.Context, q *query.Query) ([]*domainJob.Job, error) {
	cursor, err := r.collection.Find(ctx, buildFilter(bson.M{}, q), buildFindOptions(q))
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := make([]*domainJob.Job, 0)
	for cursor.Next(ctx) {
		var doc jobDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, toJobEntity(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

func (r *JobRepository) Create(ctx context.Context, j *domainJob.Job) error {
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	doc := toJobDocument(j)
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return resource.ErrDuplicate
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	j.ID = objectID.Hex()

	return nil
}

func (r *JobRepository) UpdateByID(ctx context.Context, id string, patch resource.Patch) (*domainJob.Job, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for field, value := range patch {
		set[field] = value
	}

	var doc jobDocument
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return toJobEntity(&doc), nil
}

func (r *JobRepository) DeleteByID(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.DeletedCount == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func parseObjectID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, &resource.InvalidIDError{ID: id}
	}
	return objectID, nil
}

func toJobDocument(j *domainJob.Job) *jobDocument {
	return &jobDocument{
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

func toJobEntity(doc *jobDocument) *domainJob.Job {
	return &domainJob.Job{
		ID:          doc.ID.Hex(),
		Company:     doc.Company,
		Position:    doc.Position,
		Status:      domainJob.Status(doc.Status),
		Type:        domainJob.Type(doc.JobType),
		Location:    doc.Location,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
