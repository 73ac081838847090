// Package crud implements get-one, get-all, create, update and delete once for
// every entity served over HTTP.
package crud

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	"github.com/dulanjanabandara/job-recommender-system/internal/events"
	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

const notFoundMessage = "No document found with that ID"

// CreatePayload is a bound request body that can become a new entity.
type CreatePayload[T any] interface {
	ToEntity() *T
}

// UpdatePayload is a bound request body holding only the fields to change.
type UpdatePayload interface {
	ToPatch() resource.Patch
}

// Normalizer is implemented by payloads that clean their fields (trimming,
// stripping markup) before validation.
type Normalizer interface {
	Normalize()
}

// Definition binds an entity to its store and request/response shapes.
type Definition[T any] struct {
	// Name is the plural resource name used for events and logs, e.g. "jobs".
	Name       string
	Repository resource.Repository[T]
	Schema     query.Schema
	// NewCreate and NewUpdate return fresh payloads to bind into. A nil
	// constructor disables the operation.
	NewCreate func() CreatePayload[T]
	NewUpdate func() UpdatePayload
	ID        func(*T) string
	Present   func(*T) any
}

type Service[T any] struct {
	def       Definition[T]
	publisher events.Publisher
	log       *zap.Logger
}

func NewService[T any](def Definition[T], publisher events.Publisher) *Service[T] {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service[T]{
		def:       def,
		publisher: publisher,
		log:       logger.Named(def.Name),
	}
}

func (s *Service[T]) Definition() Definition[T] {
	return s.def
}

func (s *Service[T]) GetOne(ctx context.Context, id string) (*T, error) {
	entity, err := s.def.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return entity, nil
}

func (s *Service[T]) GetAll(ctx context.Context, values url.Values) ([]*T, error) {
	q, err := query.Parse(values, s.def.Schema)
	if err != nil {
		return nil, appErrors.BadRequest(err.Error(), err)
	}

	entities, err := s.def.Repository.Find(ctx, q)
	if err != nil {
		return nil, translate(err)
	}
	return entities, nil
}

func (s *Service[T]) CreateOne(ctx context.Context, payload CreatePayload[T]) (*T, error) {
	if err := validate(payload); err != nil {
		return nil, err
	}

	entity := payload.ToEntity()
	if err := s.def.Repository.Create(ctx, entity); err != nil {
		return nil, translate(err)
	}

	s.publish(ctx, events.ActionCreated, entity)
	return entity, nil
}

func (s *Service[T]) UpdateOne(ctx context.Context, id string, payload UpdatePayload) (*T, error) {
	if err := validate(payload); err != nil {
		return nil, err
	}

	patch := payload.ToPatch()
	if len(patch) == 0 {
		return nil, appErrors.BadRequest("Please provide at least one field to update.", appErrors.ErrEmptyUpdate)
	}

	entity, err := s.def.Repository.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, translate(err)
	}

	s.publish(ctx, events.ActionUpdated, entity)
	return entity, nil
}

func (s *Service[T]) DeleteOne(ctx context.Context, id string) error {
	if err := s.def.Repository.DeleteByID(ctx, id); err != nil {
		return translate(err)
	}

	if err := s.publisher.Publish(ctx, events.Event{Resource: s.def.Name, Action: events.ActionDeleted, ID: id}); err != nil {
		s.log.Warn("Failed to publish event", zap.String("action", string(events.ActionDeleted)), zap.Error(err))
	}
	return nil
}

// publish is best effort; the store write has already succeeded.
func (s *Service[T]) publish(ctx context.Context, action events.Action, entity *T) {
	event := events.Event{
		Resource: s.def.Name,
		Action:   action,
		ID:       s.def.ID(entity),
		Data:     s.def.Present(entity),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish event",
			zap.String("action", string(action)),
			zap.String("id", event.ID),
			zap.Error(err),
		)
	}
}

func validate(payload any) error {
	if n, ok := payload.(Normalizer); ok {
		n.Normalize()
	}
	return utils.ValidateStruct(payload)
}

func translate(err error) error {
	var invalid *resource.InvalidIDError
	switch {
	case errors.Is(err, resource.ErrNotFound):
		return appErrors.NotFound(notFoundMessage)
	case errors.As(err, &invalid):
		return appErrors.InvalidID(invalid.ID)
	default:
		return err
	}
}
