// Package resource holds the store contract shared by every entity served
// through the generic CRUD handlers.
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// InvalidIDError is returned when an identifier cannot be cast to the store's id type.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q", e.ID)
}

// Patch is a partial update keyed by the entity's JSON field names.
type Patch map[string]any

// Repository is implemented once per entity and store backend.
type Repository[T any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, q *query.Query) ([]*T, error)
	Create(ctx context.Context, entity *T) error
	UpdateByID(ctx context.Context, id string, patch Patch) (*T, error)
	DeleteByID(ctx context.Context, id string) error
}
