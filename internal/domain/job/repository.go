package job

import "github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"

// Repository persists jobs. Deletes are hard deletes.
type Repository interface {
	resource.Repository[Job]
}
