package user

import (
	"context"
	"time"

	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// Repository persists users. Create runs PrepareSave(true). Every lookup skips users with Active == false and
// returns resource.ErrNotFound for them. Methods without a WithPassword suffix
// leave Password empty.
type Repository interface {
	resource.Repository[User]

	FindByEmailWithPassword(ctx context.Context, email string) (*User, error)
	FindByIDWithPassword(ctx context.Context, id string) (*User, error)
	// FindByResetToken matches the stored token hash with an expiry after now.
	FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*User, error)
	// Save runs PrepareSave(false) and writes every field of u.
	Save(ctx context.Context, u *User) error
	Deactivate(ctx context.Context, id string) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
