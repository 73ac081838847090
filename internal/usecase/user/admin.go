package user

import (
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/events"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
)

const ResourceName = "users"

// NewAdminService serves user management through the generic CRUD service.
// Accounts are only created through signup, so there is no create payload.
func NewAdminService(repo domainUser.Repository, publisher events.Publisher) *crud.Service[domainUser.User] {
	return crud.NewService(crud.Definition[domainUser.User]{
		Name:       ResourceName,
		Repository: repo,
		Schema:     domainUser.QuerySchema,
		NewUpdate:  func() crud.UpdatePayload { return &UpdateUserRequest{} },
		ID:         func(u *domainUser.User) string { return u.ID },
		Present:    func(u *domainUser.User) any { return ToUserResponse(u) },
	}, publisher)
}
