package user

import (
	"strings"

	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

// SignupRequest is validated by the user schema on save, so it carries no
// validate tags of its own.
type SignupRequest struct {
	FirstName       string `json:"firstName" form:"firstName"`
	LastName        string `json:"lastName" form:"lastName"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
}

func (r *SignupRequest) ToEntity() *domainUser.User {
	return domainUser.New(
		utils.SanitizeString(r.FirstName),
		utils.SanitizeString(r.LastName),
		utils.SanitizeEmail(r.Email),
		utils.SanitizePhone(r.Phone),
		r.Password,
		r.PasswordConfirm,
	)
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" form:"passwordCurrent" validate:"required"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
}

// UpdateMeRequest lists the profile fields a user may change on their own
// account. Password fields are bound only to reject them.
type UpdateMeRequest struct {
	FirstName       *string `json:"firstName" form:"firstName" validate:"omitempty,min=2,max=25"`
	LastName        *string `json:"lastName" form:"lastName" validate:"omitempty,min=2,max=25"`
	Email           *string `json:"email" form:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" form:"phone" validate:"omitempty,len=10,mobile_phone"`
	Photo           *string `json:"photo" form:"photo" validate:"omitempty,max=255"`
	Password        *string `json:"password" form:"password"`
	PasswordConfirm *string `json:"passwordConfirm" form:"passwordConfirm"`
}

func (r *UpdateMeRequest) HasPassword() bool {
	return r.Password != nil || r.PasswordConfirm != nil
}

func (r *UpdateMeRequest) Normalize() {
	cleanField(r.FirstName, utils.SanitizeString)
	cleanField(r.LastName, utils.SanitizeString)
	cleanField(r.Email, utils.SanitizeEmail)
	cleanField(r.Phone, utils.SanitizePhone)
	cleanField(r.Photo, utils.SanitizeString)
}

func (r *UpdateMeRequest) ToPatch() resource.Patch {
	patch := resource.Patch{}
	setIfPresent(patch, "firstName", r.FirstName)
	setIfPresent(patch, "lastName", r.LastName)
	setIfPresent(patch, "email", r.Email)
	setIfPresent(patch, "phone", r.Phone)
	setIfPresent(patch, "photo", r.Photo)
	return patch
}

// UpdateUserRequest is the admin update. Passwords are never changed here.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" form:"firstName" validate:"omitempty,min=2,max=25"`
	LastName  *string `json:"lastName" form:"lastName" validate:"omitempty,min=2,max=25"`
	Phone     *string `json:"phone" form:"phone" validate:"omitempty,len=10,mobile_phone"`
	Photo     *string `json:"photo" form:"photo" validate:"omitempty,max=255"`
	Role      *string `json:"role" form:"role" validate:"omitempty,user_role"`
}

func (r *UpdateUserRequest) Normalize() {
	cleanField(r.FirstName, utils.SanitizeString)
	cleanField(r.LastName, utils.SanitizeString)
	cleanField(r.Phone, utils.SanitizePhone)
	cleanField(r.Photo, utils.SanitizeString)
	cleanField(r.Role, strings.ToLower)
}

func (r *UpdateUserRequest) ToPatch() resource.Patch {
	patch := resource.Patch{}
	setIfPresent(patch, "firstName", r.FirstName)
	setIfPresent(patch, "lastName", r.LastName)
	setIfPresent(patch, "phone", r.Phone)
	setIfPresent(patch, "photo", r.Photo)
	setIfPresent(patch, "role", r.Role)
	return patch
}

type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Photo     string `json:"photo"`
	Role      string `json:"role"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Photo:     u.Photo,
		Role:      u.Role,
	}
}

// AuthResult is returned by every flow that signs the user in.
type AuthResult struct {
	Token string
	User  *domainUser.User
}

func cleanField(field *string, clean func(string) string) {
	if field != nil {
		*field = clean(*field)
	}
}

func setIfPresent(patch resource.Patch, key string, value *string) {
	if value != nil {
		patch[key] = *value
	}
}
