package user

import (
	"strings"
	"time"

	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

const (
	RoleUser     = "user"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"

	DefaultPhoto = "default.jpg"

	ResetTokenBytes    = 32
	ResetTokenLifetime = 10 * time.Minute

	// passwordChangedSkew backdates passwordChangedAt so a token signed right
	// after the change still has iat >= passwordChangedAt.
	passwordChangedSkew = time.Second
)

var now = time.Now

// User is an account. Password holds the bcrypt hash once PrepareSave has run;
// PasswordConfirm is only ever set between SetPassword and PrepareSave.
type User struct {
	ID                   string
	FirstName            string
	LastName             string
	Email                string
	Phone                string
	Photo                string
	Role                 string
	Password             string
	PasswordConfirm      string
	CreatedAt            time.Time
	PasswordChangedAt    *time.Time
	PasswordResetToken   string
	PasswordResetExpires *time.Time
	Active               bool

	passwordModified bool
}

// New returns a user with schema defaults applied and the password marked as
// modified, ready for PrepareSave(true).
func New(firstName, lastName, email, phone, password, passwordConfirm string) *User {
	u := &User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		Photo:     DefaultPhoto,
		Role:      RoleUser,
		CreatedAt: now(),
		Active:    true,
	}
	u.SetPassword(password, passwordConfirm)
	return u
}

func (u *User) SetPassword(password, passwordConfirm string) {
	u.Password = password
	u.PasswordConfirm = passwordConfirm
	u.passwordModified = true
}

func (u *User) IsPasswordModified() bool {
	return u.passwordModified
}

type profileRules struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=25"`
	LastName  string `json:"lastName" validate:"required,min=2,max=25"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=10,mobile_phone"`
	Role      string `json:"role" validate:"required,user_role"`
}

type passwordRules struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Validate checks the document against the user schema. The password pair is
// only checked for new users and when the password was modified, since the
// stored hash is not subject to the plaintext rules.
func (u *User) Validate(isNew bool) error {
	if err := utils.ValidateStruct(profileRules{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
	}); err != nil {
		return err
	}

	if !isNew && !u.passwordModified {
		return nil
	}

	return utils.ValidateStruct(passwordRules{
		Password:        u.Password,
		PasswordConfirm: u.PasswordConfirm,
	})
}

// PrepareSave runs the save hooks: normalize, validate, hash a modified
// password and stamp passwordChangedAt on existing users. Repositories call it
// from Create and Save.
func (u *User) PrepareSave(isNew bool) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	if err := u.Validate(isNew); err != nil {
		return err
	}

	if !u.passwordModified {
		return nil
	}

	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.PasswordConfirm = ""

	if !isNew {
		changedAt := now().Add(-passwordChangedSkew)
		u.PasswordChangedAt = &changedAt
	}

	u.passwordModified = false
	return nil
}

// CorrectPassword compares a candidate against a stored bcrypt hash.
func CorrectPassword(candidate, stored string) bool {
	return utils.CheckPassword(stored, candidate)
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at issuedAt (unix seconds).
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt < u.PasswordChangedAt.Unix()
}

// CreatePasswordResetToken stores the hash of a fresh token with its expiry and
// returns the plain token for delivery to the user.
func (u *User) CreatePasswordResetToken() (string, error) {
	token, err := utils.GenerateRandomToken(ResetTokenBytes)
	if err != nil {
		return "", err
	}

	expires := now().Add(ResetTokenLifetime)
	u.PasswordResetToken = utils.HashToken(token)
	u.PasswordResetExpires = &expires

	return token, nil
}

func (u *User) ClearPasswordResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// QuerySchema lists the JSON fields admins may filter, sort and project users by.
var QuerySchema = query.Schema{
	"firstName": query.String,
	"lastName":  query.String,
	"email":     query.String,
	"phone":     query.String,
	"role":      query.String,
	"photo":     query.String,
}
