package user

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

func newValidUser() *User {
	return New("Ada", "Lovelace", "  Ada@Example.COM ", "7123456789", "password123", "password123")
}

func TestNewAppliesDefaults(t *testing.T) {
	u := newValidUser()

	assert.Equal(t, DefaultPhoto, u.Photo)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.Active)
	assert.False(t, u.CreatedAt.IsZero())
	assert.True(t, u.IsPasswordModified())
}

func TestPrepareSaveNewUser(t *testing.T) {
	u := newValidUser()

	require.NoError(t, u.PrepareSave(true))

	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, CorrectPassword("password123", u.Password))
	assert.Empty(t, u.PasswordConfirm)
	assert.Nil(t, u.PasswordChangedAt, "creation must not stamp passwordChangedAt")
	assert.False(t, u.IsPasswordModified())
}

func TestPrepareSavePasswordChange(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	u := newValidUser()
	require.NoError(t, u.PrepareSave(true))
	firstHash := u.Password

	u.SetPassword("newpassword", "newpassword")
	require.NoError(t, u.PrepareSave(false))

	require.NotNil(t, u.PasswordChangedAt)
	assert.Equal(t, fixed.Add(-time.Second), *u.PasswordChangedAt)
	assert.NotEqual(t, firstHash, u.Password)
	assert.True(t, CorrectPassword("newpassword", u.Password))
}

func TestPrepareSaveWithoutPasswordChangeKeepsHash(t *testing.T) {
	u := newValidUser()
	require.NoError(t, u.PrepareSave(true))
	hash := u.Password

	u.FirstName = "Augusta"
	require.NoError(t, u.PrepareSave(false))

	assert.Equal(t, hash, u.Password)
	assert.Nil(t, u.PasswordChangedAt)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*User)
		tag    string
	}{
		{"short first name", func(u *User) { u.FirstName = "A" }, "min"},
		{"long last name", func(u *User) { u.LastName = "abcdefghijklmnopqrstuvwxyz" }, "max"},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, "email"},
		{"phone length", func(u *User) { u.Phone = "12345" }, "len"},
		{"phone format", func(u *User) { u.Phone = "0012345678" }, "mobile_phone"},
		{"unknown role", func(u *User) { u.Role = "root" }, "user_role"},
		{"short password", func(u *User) { u.SetPassword("short", "short") }, "min"},
		{"missing confirm", func(u *User) { u.SetPassword("password123", "") }, "required"},
		{"confirm mismatch", func(u *User) { u.SetPassword("password123", "password124") }, "eqfield"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newValidUser()
			u.Email = "ada@example.com"
			tt.mutate(u)

			err := u.Validate(true)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.tag, verrs[0].Tag())
		})
	}
}

func TestValidateAcceptsLocalPhoneNumbers(t *testing.T) {
	for _, phone := range []string{"0771234567", "0712345678", "7123456789"} {
		u := New("Ada", "Lovelace", "ada@example.com", phone, "password123", "password123")
		assert.NoError(t, u.Validate(true), phone)
	}
}

func TestValidateSkipsPasswordWhenUnmodified(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "7123456789", Role: RoleAdmin, Password: "$2a$12$hash"}
	assert.NoError(t, u.Validate(false))
}

func TestChangedPasswordAfter(t *testing.T) {
	u := newValidUser()
	assert.False(t, u.ChangedPasswordAfter(time.Now().Unix()), "never changed")

	changed := time.Unix(1_700_000_000, 0)
	u.PasswordChangedAt = &changed

	assert.True(t, u.ChangedPasswordAfter(changed.Unix()-1))
	assert.False(t, u.ChangedPasswordAfter(changed.Unix()))
	assert.False(t, u.ChangedPasswordAfter(changed.Unix()+60))
}

func TestCreatePasswordResetToken(t *testing.T) {
	u := newValidUser()
	before := time.Now()

	token, err := u.CreatePasswordResetToken()
	require.NoError(t, err)

	assert.Len(t, token, ResetTokenBytes*2)
	assert.Equal(t, utils.HashToken(token), u.PasswordResetToken)
	require.NotNil(t, u.PasswordResetExpires)
	assert.WithinDuration(t, before.Add(ResetTokenLifetime), *u.PasswordResetExpires, time.Second)

	u.ClearPasswordResetToken()
	assert.Empty(t, u.PasswordResetToken)
	assert.Nil(t, u.PasswordResetExpires)
}
