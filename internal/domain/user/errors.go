package user

import "errors"

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTokenInvalid      = errors.New("token is invalid or has expired")
)
