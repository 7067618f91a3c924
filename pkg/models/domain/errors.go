package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidValue  = errors.New("invalid value")
	ErrAlreadyExists = errors.New("already exists")
)
