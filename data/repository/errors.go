package repository

import "errors"

// Errors returned by repository implementations in place of driver-specific ones.
var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
)
