package externalApi

import "errors"

var (
	ErrNotFound      = errors.New("error not found")
	ErrBadStatusCode = errors.New("unexpected status code")
)
