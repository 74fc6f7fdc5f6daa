package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrInternal              = errors.New("internal error")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
