package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrEmptyDescription   = errors.New("description must not be empty")
	ErrWeakDescription    = errors.New("description is too short or a placeholder")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrDuplicateColumn    = errors.New("duplicate column name")
	ErrUpstreamTimeout    = errors.New("upstream request timed out")
)
