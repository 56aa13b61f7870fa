package domain

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrVersionConflict   = errors.New("version conflict")
	ErrRemoteUnavailable = errors.New("remote unavailable")
)
