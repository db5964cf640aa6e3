package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPermissionDeny    = errors.New("permission denied")
	ErrIllegalTransition = errors.New("action not allowed")
	ErrConflict          = errors.New("conflict")
)
