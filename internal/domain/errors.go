package domain

import "errors"

// Failure taxonomy shared by services and mapped to HTTP statuses at the edge.
// Callers test with errors.Is; services wrap these with context.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRejected        = errors.New("rejected")
	ErrInternal        = errors.New("internal failure")
)
