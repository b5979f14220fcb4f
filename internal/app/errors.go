package service

import "errors"

// Sentinel kinds mapped to HTTP statuses by the API layer.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrQueueFull    = errors.New("ingest queue is full")
	ErrNotStarted   = errors.New("service not started")
	ErrAnalysis     = errors.New("analysis failed")
)

// InputError carries a user-facing message for a rejected request.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Is matches ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(msg string) error { return &InputError{Message: msg} }

// NotFoundError carries a user-facing message for a missing resource.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
