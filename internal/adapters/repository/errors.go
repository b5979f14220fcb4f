package repository

import "errors"

// Sentinel kinds for catalogue errors.
var (
	ErrNotFound      = errors.New("project not found")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrUnknownDriver = errors.New("unknown database driver")
)
