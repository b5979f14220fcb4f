package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrFull is returned by callers that turn a rejected Enqueue into an error.
	ErrFull = errors.New("ingest queue is full")
	// ErrClosed is returned once the queue stops accepting tasks.
	ErrClosed = errors.New("ingest queue is closed")
)
