package client

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Application errors are *APIError.
var (
	// ErrTransport wraps fetch-level failures: refused, DNS, offline, timeout.
	ErrTransport = errors.New("transport error")
	// ErrDecode is returned when a 2xx body cannot be parsed.
	ErrDecode = errors.New("invalid response from server")
)

// APIError is a non-2xx response. Detail is the body's "detail" field and is
// empty when the body had none.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: HTTP %d", e.Status)
	}
	return fmt.Sprintf("api error: HTTP %d: %s", e.Status, e.Detail)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
