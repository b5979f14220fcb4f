package section

import (
	"errors"
	"fmt"

	"github.com/okian/hackwreck/pkg/client"
)

// User-facing failure texts.
const (
	ConnectionMessage = "Unable to reach the server. Please check your connection and try again."
	FallbackMessage   = "Something went wrong. Please try again."
	InvalidResponse   = "invalid response from server"
	panicMessage      = "unexpected failure"
)

// RejectedError is a 2xx response whose body reports the request was not
// carried out, such as a duplicate archival.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// Message maps a call failure onto the text shown to the user:
//   - transport failures: "Connection error: ..."
//   - API errors: "Error: <detail>", or the fallback when there is no detail
//   - unparseable success bodies: "Error: invalid response from server"
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	var rejected *RejectedError
	switch {
	case errors.Is(err, client.ErrTransport):
		return "Connection error: " + ConnectionMessage
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			return "Error: " + apiErr.Detail
		}
		return "Error: " + FallbackMessage
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return "Error: " + rejected.Message
		}
		return "Error: " + FallbackMessage
	case errors.Is(err, client.ErrDecode):
		return "Error: " + InvalidResponse
	}
	return "Error: " + FallbackMessage
}

func panicError(v any) error {
	return fmt.Errorf("%s: %v", panicMessage, v)
}
