package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// opError records the operation that failed, its kind and the underlying
// cause. errors.Is matches both the kind and the cause.
type opError struct {
	Op    string
	Kind  error
	cause error
}

func (e *opError) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *opError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

// NewKind tags a sentinel with the operation that produced it.
func NewKind(op string, kind error) error {
	return &opError{Op: op, Kind: kind}
}

// WrapKind tags cause with op and a sentinel kind.
func WrapKind(op string, kind, cause error) error {
	return &opError{Op: op, Kind: kind, cause: cause}
}

// Wrap annotates cause with op, keeping its own kind. A nil cause stays nil.
func Wrap(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &opError{Op: op, Kind: cause}
}
