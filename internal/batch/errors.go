package batch

import "errors"

// Sentinel errors for manifest loading and runs.
var (
	ErrEmptyManifest = errors.New("manifest contains no entries")
	ErrParse         = errors.New("parse manifest")
	ErrTimeout       = errors.New("batch did not finish in time")
)
