package readaloud

import "errors"

var (
	// ErrNoPlayer is returned when no player command is configured.
	ErrNoPlayer = errors.New("no audio player configured")
	// ErrPlayback wraps failures to start playback.
	ErrPlayback = errors.New("playback failed")
)
