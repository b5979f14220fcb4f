package llm

import "errors"

var (
	// ErrNoAPIKey is returned when no Gemini key is configured.
	ErrNoAPIKey = errors.New("gemini api key is not configured")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrMalformedJSON is returned when a structured answer cannot be decoded.
	ErrMalformedJSON = errors.New("model returned malformed JSON")
	// ErrNoAudio is returned when a speech response carries no audio part.
	ErrNoAudio = errors.New("speech response contained no audio")
)
