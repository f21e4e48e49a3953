package roleplay

import "errors"

var (
	// ErrChatterRequired is returned when a session is created without an
	// LLM backend.
	ErrChatterRequired = errors.New("roleplay: chatter is required")

	// ErrInvalidConfig is returned when a session config is missing the
	// scenario or the character definition.
	ErrInvalidConfig = errors.New("roleplay: invalid config")

	// ErrSessionComplete is returned when a message is sent to a session
	// that has already finished.
	ErrSessionComplete = errors.New("roleplay: session is complete")

	// ErrEmptyMessage is returned when the learner sends a blank message.
	ErrEmptyMessage = errors.New("roleplay: empty message")
)
