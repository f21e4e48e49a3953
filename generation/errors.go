package generation

import "errors"

var (
	// ErrGeneratorRequired is returned by NewGenerator when no text generator
	// is given.
	ErrGeneratorRequired = errors.New("generation: text generator is required")

	// ErrRetrieverRequired is returned by NewGenerator when no context
	// retriever is given.
	ErrRetrieverRequired = errors.New("generation: context retriever is required")
)
