package reindex

import "errors"

var (
	// ErrStoreRequired is returned when a reindexer is created without a store.
	ErrStoreRequired = errors.New("reindex: store is required")

	// ErrEmbedderRequired is returned when a reindexer is created without an
	// embedder.
	ErrEmbedderRequired = errors.New("reindex: embedder is required")

	// ErrListingUnsupported is returned when the store cannot enumerate a
	// namespace.
	ErrListingUnsupported = errors.New("reindex: store does not support listing")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("reindex: max attempts must be positive")
)
