package retrieval

import "errors"

var (
	// ErrNilStore is returned by NewManager when no vector store is given.
	ErrNilStore = errors.New("retrieval: vector store is required")

	// ErrNilEmbedder is returned by NewManager when no embedder is given.
	ErrNilEmbedder = errors.New("retrieval: embedder is required")

	// ErrEmptyQuery is returned when a search is attempted with no query text.
	ErrEmptyQuery = errors.New("retrieval: query text is empty")
)
