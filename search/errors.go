package search

import "errors"

var (
	// ErrRetrieverRequired is returned when a content retriever is not provided.
	ErrRetrieverRequired = errors.New("search: content retriever required")
)
