package ingestion

import "errors"

var (
	// ErrUnsupportedFileType indicates the document's extension has no extractor.
	ErrUnsupportedFileType = errors.New("ingestion: unsupported file type")

	// ErrEmptyDocument indicates the document contained no extractable text.
	ErrEmptyDocument = errors.New("ingestion: document has no extractable text")

	// ErrIndexerRequired indicates NewPipeline was called without an indexer.
	ErrIndexerRequired = errors.New("ingestion: indexer is required")
)
