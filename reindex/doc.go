// Package reindex re-embeds every indexed vector in a namespace with the
// currently configured embedding model. Switching embedding providers (or
// upgrading a model) invalidates stored vectors; this package walks a
// namespace in batches, embeds each record's source text again, and writes
// the refreshed vectors back.
//
// The package supports batch processing, progress tracking, and retry
// logic with exponential backoff for transient provider failures.
package reindex
