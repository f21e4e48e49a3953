package storage

import "context"

// Record is a vector with its metadata, addressed by ID within a namespace.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// Match is one query result. Text is pulled out of the metadata "text" key
// when present, since retrieval almost always wants it.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
	Text     string
}

// Filter restricts a query to records whose metadata matches every key
// exactly.
type Filter map[string]any

// Store is a namespaced vector database. Implementations must be thread-safe
// and support concurrent access.
type Store interface {
	// CreateNamespace ensures a namespace exists. Creating an existing
	// namespace is a no-op; backends that create namespaces implicitly on
	// upsert may treat this as one too.
	CreateNamespace(ctx context.Context, name string) error

	// DeleteNamespace removes a namespace and everything in it. Deleting a
	// missing namespace is a no-op.
	DeleteNamespace(ctx context.Context, name string) error

	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, namespace string, records []Record) error

	// Query returns the topK records most similar to the vector, highest
	// score first. A nil filter matches everything. Scores are cosine
	// similarity when the backend computes locally; remote backends report
	// their native metric.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]Match, error)

	// Delete removes records by ID. Missing IDs are ignored.
	Delete(ctx context.Context, namespace string, ids []string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Lister is an optional Store capability: enumeration of every record in a
// namespace. Bulk maintenance jobs such as re-embedding require it.
type Lister interface {
	// List returns all records in the namespace. An unknown namespace
	// yields an empty slice.
	List(ctx context.Context, namespace string) ([]Record, error)
}
