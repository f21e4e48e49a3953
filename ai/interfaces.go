package ai

import "context"

// Provider is a chat-completion and embedding backend. Implementations must
// be thread-safe for concurrent use.
type Provider interface {
	// Name returns the provider identifier, e.g. "openai", "anthropic",
	// "google", "azure".
	Name() string

	// Model returns the chat model identifier this provider was configured
	// with.
	Model() string

	// Complete generates a full completion for the given messages.
	// Per-call options override the provider's configured defaults.
	Complete(ctx context.Context, messages []Message, opts ...CallOption) (*Completion, error)

	// Stream generates a completion incrementally. The returned channel
	// yields text deltas and is closed after the final event, which either
	// has Done set or carries an error. Cancelling ctx terminates the
	// stream.
	Stream(ctx context.Context, messages []Message, opts ...CallOption) (<-chan StreamEvent, error)

	// Embed generates a vector embedding for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The returned
	// slice is parallel to the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// CountTokens estimates the token count of text for the provider's
	// model. Implementations may approximate.
	CountTokens(text string) int
}
