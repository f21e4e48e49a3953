package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/poiesic/traingen/ai"
)

// Provider is a test double for ai.Provider. It allows custom behavior
// injection via function fields and records every completion call for test
// assertions. The zero default returns a canned completion, a short scripted
// stream, and deterministic embedding vectors.
type Provider struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (*ai.Completion, error)

	// StreamFunc is called by Stream if set.
	StreamFunc func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error)

	// EmbedFunc is called by Embed and EmbedBatch (per text) if set.
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)

	// Responses, when non-empty, is consumed one element per Complete call.
	// After the last element the final one repeats.
	Responses []string

	// Dim is the dimension of default embedding vectors. Defaults to 1536.
	Dim int

	mu        sync.Mutex
	calls     []Call
	callCount int
	respIndex int
}

// Call records one completion or stream request.
type Call struct {
	Messages []ai.Message
	Options  ai.CallOptions
	Stream   bool
}

// New creates a mock provider.
//
// Returns the concrete type so tests can script behavior and inspect calls.
func New() *Provider {
	return &Provider{}
}

// WithResponses sets the scripted completion responses and returns the
// provider for chaining.
func (p *Provider) WithResponses(responses ...string) *Provider {
	p.Responses = responses
	return p
}

// Name returns "mock".
func (p *Provider) Name() string { return "mock" }

// Model returns "mock-model".
func (p *Provider) Model() string { return "mock-model" }

func (p *Provider) record(messages []ai.Message, opts []ai.CallOption, stream bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callCount++
	p.calls = append(p.calls, Call{
		Messages: messages,
		Options:  ai.ApplyCallOptions(opts),
		Stream:   stream,
	})
}

func (p *Provider) nextResponse() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Responses) == 0 {
		return "mock response"
	}
	resp := p.Responses[p.respIndex]
	if p.respIndex < len(p.Responses)-1 {
		p.respIndex++
	}
	return resp
}

// Complete returns the next scripted response.
func (p *Provider) Complete(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (*ai.Completion, error) {
	p.record(messages, opts, false)

	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, messages, opts...)
	}

	content := p.nextResponse()
	return &ai.Completion{
		Content:      content,
		Model:        p.Model(),
		FinishReason: "stop",
		Usage: ai.Usage{
			PromptTokens:     ai.EstimateTokens(flatten(messages)),
			CompletionTokens: ai.EstimateTokens(content),
			TotalTokens:      ai.EstimateTokens(flatten(messages)) + ai.EstimateTokens(content),
		},
	}, nil
}

// Stream emits the next scripted response in word-sized deltas.
func (p *Provider) Stream(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error) {
	p.record(messages, opts, true)

	if p.StreamFunc != nil {
		return p.StreamFunc(ctx, messages, opts...)
	}

	content := p.nextResponse()
	ch := make(chan ai.StreamEvent, 8)
	go func() {
		defer close(ch)
		// Emit in two halves so consumers exercise accumulation.
		half := len(content) / 2
		for _, piece := range []string{content[:half], content[half:]} {
			if piece == "" {
				continue
			}
			select {
			case <-ctx.Done():
				ch <- ai.StreamEvent{Err: ctx.Err()}
				return
			case ch <- ai.StreamEvent{Content: piece}:
			}
		}
		ch <- ai.StreamEvent{Done: true}
	}()
	return ch, nil
}

// Embed returns a deterministic vector derived from the text hash.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.EmbedFunc != nil {
		return p.EmbedFunc(ctx, text)
	}
	return deterministicVector(text, p.dim()), nil
}

// EmbedBatch returns deterministic vectors for each text.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// CountTokens estimates the token count of text.
func (p *Provider) CountTokens(text string) int {
	return ai.EstimateTokens(text)
}

// ValidateConnection always succeeds.
func (p *Provider) ValidateConnection(ctx context.Context) bool { return true }

// CallCount returns the number of Complete and Stream calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}

// Calls returns a copy of the recorded completion requests.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// LastCall returns the most recent recorded request, or nil.
func (p *Provider) LastCall() *Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	c := p.calls[len(p.calls)-1]
	return &c
}

// Reset clears recorded calls and scripted state.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.callCount = 0
	p.respIndex = 0
}

func (p *Provider) dim() int {
	if p.Dim > 0 {
		return p.Dim
	}
	return 1536
}

func flatten(messages []ai.Message) string {
	total := ""
	for _, m := range messages {
		total += m.Content
	}
	return total
}

// deterministicVector creates a unit-normalized embedding from a text hash,
// so identical text always embeds identically.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%2000)/1000.0 - 1.0
	}

	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		inv := 1.0 / sqrt32(sumSquares)
		for i := range vector {
			vector[i] *= inv
		}
	}
	return vector
}

// sqrt32 is Newton's method on float32, good enough for normalization.
func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 8; i++ {
		z = (z + x/z) / 2
	}
	return z
}
