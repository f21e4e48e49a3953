package ai

import "github.com/poiesic/traingen/core"

// Message is a single role-tagged message sent to a provider.
type Message struct {
	Role    core.Role `json:"role"`
	Content string    `json:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: core.RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: core.RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: core.RoleAssistant, Content: content}
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Completion is the result of a non-streaming completion call.
type Completion struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
}

// StreamEvent is one element of a streaming completion. Content carries the
// incremental text delta. Err is non-nil on the final event when the stream
// failed; Done marks normal completion. After Done or Err the channel is
// closed.
type StreamEvent struct {
	Content string
	Done    bool
	Err     error
}

// CallOptions are per-call overrides applied on top of a provider's
// configured defaults. Pointer fields distinguish "not set" from zero: a
// temperature of 0 is a meaningful request for deterministic output.
type CallOptions struct {
	Temperature   *float64
	MaxTokens     *int
	TopP          *float64
	StopSequences []string
	SystemPrompt  string
	JSONMode      bool
}

// CallOption is a functional option for a single completion call.
type CallOption func(*CallOptions)

// WithTemperature overrides the sampling temperature for this call.
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = &t
	}
}

// WithMaxTokens overrides the response token limit for this call.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = &n
	}
}

// WithTopP overrides nucleus sampling for this call.
func WithTopP(p float64) CallOption {
	return func(o *CallOptions) {
		o.TopP = &p
	}
}

// WithStopSequences sets sequences that end generation for this call.
func WithStopSequences(sequences ...string) CallOption {
	return func(o *CallOptions) {
		o.StopSequences = sequences
	}
}

// WithSystemPrompt sets the system prompt for this call, taking precedence
// over any system-role message in the conversation.
func WithSystemPrompt(prompt string) CallOption {
	return func(o *CallOptions) {
		o.SystemPrompt = prompt
	}
}

// WithJSONMode requests structured JSON output where the provider supports
// it. Providers without a native JSON mode rely on prompt instructions.
func WithJSONMode() CallOption {
	return func(o *CallOptions) {
		o.JSONMode = true
	}
}

// ApplyCallOptions folds a set of options into a CallOptions value.
func ApplyCallOptions(opts []CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EstimateTokens returns a rough token count for text, assuming roughly four
// characters per token. Used for budget decisions, never for billing.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
