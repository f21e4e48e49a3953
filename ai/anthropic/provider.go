// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/traingen/ai"
	"github.com/poiesic/traingen/core"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
)

// ErrEmbeddingsUnsupported is returned from the embedding methods; the
// Messages API has no embedding endpoint, so embedding traffic must be routed
// to a different provider.
var ErrEmbeddingsUnsupported = errors.New("anthropic does not support embeddings; route embedding tasks to another provider")

// Provider implements ai.Provider against the Anthropic Messages API.
type Provider struct {
	config  *ai.Config
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates an Anthropic provider from the configuration.
//
// Returns the ai.Provider interface to enforce abstraction.
func New(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		config:  config,
		baseURL: baseURL,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  slog.Default().With("component", "anthropic-provider", "model", config.Model),
	}, nil
}

// Name returns "anthropic".
func (p *Provider) Name() string {
	return p.config.Provider
}

// Model returns the chat model identifier.
func (p *Provider) Model() string {
	return p.config.Model
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model         string        `json:"model"`
	Messages      []wireMessage `json:"messages"`
	System        string        `json:"system,omitempty"`
	MaxTokens     int           `json:"max_tokens"`
	Temperature   float64       `json:"temperature"`
	TopP          float64       `json:"top_p,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
	Stream        bool          `json:"stream,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// splitSystem separates the system prompt from the conversation turns.
// The Messages API takes the system prompt as a top-level field and accepts
// only user/assistant roles in the messages array. When several system
// messages are present the last one wins, matching how a rolling prompt is
// rebuilt each turn.
func splitSystem(messages []ai.Message) (string, []wireMessage) {
	var system string
	turns := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			system = m.Content
			continue
		}
		turns = append(turns, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	return system, turns
}

func (p *Provider) buildRequest(messages []ai.Message, opts []ai.CallOption, stream bool) messagesRequest {
	o := ai.ApplyCallOptions(opts)
	system, turns := splitSystem(messages)

	req := messagesRequest{
		Model:       p.config.Model,
		Messages:    turns,
		System:      system,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
		Stream:      stream,
	}
	if o.SystemPrompt != "" {
		req.System = o.SystemPrompt
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		req.MaxTokens = *o.MaxTokens
	}
	if o.TopP != nil {
		req.TopP = *o.TopP
	}
	if len(o.StopSequences) > 0 {
		req.StopSequences = o.StopSequences
	}
	return req
}

func (p *Provider) post(ctx context.Context, body messagesRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		var errBody apiErrorBody
		msg := ""
		if err := json.Unmarshal(raw, &errBody); err == nil {
			msg = errBody.Error.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, ai.NewAPIError("anthropic", resp.StatusCode, msg)
	}
	return resp, nil
}

// Complete generates a full completion.
func (p *Provider) Complete(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (*ai.Completion, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	resp, err := p.post(ctx, p.buildRequest(messages, opts, false))
	if err != nil {
		p.logger.Error("completion request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, ai.ErrEmptyResponse
	}

	return &ai.Completion{
		Content:      sb.String(),
		Model:        parsed.Model,
		FinishReason: mapStopReason(parsed.StopReason),
		Usage: ai.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

// Stream generates a completion incrementally. Text arrives as
// content_block_delta events; other event types are ignored.
func (p *Provider) Stream(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	resp, err := p.post(ctx, p.buildRequest(messages, opts, true))
	if err != nil {
		p.logger.Error("stream request failed", "err", err)
		return nil, err
	}

	ch := make(chan ai.StreamEvent, 64)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				ch <- ai.StreamEvent{Err: ctx.Err()}
				return
			default:
			}

			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := line[len("data: "):]
			if data == "" {
				continue
			}

			var event streamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				continue // skip malformed events
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					ch <- ai.StreamEvent{Content: event.Delta.Text}
				}
			case "message_stop":
				ch <- ai.StreamEvent{Done: true}
				return
			}
		}

		if err := scanner.Err(); err != nil {
			ch <- ai.StreamEvent{Err: err}
			return
		}
		ch <- ai.StreamEvent{Done: true}
	}()

	return ch, nil
}

// Embed always fails; see ErrEmbeddingsUnsupported.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrEmbeddingsUnsupported
}

// EmbedBatch always fails; see ErrEmbeddingsUnsupported.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, ErrEmbeddingsUnsupported
}

// CountTokens estimates the token count of text.
func (p *Provider) CountTokens(text string) int {
	return ai.EstimateTokens(text)
}

// ValidateConnection reports whether the API accepts the configured
// credentials. The Messages API has no health endpoint, so a minimal
// completion serves as the probe.
func (p *Provider) ValidateConnection(ctx context.Context) bool {
	_, err := p.Complete(ctx, []ai.Message{ai.UserMessage("Hello")}, ai.WithMaxTokens(5))
	return err == nil
}

func mapStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	default:
		return "stop"
	}
}
