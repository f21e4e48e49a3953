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


package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/traingen/ai"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements ai.Provider against the OpenAI chat completions and
// embeddings APIs. Azure OpenAI deployments use the same wire format and are
// served by this adapter with an explicit base URL.
type Provider struct {
	config  *ai.Config
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates an OpenAI provider from the configuration.
//
// Returns the ai.Provider interface to enforce abstraction.
func New(config *ai.Config) (ai.Provider, error) {
	return newProvider(config)
}

func newProvider(config *ai.Config) (*Provider, error) {
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
		logger:  slog.Default().With("component", "openai-provider", "model", config.Model),
	}, nil
}

// Name returns the configured provider identifier, which is "azure" when
// this adapter serves an Azure deployment.
func (p *Provider) Name() string {
	return p.config.Provider
}

// Model returns the chat model identifier.
func (p *Provider) Model() string {
	return p.config.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	TopP           float64         `json:"top_p,omitempty"`
	Stop           []string        `json:"stop,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) buildChatRequest(messages []ai.Message, opts []ai.CallOption, stream bool) chatRequest {
	o := ai.ApplyCallOptions(opts)

	req := chatRequest{
		Model:       p.config.Model,
		Messages:    make([]chatMessage, 0, len(messages)+1),
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
		TopP:        p.config.TopP,
		Stream:      stream,
	}
	if o.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: o.SystemPrompt})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
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
		req.Stop = o.StopSequences
	}
	if o.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return req
}

func (p *Provider) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(p.config.Provider, resp)
	}
	return resp, nil
}

func readAPIError(provider string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body apiErrorBody
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.Error.Message
	}
	if msg == "" {
		msg = resp.Status
	}
	return ai.NewAPIError(provider, resp.StatusCode, msg)
}

// Complete generates a full completion.
func (p *Provider) Complete(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (*ai.Completion, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	resp, err := p.post(ctx, "/chat/completions", p.buildChatRequest(messages, opts, false))
	if err != nil {
		p.logger.Error("completion request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, ai.ErrEmptyResponse
	}

	return &ai.Completion{
		Content:      parsed.Choices[0].Message.Content,
		Model:        parsed.Model,
		FinishReason: mapFinishReason(parsed.Choices[0].FinishReason),
		Usage: ai.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// Stream generates a completion incrementally over server-sent events.
func (p *Provider) Stream(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	resp, err := p.post(ctx, "/chat/completions", p.buildChatRequest(messages, opts, true))
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
			if data == "[DONE]" {
				ch <- ai.StreamEvent{Done: true}
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue // skip malformed events
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if content := chunk.Choices[0].Delta.Content; content != "" {
				ch <- ai.StreamEvent{Content: content}
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

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed generates a vector embedding for a single text string.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	model := p.config.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	resp, err := p.post(ctx, "/embeddings", embeddingRequest{Model: model, Input: texts})
	if err != nil {
		p.logger.Error("embedding request failed", "count", len(texts), "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// CountTokens estimates the token count of text.
func (p *Provider) CountTokens(text string) int {
	return ai.EstimateTokens(text)
}

// ValidateConnection reports whether the API is reachable with the
// configured credentials. Used by operational health checks.
func (p *Provider) ValidateConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func mapFinishReason(reason string) string {
	switch reason {
	case "stop", "length", "content_filter":
		return reason
	default:
		return "stop"
	}
}
