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


package google

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
	"github.com/poiesic/traingen/core"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultEmbeddingModel = "text-embedding-004"
)

// Provider implements ai.Provider against the Google Gemini generateContent
// API. The API key travels as a query parameter rather than a header.
type Provider struct {
	config  *ai.Config
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Google provider from the configuration.
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
		logger:  slog.Default().With("component", "google-provider", "model", config.Model),
	}, nil
}

// Name returns "google".
func (p *Provider) Name() string {
	return p.config.Provider
}

// Model returns the chat model identifier.
func (p *Provider) Model() string {
	return p.config.Model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	TopP            float64  `json:"topP,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
	ResponseMIME    string   `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content struct {
		Parts []part `json:"parts"`
		Role  string `json:"role"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

type generateResponse struct {
	Candidates    []candidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// convertMessages maps role-tagged messages onto Gemini's contents array.
// The system prompt becomes a systemInstruction and assistant turns take the
// "model" role.
func convertMessages(messages []ai.Message) (*content, []content) {
	var system *content
	contents := make([]content, 0, len(messages))

	for _, m := range messages {
		if m.Role == core.RoleSystem {
			system = &content{Parts: []part{{Text: m.Content}}}
			continue
		}
		role := "user"
		if m.Role == core.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	return system, contents
}

func (p *Provider) buildRequest(messages []ai.Message, opts []ai.CallOption) generateRequest {
	o := ai.ApplyCallOptions(opts)
	system, contents := convertMessages(messages)

	req := generateRequest{
		Contents:          contents,
		SystemInstruction: system,
		GenerationConfig: generationConfig{
			Temperature:     p.config.Temperature,
			MaxOutputTokens: p.config.MaxTokens,
			TopP:            p.config.TopP,
		},
	}
	if o.SystemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: o.SystemPrompt}}}
	}
	if o.Temperature != nil {
		req.GenerationConfig.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		req.GenerationConfig.MaxOutputTokens = *o.MaxTokens
	}
	if o.TopP != nil {
		req.GenerationConfig.TopP = *o.TopP
	}
	if len(o.StopSequences) > 0 {
		req.GenerationConfig.StopSequences = o.StopSequences
	}
	if o.JSONMode {
		req.GenerationConfig.ResponseMIME = "application/json"
	}
	return req
}

func (p *Provider) post(ctx context.Context, path, query string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := p.baseURL + path + "?key=" + p.config.APIKey + query
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling google ai: %w", err)
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
		return nil, ai.NewAPIError("google", resp.StatusCode, msg)
	}
	return resp, nil
}

// Complete generates a full completion.
func (p *Provider) Complete(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (*ai.Completion, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	path := "/models/" + p.config.Model + ":generateContent"
	resp, err := p.post(ctx, path, "", p.buildRequest(messages, opts))
	if err != nil {
		p.logger.Error("completion request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		return nil, ai.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, pt := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	if sb.Len() == 0 {
		return nil, ai.ErrEmptyResponse
	}

	return &ai.Completion{
		Content:      sb.String(),
		Model:        p.config.Model,
		FinishReason: mapFinishReason(parsed.Candidates[0].FinishReason),
		Usage: ai.Usage{
			PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
			CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      parsed.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// Stream generates a completion incrementally using the SSE form of
// streamGenerateContent.
func (p *Provider) Stream(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error) {
	if len(messages) == 0 {
		return nil, ai.ErrNoMessages
	}

	path := "/models/" + p.config.Model + ":streamGenerateContent"
	resp, err := p.post(ctx, path, "&alt=sse", p.buildRequest(messages, opts))
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

			var chunk generateResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue // skip malformed events
			}
			if len(chunk.Candidates) == 0 {
				continue
			}
			for _, pt := range chunk.Candidates[0].Content.Parts {
				if pt.Text != "" {
					ch <- ai.StreamEvent{Content: pt.Text}
				}
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

type embedContentRequest struct {
	Content content `json:"content"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type batchEmbedRequest struct {
	Requests []struct {
		Model   string  `json:"model"`
		Content content `json:"content"`
	} `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func (p *Provider) embeddingModel() string {
	if p.config.EmbeddingModel != "" {
		return p.config.EmbeddingModel
	}
	return defaultEmbeddingModel
}

// Embed generates a vector embedding for a single text string.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	model := p.embeddingModel()
	path := "/models/" + model + ":embedContent"

	resp, err := p.post(ctx, path, "", embedContentRequest{
		Content: content{Parts: []part{{Text: text}}},
	})
	if err != nil {
		p.logger.Error("embedding request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed embedContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return parsed.Embedding.Values, nil
}

// EmbedBatch generates embeddings for multiple texts via batchEmbedContents.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	model := p.embeddingModel()
	var req batchEmbedRequest
	for _, text := range texts {
		req.Requests = append(req.Requests, struct {
			Model   string  `json:"model"`
			Content content `json:"content"`
		}{
			Model:   "models/" + model,
			Content: content{Parts: []part{{Text: text}}},
		})
	}

	resp, err := p.post(ctx, "/models/"+model+":batchEmbedContents", "", req)
	if err != nil {
		p.logger.Error("batch embedding request failed", "count", len(texts), "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var parsed batchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Embeddings))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range parsed.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// CountTokens estimates the token count of text.
func (p *Provider) CountTokens(text string) int {
	return ai.EstimateTokens(text)
}

// ValidateConnection reports whether the API is reachable with the
// configured key.
func (p *Provider) ValidateConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models?key="+p.config.APIKey, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func mapFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return "stop"
	case "MAX_TOKENS":
		return "length"
	case "SAFETY":
		return "content_filter"
	default:
		return "stop"
	}
}
