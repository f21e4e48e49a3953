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


package ai

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the settings for one provider instance. A Config binds a
// single chat model and a single embedding model; routing across several
// configs is handled a layer up.
type Config struct {
	// Provider is the backend identifier: "openai", "anthropic", "google",
	// or "azure".
	Provider string

	// APIKey authenticates requests against the provider.
	APIKey string

	// BaseURL overrides the provider's default API endpoint. Required for
	// "azure", optional elsewhere (useful for OpenAI-compatible gateways).
	BaseURL string

	// Model is the chat model identifier.
	// Example: "gpt-4o-mini", "claude-sonnet-4-20250514", "gemini-2.0-flash"
	Model string

	// EmbeddingModel is the model used for vector embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// Temperature is the default sampling temperature. Per-call options
	// override it.
	Temperature float64

	// MaxTokens is the default response token limit. Per-call options
	// override it.
	MaxTokens int

	// TopP is the default nucleus sampling parameter. Per-call options
	// override it.
	TopP float64

	// Timeout bounds each HTTP request to the provider.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the backend identifier.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets a custom API endpoint.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the chat model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithDefaultTemperature sets the default sampling temperature.
func WithDefaultTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithDefaultMaxTokens sets the default response token limit.
func WithDefaultMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithDefaultTopP sets the default nucleus sampling parameter.
func WithDefaultTopP(p float64) ConfigOption {
	return func(c *Config) {
		c.TopP = p
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config with OpenAI defaults. The API key must
// still be supplied before use.
func DefaultConfig() *Config {
	return &Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Temperature:    0.7,
		MaxTokens:      4096,
		TopP:           1.0,
		Timeout:        120 * time.Second,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithProvider("anthropic"),
//	    ai.WithAPIKey(key),
//	    ai.WithModel("claude-sonnet-4-20250514"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in canonical form: the provider
// name is lowercased and trailing slashes are stripped from the base URL.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.TopP <= 0 {
		c.TopP = 1.0
	}
}

// Validate checks that the configuration is complete. It normalizes the
// configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case "openai", "anthropic", "google":
	case "azure":
		// Azure endpoints are per-deployment; there is no useful default.
		if c.BaseURL == "" {
			return fmt.Errorf("ai config: azure provider: %w", ErrMissingBaseURL)
		}
	default:
		return fmt.Errorf("ai config: unsupported provider %q", c.Provider)
	}

	if c.APIKey == "" {
		return fmt.Errorf("ai config: %w", ErrMissingAPIKey)
	}
	if c.Model == "" {
		return fmt.Errorf("ai config: Model is required")
	}
	return nil
}

// CacheKey returns the identity used for provider instance caching. Two
// configs with the same provider, model, and credential tail share one
// instance.
func (c *Config) CacheKey() string {
	tail := c.APIKey
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return c.Provider + ":" + c.Model + ":" + tail
}
